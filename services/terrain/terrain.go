package terrain

import (
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
)

// Type is the closed set of terrain tile types. Like biome.Biome it is the
// single representation used everywhere, so equality is always checked by
// the type system rather than by string convention.
type Type int

const (
	Grass Type = iota
	Dirt
	Sand
	Stone
	Snow
	Water
	Lava
)

// String returns the terrain name for logging and snapshots.
func (t Type) String() string {
	switch t {
	case Grass:
		return "grass"
	case Dirt:
		return "dirt"
	case Sand:
		return "sand"
	case Stone:
		return "stone"
	case Snow:
		return "snow"
	case Water:
		return "water"
	case Lava:
		return "lava"
	default:
		return "unknown"
	}
}

// Traversable reports whether entities may stand on or move across this
// terrain type. Spawn selection and feature placement both consult this set.
func (t Type) Traversable() bool {
	switch t {
	case Grass, Dirt, Sand, Snow:
		return true
	default:
		return false
	}
}

// Solid reports whether the tile itself blocks movement and therefore
// contributes collision geometry.
func (t Type) Solid() bool {
	switch t {
	case Stone, Water, Lava:
		return true
	default:
		return false
	}
}

// GroundType returns the biome's dominant traversable ground type, the one
// that defines its visual identity. Features may only be placed on it.
func GroundType(b biome.Biome) Type {
	switch b {
	case biome.Desert:
		return Sand
	case biome.Tundra:
		return Snow
	case biome.Mountains, biome.Volcanic:
		return Dirt
	default:
		return Grass
	}
}

// Typer maps per-tile noise samples to a concrete terrain type within a
// biome's vocabulary.
type Typer struct {
	// HighElevation marks stone peaks in mountains and lava in volcanic
	// biomes; LowElevation and WetMoisture carve water and dirt in the rest.
	HighElevation float64
	LavaElevation float64
	LowElevation  float64
	DirtElevation float64
	WetMoisture   float64
	SwampWater    float64
}

// NewTyper returns a typer with the original game's tuning.
func NewTyper() *Typer {
	return &Typer{
		HighElevation: 0.7,
		LavaElevation: 0.8,
		LowElevation:  -0.3,
		DirtElevation: -0.4,
		WetMoisture:   0.6,
		SwampWater:    -0.2,
	}
}

// TileType determines the terrain type for one tile. Pure function.
//
// Threshold buckets are inclusive on their lower edge and exclusive on the
// upper: a value exactly equal to a threshold belongs to the bucket whose
// lower edge it is. Every comparison below is strict to keep that rule.
func (tt *Typer) TileType(b biome.Biome, elevation, moisture float64) Type {
	switch {
	case b == biome.Water:
		return Water
	case b == biome.Mountains && elevation > tt.HighElevation:
		return Stone
	case b == biome.Desert:
		return Sand
	case b == biome.Tundra:
		return Snow
	case b == biome.Volcanic && elevation > tt.LavaElevation:
		return Lava
	case b == biome.Mountains || b == biome.Volcanic:
		return Dirt
	case b == biome.Swamp && elevation < tt.SwampWater:
		return Water
	case moisture > tt.WetMoisture && elevation < tt.LowElevation:
		return Water
	case elevation < tt.DirtElevation:
		return Dirt
	default:
		return Grass
	}
}
