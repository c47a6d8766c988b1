package biome

import (
	"math"
)

// Biome is the closed set of biome tags driving terrain and feature
// distribution. It is the only representation of a biome anywhere in the
// engine; there is deliberately no parallel string form used for comparisons.
type Biome int

const (
	Plains Biome = iota
	Forest
	Desert
	Mountains
	Tundra
	Volcanic
	Swamp
	Water
)

// String returns the biome name for logging and snapshots.
func (b Biome) String() string {
	switch b {
	case Plains:
		return "plains"
	case Forest:
		return "forest"
	case Desert:
		return "desert"
	case Mountains:
		return "mountains"
	case Tundra:
		return "tundra"
	case Volcanic:
		return "volcanic"
	case Swamp:
		return "swamp"
	case Water:
		return "water"
	default:
		return "unknown"
	}
}

// All lists every biome, for tests and density tables.
func All() []Biome {
	return []Biome{Plains, Forest, Desert, Mountains, Tundra, Volcanic, Swamp, Water}
}

// Thresholds are the tunable classification parameters. They are game
// balance knobs, not structural requirements, so they live in configuration
// rather than constants.
type Thresholds struct {
	// MountainElevation is the elevation above which terrain is highland.
	MountainElevation float64
	// VolcanicTemp splits highland into volcanic (hot) and mountains.
	VolcanicTemp float64
	// WaterElevation is the elevation below which terrain is open water.
	WaterElevation float64
	// TundraTemp is the temperature below which lowland is tundra.
	TundraTemp float64
	// DesertTemp and DesertMoisture jointly mark hot, dry lowland.
	DesertTemp     float64
	DesertMoisture float64
	// SwampMoisture marks waterlogged lowland.
	SwampMoisture float64
	// ForestMoisture marks wet lowland below the swamp threshold.
	ForestMoisture float64
}

// DefaultThresholds returns the original game's tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MountainElevation: 0.6,
		VolcanicTemp:      0.7,
		WaterElevation:    -0.6,
		TundraTemp:        -0.5,
		DesertTemp:        0.5,
		DesertMoisture:    -0.3,
		SwampMoisture:     0.6,
		ForestMoisture:    0.3,
	}
}

// Classifier maps an (elevation, temperature, moisture) triple to a biome.
type Classifier struct {
	thresholds Thresholds
	// biasRadius is the distance from the world origin, in tiles, inside
	// which samples are pulled toward benign biomes so the spawn region
	// never lands in deep water, lava or arctic tundra.
	biasRadius float64
}

// NewClassifier creates a classifier with the given thresholds and origin
// bias radius (in world tiles; zero disables the bias).
func NewClassifier(thresholds Thresholds, biasRadius float64) *Classifier {
	return &Classifier{thresholds: thresholds, biasRadius: biasRadius}
}

// Classify returns the biome for a sample triple taken at a world tile.
// It is a pure function.
//
// Rules are evaluated in priority order; the first match wins:
//
//  1. elevation > MountainElevation: Volcanic when temperature >
//     VolcanicTemp, otherwise Mountains
//  2. elevation < WaterElevation: Water
//  3. temperature < TundraTemp: Tundra
//  4. temperature > DesertTemp and moisture < DesertMoisture: Desert
//  5. moisture > SwampMoisture: Swamp
//  6. moisture > ForestMoisture: Forest
//  7. otherwise: Plains
func (c *Classifier) Classify(elevation, temperature, moisture float64, worldX, worldY int) Biome {
	elevation, temperature, moisture = c.applyOriginBias(elevation, temperature, moisture, worldX, worldY)

	t := c.thresholds
	switch {
	case elevation > t.MountainElevation:
		if temperature > t.VolcanicTemp {
			return Volcanic
		}
		return Mountains
	case elevation < t.WaterElevation:
		return Water
	case temperature < t.TundraTemp:
		return Tundra
	case temperature > t.DesertTemp && moisture < t.DesertMoisture:
		return Desert
	case moisture > t.SwampMoisture:
		return Swamp
	case moisture > t.ForestMoisture:
		return Forest
	default:
		return Plains
	}
}

// applyOriginBias nudges temperature and moisture toward the Plains/Forest
// quadrant and damps elevation extremes, with strength 1 - distance/radius.
func (c *Classifier) applyOriginBias(elevation, temperature, moisture float64, worldX, worldY int) (float64, float64, float64) {
	if c.biasRadius <= 0 {
		return elevation, temperature, moisture
	}
	dist := math.Sqrt(float64(worldX)*float64(worldX) + float64(worldY)*float64(worldY))
	if dist >= c.biasRadius {
		return elevation, temperature, moisture
	}

	// Benign target: mild temperature, moderate moisture, flat ground.
	const (
		benignTemp     = 0.15
		benignMoisture = 0.2
	)
	strength := (1.0 - dist/c.biasRadius) * 0.5

	temperature += (benignTemp - temperature) * strength
	moisture += (benignMoisture - moisture) * strength
	elevation -= elevation * strength
	return elevation, temperature, moisture
}
