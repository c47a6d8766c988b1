package feature

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/noise"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

// StructureKind identifies a placeable structure.
type StructureKind int

const (
	TreeOak StructureKind = iota
	TreePine
	TreeMaple
	Rock
)

// String returns the structure name for logging and snapshots.
func (k StructureKind) String() string {
	switch k {
	case TreeOak:
		return "tree_oak"
	case TreePine:
		return "tree_pine"
	case TreeMaple:
		return "tree_maple"
	case Rock:
		return "rock"
	default:
		return "unknown"
	}
}

// IsTree reports whether the structure is one of the tree kinds.
func (k StructureKind) IsTree() bool {
	return k == TreeOak || k == TreePine || k == TreeMaple
}

// Exclusive reports whether the structure forbids a resource on its tile.
func (k StructureKind) Exclusive() bool {
	return k == Rock
}

// ResourceKind identifies a collectible resource deposit.
type ResourceKind int

const (
	ResourceNone ResourceKind = iota
	IronOre
	GoldOre
	Crystal
	Herb
	Mushroom
	BerryBush
	Cactus
	DesertFlower
)

// String returns the resource name for logging and snapshots.
func (k ResourceKind) String() string {
	switch k {
	case IronOre:
		return "iron_ore"
	case GoldOre:
		return "gold_ore"
	case Crystal:
		return "crystal"
	case Herb:
		return "herb"
	case Mushroom:
		return "mushroom"
	case BerryBush:
		return "berry_bush"
	case Cactus:
		return "cactus"
	case DesertFlower:
		return "desert_flower"
	default:
		return "none"
	}
}

// Structure is one placed structure, positioned chunk-locally.
type Structure struct {
	ID      uuid.UUID     `json:"id"`
	LocalX  int           `json:"local_x"`
	LocalY  int           `json:"local_y"`
	Kind    StructureKind `json:"kind"`
	Variant int           `json:"variant"`
}

// Resource is one placed resource deposit, positioned chunk-locally.
type Resource struct {
	LocalX   int          `json:"local_x"`
	LocalY   int          `json:"local_y"`
	Kind     ResourceKind `json:"kind"`
	Quantity int          `json:"quantity"`
}

// ResourceChance is one row of a biome's resource density table.
type ResourceChance struct {
	Kind        ResourceKind
	Chance      float64
	MaxQuantity int
}

// Config holds the per-biome density tables. These are balance knobs; the
// defaults reproduce the original game tuning.
type Config struct {
	// StructureDensity is the per-tile occupancy probability for the biome's
	// characteristic structure, applied only where the cluster noise allows.
	StructureDensity map[biome.Biome]float64
	// ClusterThreshold gates placement on the coarse feature noise field so
	// structures form natural groves instead of uniform scatter.
	ClusterThreshold float64
	// Resources lists, per biome, the independent per-tile deposit chances.
	Resources map[biome.Biome][]ResourceChance
}

// DefaultConfig returns the original game's density tables.
func DefaultConfig() Config {
	return Config{
		StructureDensity: map[biome.Biome]float64{
			biome.Forest:    0.18,
			biome.Plains:    0.04,
			biome.Swamp:     0.08,
			biome.Mountains: 0.05,
			biome.Volcanic:  0.03,
		},
		ClusterThreshold: 0.4,
		Resources: map[biome.Biome][]ResourceChance{
			biome.Mountains: {
				{Kind: IronOre, Chance: 0.02, MaxQuantity: 5},
				{Kind: GoldOre, Chance: 0.01, MaxQuantity: 3},
				{Kind: Crystal, Chance: 0.005, MaxQuantity: 2},
			},
			biome.Forest: {
				{Kind: Herb, Chance: 0.03, MaxQuantity: 5},
				{Kind: Mushroom, Chance: 0.02, MaxQuantity: 4},
				{Kind: BerryBush, Chance: 0.01, MaxQuantity: 3},
			},
			biome.Desert: {
				{Kind: Cactus, Chance: 0.01, MaxQuantity: 3},
				{Kind: DesertFlower, Chance: 0.005, MaxQuantity: 2},
			},
		},
	}
}

// Placer stochastically places structures and resources on a generated
// terrain grid. All randomness is drawn from sources derived from the world
// seed and the chunk coordinate, with a fixed row-major scan order, so
// placement for a given (seed, chunk) is always identical.
type Placer struct {
	noiseGen noise.GeneratorInterface
	cfg      Config
}

// NewPlacer creates a placer over the given noise generator.
func NewPlacer(noiseGen noise.GeneratorInterface, cfg Config) *Placer {
	return &Placer{noiseGen: noiseGen, cfg: cfg}
}

// PlaceFeatures computes the structures and resources for one chunk.
// terrainGrid is the chunk's tiles in row-major order (chunkSize² entries).
func (p *Placer) PlaceFeatures(coord grid.ChunkCoord, b biome.Biome, terrainGrid []terrain.Type, chunkSize int) ([]Structure, []Resource) {
	logger := logging.WithChunkCoords(coord.X, coord.Y)

	ground := terrain.GroundType(b)
	structRng := rand.New(rand.NewSource(chunkSeed(p.noiseGen.GetSeed(), coord)))
	resourceRng := rand.New(rand.NewSource(chunkSeed(p.noiseGen.GetSeed(), coord) + 1))

	structures := p.placeStructures(coord, b, ground, terrainGrid, chunkSize, structRng)
	resources := p.placeResources(coord, b, ground, terrainGrid, chunkSize, structures, resourceRng)

	logger.Debug("Feature placement completed",
		"biome", b.String(), "structures", len(structures), "resources", len(resources))
	return structures, resources
}

func (p *Placer) placeStructures(coord grid.ChunkCoord, b biome.Biome, ground terrain.Type, terrainGrid []terrain.Type, chunkSize int, rng *rand.Rand) []Structure {
	density, ok := p.cfg.StructureDensity[b]
	if !ok || density <= 0 {
		return nil
	}

	var structures []Structure
	blocked := make([]bool, chunkSize*chunkSize)
	origin := grid.TileOrigin(coord, chunkSize)

	for y := 0; y < chunkSize; y++ {
		for x := 0; x < chunkSize; x++ {
			idx := y*chunkSize + x
			if blocked[idx] || terrainGrid[idx] != ground {
				continue
			}

			// Coarse feature noise clusters placements into groves.
			featureNoise := p.noiseGen.Sample(noise.Feature, origin.X+x, origin.Y+y)
			if featureNoise <= p.cfg.ClusterThreshold {
				continue
			}
			if rng.Float64() >= density {
				continue
			}

			kind := p.structureKindFor(b, rng)
			structures = append(structures, Structure{
				ID:      structureID(p.noiseGen.GetSeed(), origin.X+x, origin.Y+y),
				LocalX:  x,
				LocalY:  y,
				Kind:    kind,
				Variant: rng.Intn(3),
			})

			// Minimum spacing: the placed tile and its eight neighbors are
			// out of bounds for later placements in this scan.
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && nx < chunkSize && ny >= 0 && ny < chunkSize {
						blocked[ny*chunkSize+nx] = true
					}
				}
			}
		}
	}
	return structures
}

func (p *Placer) placeResources(coord grid.ChunkCoord, b biome.Biome, ground terrain.Type, terrainGrid []terrain.Type, chunkSize int, structures []Structure, rng *rand.Rand) []Resource {
	table, ok := p.cfg.Resources[b]
	if !ok {
		return nil
	}

	// Tiles under an exclusive structure reject resources.
	exclusive := make(map[int]bool, len(structures))
	for _, s := range structures {
		if s.Kind.Exclusive() {
			exclusive[s.LocalY*chunkSize+s.LocalX] = true
		}
	}

	var resources []Resource
	for y := 0; y < chunkSize; y++ {
		for x := 0; x < chunkSize; x++ {
			idx := y*chunkSize + x
			if exclusive[idx] {
				continue
			}
			if terrainGrid[idx] != ground {
				continue
			}
			for _, rc := range table {
				if rng.Float64() < rc.Chance {
					// The tables are tunable config; a row with
					// MaxQuantity <= 0 still yields a single unit.
					qty := 1
					if rc.MaxQuantity > 0 {
						qty += rng.Intn(rc.MaxQuantity)
					}
					resources = append(resources, Resource{
						LocalX:   x,
						LocalY:   y,
						Kind:     rc.Kind,
						Quantity: qty,
					})
					break // one deposit per tile
				}
			}
		}
	}
	return resources
}

func (p *Placer) structureKindFor(b biome.Biome, rng *rand.Rand) StructureKind {
	switch b {
	case biome.Mountains, biome.Volcanic:
		return Rock
	default:
		trees := []StructureKind{TreeOak, TreePine, TreeMaple}
		return trees[rng.Intn(len(trees))]
	}
}

// chunkSeed mixes the world seed with the chunk coordinate using the same
// prime multipliers the original tile-variation seeding used.
func chunkSeed(seed int64, coord grid.ChunkCoord) int64 {
	return seed ^ int64(coord.X)*1299721 ^ int64(coord.Y)*5741
}

// structureID derives a stable identifier from the world seed and the
// structure's world tile, so regeneration reproduces identical IDs.
func structureID(seed int64, worldX, worldY int) uuid.UUID {
	name := fmt.Sprintf("structure:%d:%d:%d", seed, worldX, worldY)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
