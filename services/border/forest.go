package border

import (
	"math/rand"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
)

// Edge names one of the four world edges.
type Edge int

const (
	North Edge = iota
	South
	West
	East
)

// String returns the edge name for logging.
func (e Edge) String() string {
	switch e {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	default:
		return "unknown"
	}
}

// Tree is one border forest tree. DepthLayer is the tile's distance from
// the nearest world edge; it drives the kind and size the renderer uses,
// never whether the tree collides — every tree collides.
type Tree struct {
	Pos          grid.WorldPosition
	Kind         feature.StructureKind
	Variant      int
	DepthLayer   int
	SizeModifier float64
}

// Segment is the band of forest ground along one world edge, with its
// probabilistic tree occupancy. Segments partition the border band: corner
// tiles belong to the north/south segments only, so every band tile appears
// in exactly one segment.
type Segment struct {
	Edge  Edge
	Tiles []grid.WorldPosition
	Trees []Tree
}

// TreeRegistrar receives one collision registration per placed tree.
type TreeRegistrar interface {
	AddBorderTree(tile grid.WorldPosition)
}

// Generator builds the perimeter forest ring once at world initialization.
// It works in absolute world-space bounds — tiles (0, 0) through
// (Width-1, Height-1) — independent of the chunk grid, and its output is
// never evicted or persisted: it is deterministic from (seed, bounds).
type Generator struct {
	seed int64
}

// NewGenerator creates a border forest generator for a world seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Generate marks every tile within depth tiles of any world edge as forest
// ground and rolls an independent Bernoulli trial with probability
// treeProbability for tree occupancy. Each placed tree registers exactly one
// collision entry with the registrar (when one is provided).
//
// The band is exactly the tiles with x < depth, x > Width-1-depth,
// y < depth or y > Height-1-depth; no interior tile is touched.
func (g *Generator) Generate(bounds grid.Bounds, depth int, treeProbability float64, registrar TreeRegistrar) []Segment {
	logger := logging.WithSeed(g.seed)

	rng := rand.New(rand.NewSource(g.seed ^ 0x626f72646572)) // seed mixed with a border-only salt

	segments := []Segment{
		g.buildSegment(North, bounds, depth, treeProbability, rng, registrar),
		g.buildSegment(South, bounds, depth, treeProbability, rng, registrar),
		g.buildSegment(West, bounds, depth, treeProbability, rng, registrar),
		g.buildSegment(East, bounds, depth, treeProbability, rng, registrar),
	}

	tileCount, treeCount := 0, 0
	for _, s := range segments {
		tileCount += len(s.Tiles)
		treeCount += len(s.Trees)
	}
	logger.Info("Generated border forest",
		"depth", depth, "tiles", tileCount, "trees", treeCount)
	return segments
}

// buildSegment walks one edge band in a fixed row-major order so the
// Bernoulli stream, and therefore the forest, is reproducible.
func (g *Generator) buildSegment(edge Edge, bounds grid.Bounds, depth int, treeProbability float64, rng *rand.Rand, registrar TreeRegistrar) Segment {
	seg := Segment{Edge: edge}

	// When 2*depth exceeds a world dimension the opposite bands would meet;
	// South and East are clamped to start where North and West end so the
	// partition stays exact even for degenerate bounds.
	var xMin, xMax, yMin, yMax int
	switch edge {
	case North:
		xMin, xMax, yMin, yMax = 0, bounds.Width-1, 0, min(depth-1, bounds.Height-1)
	case South:
		xMin, xMax, yMin, yMax = 0, bounds.Width-1, max(depth, bounds.Height-depth), bounds.Height-1
	case West:
		xMin, xMax, yMin, yMax = 0, min(depth-1, bounds.Width-1), depth, bounds.Height-depth-1
	case East:
		xMin, xMax, yMin, yMax = max(depth, bounds.Width-depth), bounds.Width-1, depth, bounds.Height-depth-1
	}

	for y := yMin; y <= yMax; y++ {
		for x := xMin; x <= xMax; x++ {
			tile := grid.WorldPosition{X: x, Y: y}
			seg.Tiles = append(seg.Tiles, tile)

			if rng.Float64() >= treeProbability {
				continue
			}
			layer := depthLayer(tile, bounds)
			tree := Tree{
				Pos:          tile,
				Kind:         treeKindForLayer(layer, rng),
				Variant:      rng.Intn(3),
				DepthLayer:   layer,
				SizeModifier: sizeForLayer(layer),
			}
			seg.Trees = append(seg.Trees, tree)
			if registrar != nil {
				registrar.AddBorderTree(tile)
			}
		}
	}
	return seg
}

// depthLayer is the tile's distance from the nearest world edge, capped.
func depthLayer(tile grid.WorldPosition, bounds grid.Bounds) int {
	layer := tile.X
	if d := bounds.Width - 1 - tile.X; d < layer {
		layer = d
	}
	if tile.Y < layer {
		layer = tile.Y
	}
	if d := bounds.Height - 1 - tile.Y; d < layer {
		layer = d
	}
	if layer > 10 {
		layer = 10
	}
	return layer
}

// treeKindForLayer picks a kind by band depth: full variety near the world
// edge, thinning to pine-only deepest in.
func treeKindForLayer(layer int, rng *rand.Rand) feature.StructureKind {
	switch {
	case layer < 3:
		kinds := []feature.StructureKind{feature.TreeOak, feature.TreePine, feature.TreeMaple}
		return kinds[rng.Intn(len(kinds))]
	case layer < 6:
		kinds := []feature.StructureKind{feature.TreeOak, feature.TreeMaple}
		return kinds[rng.Intn(len(kinds))]
	default:
		return feature.TreePine
	}
}

func sizeForLayer(layer int) float64 {
	switch {
	case layer < 3:
		return 1.2
	case layer > 6:
		return 0.8
	default:
		return 1.0
	}
}
