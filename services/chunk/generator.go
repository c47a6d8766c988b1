package chunk

import (
	"fmt"
	"time"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/noise"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

// Generator runs the chunk generation pipeline. Within one chunk the order
// is fixed: noise fields, then biome classification, then terrain typing,
// then feature placement. Across chunks there is no ordering requirement;
// every chunk is a pure function of (seed, coordinate).
type Generator struct {
	noiseGen   noise.GeneratorInterface
	classifier BiomeClassifier
	typer      TerrainTyper
	placer     FeaturePlacer
	chunkSize  int
}

// NewGenerator wires the pipeline stages together.
func NewGenerator(noiseGen noise.GeneratorInterface, classifier BiomeClassifier, typer TerrainTyper, placer FeaturePlacer, chunkSize int) *Generator {
	logging.GetLogger().Debug("Creating chunk generator", "chunk_size", chunkSize)
	return &Generator{
		noiseGen:   noiseGen,
		classifier: classifier,
		typer:      typer,
		placer:     placer,
		chunkSize:  chunkSize,
	}
}

// Generate produces the chunk at a coordinate.
func (g *Generator) Generate(coord grid.ChunkCoord) (*Chunk, error) {
	logger := logging.WithChunkCoords(coord.X, coord.Y)
	logger.Debug("Starting chunk generation")
	start := time.Now()

	size := g.chunkSize
	origin := grid.TileOrigin(coord, size)

	// Noise pass: sample all three fields per tile and track chunk means.
	elevations := make([]float64, size*size)
	moistures := make([]float64, size*size)
	var sumE, sumT, sumM float64
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := y*size + x
			wx, wy := origin.X+x, origin.Y+y
			e := g.noiseGen.Sample(noise.Elevation, wx, wy)
			t := g.noiseGen.Sample(noise.Temperature, wx, wy)
			m := g.noiseGen.Sample(noise.Moisture, wx, wy)
			elevations[idx] = e
			moistures[idx] = m
			sumE += e
			sumT += t
			sumM += m
		}
	}
	n := float64(size * size)

	// The chunk's biome is classified once, from the chunk means at the
	// chunk's center tile, and never re-assigned afterwards.
	center := grid.WorldPosition{X: origin.X + size/2, Y: origin.Y + size/2}
	b := g.classifier.Classify(sumE/n, sumT/n, sumM/n, center.X, center.Y)

	// Terrain pass.
	terrainGrid := make([]terrain.Type, size*size)
	for i := range terrainGrid {
		terrainGrid[i] = g.typer.TileType(b, elevations[i], moistures[i])
	}

	// Feature pass.
	structures, resources := g.placer.PlaceFeatures(coord, b, terrainGrid, size)

	tiles := make([]Tile, size*size)
	for i := range tiles {
		tiles[i] = Tile{Terrain: terrainGrid[i]}
	}
	for _, s := range structures {
		if s.LocalX < 0 || s.LocalX >= size || s.LocalY < 0 || s.LocalY >= size {
			return nil, fmt.Errorf("structure %s at (%d,%d) outside chunk: %w",
				s.Kind, s.LocalX, s.LocalY, ErrGenerationFailed)
		}
		tiles[s.LocalY*size+s.LocalX].StructureID = s.ID
	}
	for _, r := range resources {
		if r.LocalX < 0 || r.LocalX >= size || r.LocalY < 0 || r.LocalY >= size {
			return nil, fmt.Errorf("resource %s at (%d,%d) outside chunk: %w",
				r.Kind, r.LocalX, r.LocalY, ErrGenerationFailed)
		}
		tiles[r.LocalY*size+r.LocalX].Resource = r.Kind
	}

	logger.Debug("Chunk generation completed",
		"biome", b.String(),
		"structures", len(structures),
		"resources", len(resources),
		"duration", time.Since(start))

	return &Chunk{
		Coord:      coord,
		Size:       size,
		Biome:      b,
		Tiles:      tiles,
		Structures: structures,
		Resources:  resources,
	}, nil
}

// Fallback produces the minimal valid substitute chunk for a coordinate:
// flat plains, all grass, no features. It satisfies the chunk shape
// invariant so downstream consumers never see a partially built chunk.
func (g *Generator) Fallback(coord grid.ChunkCoord) *Chunk {
	size := g.chunkSize
	tiles := make([]Tile, size*size)
	for i := range tiles {
		tiles[i] = Tile{Terrain: terrain.Grass}
	}
	return &Chunk{
		Coord:    coord,
		Size:     size,
		Biome:    biome.Plains,
		Tiles:    tiles,
		Fallback: true,
	}
}
