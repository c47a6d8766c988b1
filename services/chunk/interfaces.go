package chunk

import (
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

// BiomeClassifier maps a sample triple at a world tile to a biome tag.
type BiomeClassifier interface {
	Classify(elevation, temperature, moisture float64, worldX, worldY int) biome.Biome
}

// TerrainTyper maps per-tile samples within a biome to a terrain type.
type TerrainTyper interface {
	TileType(b biome.Biome, elevation, moisture float64) terrain.Type
}

// FeaturePlacer computes the structures and resources for a chunk's terrain.
type FeaturePlacer interface {
	PlaceFeatures(coord grid.ChunkCoord, b biome.Biome, terrainGrid []terrain.Type, chunkSize int) ([]feature.Structure, []feature.Resource)
}

// GeneratorInterface produces chunks. Generate must be a pure function of
// the generator's seed and the coordinate; Fallback must always succeed.
type GeneratorInterface interface {
	Generate(coord grid.ChunkCoord) (*Chunk, error)
	Fallback(coord grid.ChunkCoord) *Chunk
}

// CollisionRegistry receives derived obstacle geometry as chunks come and
// go. The registry never owns chunk data; it keeps weak back-references (the
// chunk coordinate) so eviction is a single removal call.
type CollisionRegistry interface {
	RegisterChunk(c *Chunk)
	UnregisterChunk(coord grid.ChunkCoord)
}

// SnapshotStore persists chunk snapshots for the external save system.
// Load returns (nil, nil) when no snapshot exists for the coordinate.
type SnapshotStore interface {
	Save(coord grid.ChunkCoord, snap *Snapshot) error
	Load(coord grid.ChunkCoord) (*Snapshot, error)
}
