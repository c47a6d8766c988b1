package chunk

import (
	"github.com/google/uuid"

	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

// Tile is one world tile. Terrain is set at generation time; Resource and
// StructureID are back-references into the chunk's feature lists. Gameplay
// may later mutate a tile in place without changing the chunk's identity.
type Tile struct {
	Terrain     terrain.Type         `json:"terrain"`
	Resource    feature.ResourceKind `json:"resource,omitempty"`
	StructureID uuid.UUID            `json:"structure_id,omitempty"`
}

// Chunk is the unit of generated world state: a fixed-size square of tiles
// plus the structures and resources placed on them.
//
// Invariants: len(Tiles) is always Size²; Biome is set exactly once at
// generation time and never mutated afterwards; regenerating from the same
// (seed, coordinate) reproduces an identical value.
type Chunk struct {
	Coord      grid.ChunkCoord     `json:"coord"`
	Size       int                 `json:"size"`
	Biome      biome.Biome         `json:"biome"`
	Tiles      []Tile              `json:"tiles"`
	Structures []feature.Structure `json:"structures"`
	Resources  []feature.Resource  `json:"resources"`
	// Fallback marks a substitute chunk produced after a generation failure.
	Fallback bool `json:"fallback,omitempty"`
}

// TileAt returns the tile at a chunk-local offset.
func (c *Chunk) TileAt(localX, localY int) Tile {
	return c.Tiles[localY*c.Size+localX]
}

// TileOrigin returns the world tile at the chunk's north-west corner.
func (c *Chunk) TileOrigin() grid.WorldPosition {
	return grid.TileOrigin(c.Coord, c.Size)
}

// Snapshot is the persistence form of a chunk. The engine snapshots the full
// chunk for simplicity; base generation being deterministic, a save file may
// still omit snapshots for unmodified chunks and rely on regeneration.
type Snapshot struct {
	Coord      grid.ChunkCoord     `json:"coord"`
	Size       int                 `json:"size"`
	Biome      biome.Biome         `json:"biome"`
	Tiles      []Tile              `json:"tiles"`
	Structures []feature.Structure `json:"structures"`
	Resources  []feature.Resource  `json:"resources"`
	Fallback   bool                `json:"fallback,omitempty"`
}

// ToSnapshot captures the chunk's current state.
func (c *Chunk) ToSnapshot() *Snapshot {
	return &Snapshot{
		Coord:      c.Coord,
		Size:       c.Size,
		Biome:      c.Biome,
		Tiles:      append([]Tile(nil), c.Tiles...),
		Structures: append([]feature.Structure(nil), c.Structures...),
		Resources:  append([]feature.Resource(nil), c.Resources...),
		Fallback:   c.Fallback,
	}
}

// FromSnapshot rebuilds a chunk from its persistence form.
func FromSnapshot(s *Snapshot) *Chunk {
	return &Chunk{
		Coord:      s.Coord,
		Size:       s.Size,
		Biome:      s.Biome,
		Tiles:      append([]Tile(nil), s.Tiles...),
		Structures: append([]feature.Structure(nil), s.Structures...),
		Resources:  append([]feature.Resource(nil), s.Resources...),
		Fallback:   s.Fallback,
	}
}
