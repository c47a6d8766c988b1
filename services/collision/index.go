package collision

import (
	"sync"

	"github.com/google/uuid"
	"github.com/solarlune/resolv"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/chunk"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
)

// OwnerKind classifies what produced a collision entry.
type OwnerKind int

const (
	OwnerBorderTree OwnerKind = iota
	OwnerStructure
	OwnerResource
)

// String returns the owner kind name for logging.
func (k OwnerKind) String() string {
	switch k {
	case OwnerBorderTree:
		return "border-tree"
	case OwnerStructure:
		return "structure"
	case OwnerResource:
		return "resource"
	default:
		return "unknown"
	}
}

const (
	tagObstacle   = "obstacle"
	tagBorderTree = "border_tree"
	tagStructure  = "structure"
	tagResource   = "resource"
	tagProbe      = "probe"
)

// Entry is one axis-aligned obstacle rectangle, in pixel units. The index
// holds derived geometry only: Chunk is a weak back-reference to the owning
// chunk coordinate (meaningless for border-owned entries), never a live
// pointer, so eviction is a single removal call.
type Entry struct {
	X, Y, W, H float64
	Owner      OwnerKind
	Chunk      grid.ChunkCoord
	SourceID   uuid.UUID
	Tile       grid.WorldPosition
}

// Index is the queryable set of obstacle rectangles consumed by movement
// and physics. It is populated by the chunk manager and the border forest
// generator and owns none of the world data behind its entries.
type Index struct {
	mu       sync.Mutex
	space    *resolv.Space
	tileSize int

	byChunk map[grid.ChunkCoord][]*resolv.Object
	border  []*resolv.Object
}

// NewIndex builds an index covering a finite world, with one spatial cell
// per tile.
func NewIndex(bounds grid.Bounds, tileSize int) *Index {
	return &Index{
		space:    resolv.NewSpace(bounds.Width*tileSize, bounds.Height*tileSize, tileSize, tileSize),
		tileSize: tileSize,
		byChunk:  make(map[grid.ChunkCoord][]*resolv.Object),
	}
}

// RegisterChunk adds one entry per structure and per solid resource of a
// freshly materialized chunk. It implements chunk.CollisionRegistry.
func (ix *Index) RegisterChunk(c *chunk.Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	origin := c.TileOrigin()
	var objects []*resolv.Object

	for _, s := range c.Structures {
		tile := grid.WorldPosition{X: origin.X + s.LocalX, Y: origin.Y + s.LocalY}
		entry := Entry{
			Owner:    OwnerStructure,
			Chunk:    c.Coord,
			SourceID: s.ID,
			Tile:     tile,
		}
		objects = append(objects, ix.addTileObject(tile, entry, tagStructure))
	}
	for _, r := range c.Resources {
		if !solidResource(r.Kind) {
			continue
		}
		tile := grid.WorldPosition{X: origin.X + r.LocalX, Y: origin.Y + r.LocalY}
		entry := Entry{
			Owner: OwnerResource,
			Chunk: c.Coord,
			Tile:  tile,
		}
		objects = append(objects, ix.addTileObject(tile, entry, tagResource))
	}

	ix.byChunk[c.Coord] = objects
	logging.WithChunkCoords(c.Coord.X, c.Coord.Y).Debug("Registered chunk collision geometry", "entries", len(objects))
}

// UnregisterChunk removes exactly the entries registered for a chunk.
func (ix *Index) UnregisterChunk(coord grid.ChunkCoord) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	objects, ok := ix.byChunk[coord]
	if !ok {
		return
	}
	for _, obj := range objects {
		ix.space.Remove(obj)
	}
	delete(ix.byChunk, coord)
}

// AddBorderTree registers exactly one entry for a border forest tree.
// Border entries are never evicted.
func (ix *Index) AddBorderTree(tile grid.WorldPosition) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entry := Entry{Owner: OwnerBorderTree, Tile: tile}
	ix.border = append(ix.border, ix.addTileObject(tile, entry, tagBorderTree))
}

// Query returns the entries overlapping a pixel-space rectangle.
func (ix *Index) Query(x, y, w, h float64) []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	probe := resolv.NewObject(x, y, w, h, tagProbe)
	ix.space.Add(probe)
	defer ix.space.Remove(probe)

	var entries []Entry
	if check := probe.Check(0, 0, tagObstacle); check != nil {
		for _, obj := range check.Objects {
			// The spatial check is cell-granular; filter to exact overlap.
			if obj.X >= x+w || obj.X+obj.W <= x || obj.Y >= y+h || obj.Y+obj.H <= y {
				continue
			}
			if entry, ok := obj.Data.(Entry); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// QueryTiles returns the entries overlapping a tile-space rectangle.
func (ix *Index) QueryTiles(tile grid.WorldPosition, wTiles, hTiles int) []Entry {
	ts := float64(ix.tileSize)
	return ix.Query(float64(tile.X)*ts, float64(tile.Y)*ts, float64(wTiles)*ts, float64(hTiles)*ts)
}

// TileBlocked reports whether any entry overlaps a tile. Spawn selection
// uses this to keep entities out of obstacle rectangles.
func (ix *Index) TileBlocked(tile grid.WorldPosition) bool {
	return len(ix.QueryTiles(tile, 1, 1)) > 0
}

// ChunkEntryCount returns how many entries a chunk currently owns.
func (ix *Index) ChunkEntryCount(coord grid.ChunkCoord) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.byChunk[coord])
}

// BorderEntryCount returns how many border-owned entries exist.
func (ix *Index) BorderEntryCount() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.border)
}

func (ix *Index) addTileObject(tile grid.WorldPosition, entry Entry, tag string) *resolv.Object {
	ts := float64(ix.tileSize)
	entry.X = float64(tile.X) * ts
	entry.Y = float64(tile.Y) * ts
	entry.W = ts
	entry.H = ts

	obj := resolv.NewObject(entry.X, entry.Y, entry.W, entry.H, tagObstacle, tag)
	obj.Data = entry
	ix.space.Add(obj)
	return obj
}

// solidResource reports whether a resource deposit blocks movement.
func solidResource(k feature.ResourceKind) bool {
	switch k {
	case feature.Crystal, feature.Cactus:
		return true
	default:
		return false
	}
}
