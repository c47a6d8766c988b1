// Package grid defines the single coordinate frame shared by every world
// engine component.
//
// The world uses one absolute, corner-anchored convention: world tile (0, 0)
// is the north-west corner tile of chunk (0, 0), and a finite world of
// W×H tiles spans world tiles (0, 0) through (W-1, H-1). No component may
// introduce an origin-centered or chunk-relative frame for values that cross
// a package boundary; local in-chunk offsets stay local.
package grid

import (
	"fmt"
	"math"
)

// ChunkCoord identifies a chunk's position on the chunk grid. It is the
// cache key for the chunk manager and must stay comparable.
type ChunkCoord struct {
	X int
	Y int
}

// Key returns a stable string form, used for single-flight de-duplication.
func (c ChunkCoord) Key() string {
	return fmt.Sprintf("%d:%d", c.X, c.Y)
}

// Chebyshev returns the Chebyshev (chessboard) distance to another chunk.
func (c ChunkCoord) Chebyshev(other ChunkCoord) int {
	dx := absInt(c.X - other.X)
	dy := absInt(c.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// WorldPosition is an absolute world tile coordinate in the corner-anchored
// frame documented at the package level.
type WorldPosition struct {
	X int
	Y int
}

// ChunkOf returns the chunk containing this tile together with the local
// offset inside it. Uses floor division so negative tiles map correctly.
func (p WorldPosition) ChunkOf(chunkSize int) (ChunkCoord, int, int) {
	cx := floorDiv(p.X, chunkSize)
	cy := floorDiv(p.Y, chunkSize)
	return ChunkCoord{X: cx, Y: cy}, p.X - cx*chunkSize, p.Y - cy*chunkSize
}

// DistanceTo returns the Euclidean distance to another tile.
func (p WorldPosition) DistanceTo(other WorldPosition) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToOrigin returns the Euclidean distance to world tile (0, 0).
func (p WorldPosition) DistanceToOrigin() float64 {
	return p.DistanceTo(WorldPosition{})
}

// TileOrigin returns the world tile at the north-west corner of a chunk.
func TileOrigin(c ChunkCoord, chunkSize int) WorldPosition {
	return WorldPosition{X: c.X * chunkSize, Y: c.Y * chunkSize}
}

// Bounds describes a finite world as an inclusive tile rectangle
// (0, 0)–(Width-1, Height-1).
type Bounds struct {
	Width  int
	Height int
}

// Contains reports whether a tile lies inside the world.
func (b Bounds) Contains(p WorldPosition) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// ContainsChunk reports whether any tile of the chunk lies inside the world.
func (b Bounds) ContainsChunk(c ChunkCoord, chunkSize int) bool {
	origin := TileOrigin(c, chunkSize)
	return origin.X+chunkSize > 0 && origin.X < b.Width &&
		origin.Y+chunkSize > 0 && origin.Y < b.Height
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
