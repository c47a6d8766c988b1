package spawn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/chunk"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
)

// ErrSelectionExhausted reports that neither the attempt budget nor the
// completion scan produced the requested number of valid spawn points. The
// selection returned alongside it is still usable: it falls back to the
// world origin.
var ErrSelectionExhausted = errors.New("spawn selection exhausted attempt budget")

// ChunkProvider yields materialized chunks for candidate tiles. The chunk
// manager satisfies this.
type ChunkProvider interface {
	Get(ctx context.Context, coord grid.ChunkCoord) (*chunk.Chunk, error)
}

// ObstacleChecker reports whether derived collision geometry occupies a
// tile. The collision index satisfies this. Spawning an entity inside an
// immovable obstacle rectangle wedges it permanently, so candidates on
// occupied tiles are invalid even when their terrain is traversable — the
// border forest in particular covers the tiles nearest the world origin.
type ObstacleChecker interface {
	TileBlocked(tile grid.WorldPosition) bool
}

// Selection is the outcome of spawn point selection. Primary is the accepted
// point closest to the world origin. Exhausted is set when the origin
// fallback was taken.
type Selection struct {
	Points    []grid.WorldPosition
	Primary   grid.WorldPosition
	Exhausted bool
}

// Options tunes the selection search.
type Options struct {
	ChunkSize     int
	Count         int         // spawn points requested
	MaxAttempts   int         // total candidate budget for the random phase
	MinSeparation float64     // pairwise minimum distance between accepted points, in tiles
	MaxRadius     int         // search never expands beyond this radius from origin
	Bounds        grid.Bounds // finite world bounds; a zero value disables clamping
}

// Selector finds valid, well-separated spawn tiles near the world origin.
// It is deterministic for a given seed: candidates come from a seeded
// pseudo-random sequence, and chunks are pure functions of (seed, coord),
// so re-running selection on a loaded save reproduces the same points.
type Selector struct {
	seed int64
	opts Options
}

// NewSelector creates a spawn selector for a world seed.
func NewSelector(seed int64, opts Options) *Selector {
	if opts.Count <= 0 {
		opts.Count = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 100
	}
	if opts.MaxRadius <= 0 {
		opts.MaxRadius = 40
	}
	return &Selector{seed: seed, opts: opts}
}

// SelectSpawns draws candidate tiles in an expanding window around the
// origin, force-loads each candidate's chunk, and accepts the candidate when
// its tile terrain is traversable, no structure or collision entry occupies
// it, and it keeps the pairwise minimum separation from every
// already-accepted point. The window is clamped to the world bounds, so a
// corner-anchored world never wastes attempts on tiles that cannot exist.
//
// If the random phase ends underfilled, a deterministic row-major scan of
// the full window completes the selection from the remaining eligible tiles,
// so a tight separation requirement cannot starve the request. Only when the
// scan also comes up empty-handed does selection fall back: the origin tile
// is appended regardless of its validity and the selection is returned
// together with ErrSelectionExhausted.
func (s *Selector) SelectSpawns(ctx context.Context, provider ChunkProvider, obstacles ObstacleChecker) (Selection, error) {
	logger := logging.WithSeed(s.seed)
	rng := rand.New(rand.NewSource(s.seed ^ 0x737061776e)) // spawn-only salt keeps this stream independent of placement

	var sel Selection
	attempts := 0

	for len(sel.Points) < s.opts.Count && attempts < s.opts.MaxAttempts {
		attempts++

		// The window reaches the full search radius a quarter of the way
		// through the budget, so early candidates cluster near the origin
		// while most of the budget samples the whole region.
		radius := 4 + (4*attempts*s.opts.MaxRadius)/s.opts.MaxAttempts
		if radius > s.opts.MaxRadius {
			radius = s.opts.MaxRadius
		}
		xLo, xHi := clampWindow(radius, s.opts.Bounds.Width)
		yLo, yHi := clampWindow(radius, s.opts.Bounds.Height)
		candidate := grid.WorldPosition{
			X: xLo + rng.Intn(xHi-xLo+1),
			Y: yLo + rng.Intn(yHi-yLo+1),
		}

		ok, err := s.open(ctx, provider, obstacles, candidate)
		if err != nil {
			logger.Debug("Spawn candidate chunk unavailable",
				"x", candidate.X, "y", candidate.Y, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if !s.separated(candidate, sel.Points) {
			continue
		}

		sel.Points = append(sel.Points, candidate)
		logger.Debug("Accepted spawn candidate",
			"x", candidate.X, "y", candidate.Y, "attempts", attempts)
	}

	if len(sel.Points) < s.opts.Count {
		s.fillFromScan(ctx, provider, obstacles, &sel)
	}

	if len(sel.Points) == 0 {
		sel.Points = append(sel.Points, grid.WorldPosition{X: 0, Y: 0})
		sel.Exhausted = true
	}
	sel.Primary = closestToOrigin(sel.Points)

	if sel.Exhausted || len(sel.Points) < s.opts.Count {
		logger.Warn("Spawn selection did not fill request",
			"requested", s.opts.Count, "found", len(sel.Points), "attempts", attempts)
		return sel, fmt.Errorf("found %d of %d spawn points after %d attempts: %w",
			len(sel.Points), s.opts.Count, attempts, ErrSelectionExhausted)
	}

	logger.Info("Selected spawn points",
		"count", len(sel.Points),
		"primaryX", sel.Primary.X, "primaryY", sel.Primary.Y,
		"attempts", attempts)
	return sel, nil
}

// fillFromScan completes an underfilled selection by walking every tile of
// the full search window in row-major order and accepting the eligible ones.
// The scan order is fixed, so the completed selection is as reproducible as
// the random phase.
func (s *Selector) fillFromScan(ctx context.Context, provider ChunkProvider, obstacles ObstacleChecker, sel *Selection) {
	xLo, xHi := clampWindow(s.opts.MaxRadius, s.opts.Bounds.Width)
	yLo, yHi := clampWindow(s.opts.MaxRadius, s.opts.Bounds.Height)

	for y := yLo; y <= yHi && len(sel.Points) < s.opts.Count; y++ {
		for x := xLo; x <= xHi && len(sel.Points) < s.opts.Count; x++ {
			candidate := grid.WorldPosition{X: x, Y: y}
			ok, err := s.open(ctx, provider, obstacles, candidate)
			if err != nil || !ok {
				continue
			}
			if !s.separated(candidate, sel.Points) {
				continue
			}
			sel.Points = append(sel.Points, candidate)
		}
	}
}

// open force-loads the candidate's chunk and reports whether an entity can
// stand on the tile: traversable terrain, no structure, no collision entry.
func (s *Selector) open(ctx context.Context, provider ChunkProvider, obstacles ObstacleChecker, pos grid.WorldPosition) (bool, error) {
	coord, lx, ly := pos.ChunkOf(s.opts.ChunkSize)
	c, err := provider.Get(ctx, coord)
	if err != nil {
		return false, err
	}
	tile := c.TileAt(lx, ly)
	if tile.StructureID != uuid.Nil {
		return false, nil
	}
	if !tile.Terrain.Traversable() {
		return false, nil
	}
	if obstacles != nil && obstacles.TileBlocked(pos) {
		return false, nil
	}
	return true, nil
}

func (s *Selector) separated(candidate grid.WorldPosition, accepted []grid.WorldPosition) bool {
	for _, p := range accepted {
		if candidate.DistanceTo(p) < s.opts.MinSeparation {
			return false
		}
	}
	return true
}

// clampWindow intersects the [-radius, radius] sampling interval with a
// corner-anchored extent of [0, extent-1]. A non-positive extent leaves the
// interval unclamped.
func clampWindow(radius, extent int) (int, int) {
	lo, hi := -radius, radius
	if extent > 0 {
		if lo < 0 {
			lo = 0
		}
		if hi > extent-1 {
			hi = extent - 1
		}
	}
	return lo, hi
}

func closestToOrigin(points []grid.WorldPosition) grid.WorldPosition {
	best := points[0]
	bestDist := best.DistanceToOrigin()
	for _, p := range points[1:] {
		if d := p.DistanceToOrigin(); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
