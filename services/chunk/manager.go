package chunk

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
)

// Options configures a Manager.
type Options struct {
	ChunkSize int
	// Bounds are the finite world bounds in tiles. A zero value disables
	// bounds checking (infinite world).
	Bounds grid.Bounds
	// HysteresisMargin widens the eviction radius beyond the view distance
	// so a center oscillating near a chunk boundary does not thrash.
	HysteresisMargin int
	// Workers bounds the pool used by UpdateLoaded. Defaults to 4.
	Workers int
	// Collision, when set, receives obstacle geometry for every chunk the
	// manager materializes and a removal call for every chunk it evicts.
	Collision CollisionRegistry
	// Store, when set, is consulted before generating and written on evict.
	Store SnapshotStore
}

// Manager owns the set of currently materialized chunks. It is the single
// writer of the chunk cache and of the collision registry: worker goroutines
// only compute immutable chunk values, and every cache or registry mutation
// happens under the manager's lock.
type Manager struct {
	mu     sync.RWMutex
	chunks map[grid.ChunkCoord]*Chunk

	gen    GeneratorInterface
	flight singleflight.Group
	opts   Options
}

// getResult carries a generation outcome through the single-flight group so
// that all collapsed callers receive both the chunk and any recoverable
// generation error.
type getResult struct {
	chunk  *Chunk
	genErr error
}

// NewManager creates a chunk manager over a generator.
func NewManager(gen GeneratorInterface, opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	logging.GetLogger().Debug("Creating chunk manager",
		"chunk_size", opts.ChunkSize,
		"bounds_width", opts.Bounds.Width,
		"bounds_height", opts.Bounds.Height)
	return &Manager{
		chunks: make(map[grid.ChunkCoord]*Chunk),
		gen:    gen,
		opts:   opts,
	}
}

// Get returns the chunk at a coordinate, materializing it if needed.
// Concurrent requests for the same coordinate collapse into a single
// generation. When the generation pipeline fails, Get caches and returns a
// fallback chunk together with an error wrapping ErrGenerationFailed; the
// coordinate is never left in a partially initialized state.
func (m *Manager) Get(ctx context.Context, coord grid.ChunkCoord) (*Chunk, error) {
	if err := m.checkBounds(coord); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if c, ok := m.chunks[coord]; ok {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := m.flight.Do(coord.Key(), func() (interface{}, error) {
		// Re-check under the flight: another caller may have inserted the
		// chunk between our read miss and the flight starting.
		m.mu.RLock()
		if c, ok := m.chunks[coord]; ok {
			m.mu.RUnlock()
			return getResult{chunk: c}, nil
		}
		m.mu.RUnlock()

		c, genErr := m.materialize(coord)
		m.insert(c)
		return getResult{chunk: c, genErr: genErr}, nil
	})
	if err != nil {
		return nil, err
	}
	res := v.(getResult)
	return res.chunk, res.genErr
}

// Loaded reports the explicit materialization state of a coordinate. A
// false result means "not yet generated"; callers must handle it rather
// than assuming a default chunk.
func (m *Manager) Loaded(coord grid.ChunkCoord) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[coord]
	return c, ok
}

// LoadedCount returns how many chunks are currently materialized.
func (m *Manager) LoadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// LoadedCoords returns the coordinates of all materialized chunks.
func (m *Manager) LoadedCoords() []grid.ChunkCoord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coords := make([]grid.ChunkCoord, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	return coords
}

// UpdateLoaded ensures every chunk within Chebyshev distance viewDistance of
// center is materialized, then evicts chunks farther than viewDistance plus
// the hysteresis margin. Calling it twice with an unchanged center performs
// no generation and no eviction.
func (m *Manager) UpdateLoaded(ctx context.Context, center grid.ChunkCoord, viewDistance int) error {
	logger := logging.WithChunkCoords(center.X, center.Y)

	var wanted []grid.ChunkCoord
	for dy := -viewDistance; dy <= viewDistance; dy++ {
		for dx := -viewDistance; dx <= viewDistance; dx++ {
			coord := grid.ChunkCoord{X: center.X + dx, Y: center.Y + dy}
			if m.checkBounds(coord) != nil {
				continue
			}
			if _, ok := m.Loaded(coord); !ok {
				wanted = append(wanted, coord)
			}
		}
	}

	if len(wanted) > 0 {
		if err := m.loadParallel(ctx, wanted); err != nil {
			return err
		}
		logger.Debug("Loaded chunks around center", "count", len(wanted))
	}

	evictBeyond := viewDistance + m.opts.HysteresisMargin
	evicted := m.evictBeyond(center, evictBeyond)
	if evicted > 0 {
		logger.Debug("Evicted distant chunks", "count", evicted, "radius", evictBeyond)
	}
	return ctx.Err()
}

// Serialize captures the snapshot of a materialized chunk for the external
// save system.
func (m *Manager) Serialize(coord grid.ChunkCoord) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[coord]
	if !ok {
		return nil, fmt.Errorf("serialize chunk %s: %w", coord.Key(), ErrNotLoaded)
	}
	return c.ToSnapshot(), nil
}

// Deserialize restores a chunk from a snapshot, replacing any chunk already
// materialized at the coordinate, and registers its collision geometry.
func (m *Manager) Deserialize(coord grid.ChunkCoord, snap *Snapshot) (*Chunk, error) {
	if err := m.checkBounds(coord); err != nil {
		return nil, err
	}
	if snap == nil || snap.Coord != coord || snap.Size != m.opts.ChunkSize || len(snap.Tiles) != snap.Size*snap.Size {
		return nil, fmt.Errorf("deserialize chunk %s: %w", coord.Key(), ErrSnapshotMismatch)
	}

	c := FromSnapshot(snap)

	m.mu.Lock()
	if _, ok := m.chunks[coord]; ok && m.opts.Collision != nil {
		m.opts.Collision.UnregisterChunk(coord)
	}
	m.chunks[coord] = c
	if m.opts.Collision != nil {
		m.opts.Collision.RegisterChunk(c)
	}
	m.mu.Unlock()

	return c, nil
}

// materialize produces a chunk from the snapshot store or the generator.
// The recoverable-failure contract lives here: any pipeline error or panic
// becomes a fallback chunk plus a wrapped ErrGenerationFailed.
func (m *Manager) materialize(coord grid.ChunkCoord) (c *Chunk, genErr error) {
	logger := logging.WithChunkCoords(coord.X, coord.Y)

	if m.opts.Store != nil {
		snap, err := m.opts.Store.Load(coord)
		if err != nil {
			logger.Error("Failed to read chunk snapshot, regenerating", "error", err)
		} else if snap != nil {
			logger.Debug("Restored chunk from snapshot store")
			return FromSnapshot(snap), nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Chunk generation panicked, substituting fallback", "panic", r)
			c = m.gen.Fallback(coord)
			genErr = fmt.Errorf("generating chunk %s: panic: %v: %w", coord.Key(), r, ErrGenerationFailed)
		}
	}()

	generated, err := m.gen.Generate(coord)
	if err != nil {
		logger.Error("Chunk generation failed, substituting fallback", "error", err)
		return m.gen.Fallback(coord), fmt.Errorf("generating chunk %s: %w", coord.Key(), err)
	}
	return generated, nil
}

// insert makes a chunk visible and registers its collision geometry.
func (m *Manager) insert(c *Chunk) {
	m.mu.Lock()
	m.chunks[c.Coord] = c
	if m.opts.Collision != nil {
		m.opts.Collision.RegisterChunk(c)
	}
	m.mu.Unlock()
}

// evictBeyond removes chunks farther than radius from center, persisting
// each to the snapshot store first. Fallback chunks are not persisted, so a
// later load retries real generation instead of pinning degraded content.
func (m *Manager) evictBeyond(center grid.ChunkCoord, radius int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for coord, c := range m.chunks {
		if coord.Chebyshev(center) <= radius {
			continue
		}
		if m.opts.Store != nil && !c.Fallback {
			if err := m.opts.Store.Save(coord, c.ToSnapshot()); err != nil {
				logging.WithChunkCoords(coord.X, coord.Y).Error("Failed to persist chunk on evict", "error", err)
			}
		}
		if m.opts.Collision != nil {
			m.opts.Collision.UnregisterChunk(coord)
		}
		delete(m.chunks, coord)
		evicted++
	}
	return evicted
}

// loadParallel materializes a set of coordinates on a bounded worker pool.
// Workers only call Get; all cache mutation stays inside the manager.
func (m *Manager) loadParallel(ctx context.Context, coords []grid.ChunkCoord) error {
	workerCount := m.opts.Workers
	if len(coords) < workerCount {
		workerCount = len(coords)
	}

	coordChan := make(chan grid.ChunkCoord, len(coords))
	errChan := make(chan error, workerCount)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for coord := range coordChan {
				if ctx.Err() != nil {
					return
				}
				// Generation failures are recoverable: the fallback chunk
				// is already cached, so the sweep keeps going.
				if _, err := m.Get(ctx, coord); err != nil && ctx.Err() != nil {
					select {
					case errChan <- err:
					default:
					}
					return
				}
			}
		}()
	}

	for _, coord := range coords {
		coordChan <- coord
	}
	close(coordChan)
	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		return ctx.Err()
	}
}

func (m *Manager) checkBounds(coord grid.ChunkCoord) error {
	b := m.opts.Bounds
	if b.Width <= 0 || b.Height <= 0 {
		return nil
	}
	if !b.ContainsChunk(coord, m.opts.ChunkSize) {
		return fmt.Errorf("chunk %s outside world %dx%d: %w", coord.Key(), b.Width, b.Height, ErrOutOfBounds)
	}
	return nil
}
