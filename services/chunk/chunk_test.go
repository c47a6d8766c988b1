package chunk

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/testutil"
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/noise"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

const testChunkSize = 16

func newTestGenerator(seed int64) *Generator {
	noiseGen := noise.NewGenerator(seed, noise.DefaultScales(), testChunkSize)
	classifier := biome.NewClassifier(biome.DefaultThresholds(), 48)
	typer := terrain.NewTyper()
	placer := feature.NewPlacer(noiseGen, feature.DefaultConfig())
	return NewGenerator(noiseGen, classifier, typer, placer, testChunkSize)
}

// countingGenerator wraps a real generator and counts Generate calls.
type countingGenerator struct {
	inner     GeneratorInterface
	calls     int64
	callGate  chan struct{} // when set, Generate blocks until the gate closes
	shouldErr bool
	panicMsg  string
}

func (g *countingGenerator) Generate(coord grid.ChunkCoord) (*Chunk, error) {
	atomic.AddInt64(&g.calls, 1)
	if g.callGate != nil {
		<-g.callGate
	}
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	if g.shouldErr {
		return nil, errors.New("pipeline exploded")
	}
	return g.inner.Generate(coord)
}

func (g *countingGenerator) Fallback(coord grid.ChunkCoord) *Chunk {
	return g.inner.Fallback(coord)
}

func (g *countingGenerator) Calls() int64 {
	return atomic.LoadInt64(&g.calls)
}

// mockRegistry records collision register/unregister calls per chunk.
type mockRegistry struct {
	mu         sync.Mutex
	registered map[grid.ChunkCoord]int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{registered: make(map[grid.ChunkCoord]int)}
}

func (r *mockRegistry) RegisterChunk(c *Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered[c.Coord]++
}

func (r *mockRegistry) UnregisterChunk(coord grid.ChunkCoord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered[coord]--
}

func (r *mockRegistry) Count(coord grid.ChunkCoord) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered[coord]
}

// memoryStore is an in-memory SnapshotStore.
type memoryStore struct {
	mu        sync.Mutex
	snapshots map[grid.ChunkCoord]*Snapshot
	saves     int
	loads     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snapshots: make(map[grid.ChunkCoord]*Snapshot)}
}

func (s *memoryStore) Save(coord grid.ChunkCoord, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.snapshots[coord] = snap
	return nil
}

func (s *memoryStore) Load(coord grid.ChunkCoord) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.snapshots[coord], nil
}

func TestGenerator_ChunkShape(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := newTestGenerator(12345)

	coords := []grid.ChunkCoord{{X: 0, Y: 0}, {X: 3, Y: 1}, {X: -2, Y: -2}, {X: 10, Y: -7}}
	for _, coord := range coords {
		c, err := gen.Generate(coord)
		require.NoError(t, err)
		assert.Equal(t, coord, c.Coord)
		assert.Equal(t, testChunkSize, c.Size)
		assert.Len(t, c.Tiles, testChunkSize*testChunkSize)
		assert.False(t, c.Fallback)
	}
}

func TestGenerator_Determinism(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	// Two completely independent pipelines from the same seed must produce
	// identical chunks, tile for tile and feature for feature.
	coord := grid.ChunkCoord{X: 2, Y: 3}
	a, err := newTestGenerator(555).Generate(coord)
	require.NoError(t, err)
	b, err := newTestGenerator(555).Generate(coord)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerator_RegressionFixture(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	// Two fresh runs with seed 12345 must agree on chunk (0,0), including
	// the biome/terrain pair at tile (8,8).
	coord := grid.ChunkCoord{X: 0, Y: 0}
	first, err := newTestGenerator(12345).Generate(coord)
	require.NoError(t, err)
	second, err := newTestGenerator(12345).Generate(coord)
	require.NoError(t, err)

	assert.Equal(t, first.Biome, second.Biome)
	assert.Equal(t, first.TileAt(8, 8), second.TileAt(8, 8))
	assert.Equal(t, first, second)
}

func TestGenerator_SeedsProduceDifferentWorlds(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	// Sample a spread of chunks; at least one must differ between seeds.
	differ := false
	for _, coord := range []grid.ChunkCoord{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: -3, Y: 8}} {
		a, err := newTestGenerator(1).Generate(coord)
		require.NoError(t, err)
		b, err := newTestGenerator(2).Generate(coord)
		require.NoError(t, err)
		if !assert.ObjectsAreEqual(a, b) {
			differ = true
		}
	}
	assert.True(t, differ, "different seeds should produce different chunks")
}

func TestGenerator_StructureBackReferences(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := newTestGenerator(12345)

	// Scan until we find a chunk with structures, then verify the tile
	// back-references match the structure list.
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			c, err := gen.Generate(grid.ChunkCoord{X: x, Y: y})
			require.NoError(t, err)
			for _, s := range c.Structures {
				assert.Equal(t, s.ID, c.TileAt(s.LocalX, s.LocalY).StructureID)
			}
			for _, r := range c.Resources {
				assert.Equal(t, r.Kind, c.TileAt(r.LocalX, r.LocalY).Resource)
			}
		}
	}
}

func TestGenerator_Fallback(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	c := newTestGenerator(1).Fallback(grid.ChunkCoord{X: 9, Y: 9})

	assert.True(t, c.Fallback)
	assert.Equal(t, biome.Plains, c.Biome)
	assert.Len(t, c.Tiles, testChunkSize*testChunkSize)
	assert.Empty(t, c.Structures)
	assert.Empty(t, c.Resources)
	for _, tile := range c.Tiles {
		assert.Equal(t, terrain.Grass, tile.Terrain)
	}
}

func TestManager_GetCachesChunks(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(12345)}
	m := NewManager(gen, Options{ChunkSize: testChunkSize})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 1, Y: 1}
	first, err := m.Get(ctx, coord)
	require.NoError(t, err)
	second, err := m.Get(ctx, coord)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, gen.Calls())
}

func TestManager_SingleFlight(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gate := make(chan struct{})
	gen := &countingGenerator{inner: newTestGenerator(12345), callGate: gate}
	m := NewManager(gen, Options{ChunkSize: testChunkSize})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 0, Y: 0}
	const callers = 8

	var wg sync.WaitGroup
	results := make([]*Chunk, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.Get(ctx, coord)
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}

	// Let all callers pile up on the in-flight generation, then release it.
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, gen.Calls(), "concurrent gets should collapse into one generation")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestManager_GenerationFailureFallsBack(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(1), shouldErr: true}
	m := NewManager(gen, Options{ChunkSize: testChunkSize})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 4, Y: 4}
	c, err := m.Get(ctx, coord)

	require.ErrorIs(t, err, ErrGenerationFailed)
	require.NotNil(t, c, "caller must still receive a usable chunk")
	assert.True(t, c.Fallback)
	assert.Len(t, c.Tiles, testChunkSize*testChunkSize)

	// The fallback is cached: the coordinate is never left half-initialized
	// and is not regenerated on the next get.
	again, err := m.Get(ctx, coord)
	assert.NoError(t, err)
	assert.Same(t, c, again)
	assert.EqualValues(t, 1, gen.Calls())
}

func TestManager_GenerationPanicFallsBack(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(1), panicMsg: "index out of range"}
	m := NewManager(gen, Options{ChunkSize: testChunkSize})
	ctx := testutil.CreateTestContext()

	c, err := m.Get(ctx, grid.ChunkCoord{X: 0, Y: 0})

	require.ErrorIs(t, err, ErrGenerationFailed)
	require.NotNil(t, c)
	assert.True(t, c.Fallback)
}

func TestManager_OutOfBounds(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(1)}
	m := NewManager(gen, Options{
		ChunkSize: testChunkSize,
		Bounds:    grid.Bounds{Width: 64, Height: 64},
	})
	ctx := testutil.CreateTestContext()

	_, err := m.Get(ctx, grid.ChunkCoord{X: 4, Y: 0})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = m.Get(ctx, grid.ChunkCoord{X: -1, Y: 0})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = m.Get(ctx, grid.ChunkCoord{X: 3, Y: 3})
	assert.NoError(t, err)
}

func TestManager_UpdateLoaded(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(12345)}
	registry := newMockRegistry()
	m := NewManager(gen, Options{
		ChunkSize:        testChunkSize,
		HysteresisMargin: 1,
		Collision:        registry,
	})
	ctx := testutil.CreateTestContext()

	center := grid.ChunkCoord{X: 5, Y: 5}
	require.NoError(t, m.UpdateLoaded(ctx, center, 2))

	// A 5x5 neighborhood around the center is materialized.
	assert.Equal(t, 25, m.LoadedCount())
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			coord := grid.ChunkCoord{X: center.X + dx, Y: center.Y + dy}
			_, ok := m.Loaded(coord)
			assert.True(t, ok, "chunk %s should be loaded", coord.Key())
			assert.Equal(t, 1, registry.Count(coord))
		}
	}

	t.Run("idempotent for unchanged center", func(t *testing.T) {
		calls := gen.Calls()
		require.NoError(t, m.UpdateLoaded(ctx, center, 2))
		assert.Equal(t, calls, gen.Calls(), "no regeneration on unchanged center")
		assert.Equal(t, 25, m.LoadedCount(), "no eviction on unchanged center")
	})

	t.Run("hysteresis keeps the margin ring", func(t *testing.T) {
		// Moving one chunk over keeps everything within view+1.
		moved := grid.ChunkCoord{X: 6, Y: 5}
		require.NoError(t, m.UpdateLoaded(ctx, moved, 2))

		for _, coord := range m.LoadedCoords() {
			assert.LessOrEqual(t, coord.Chebyshev(moved), 3)
		}
		_, ok := m.Loaded(grid.ChunkCoord{X: 3, Y: 5})
		assert.True(t, ok, "chunk at distance 3 stays within hysteresis")
	})

	t.Run("eviction removes collision entries exactly", func(t *testing.T) {
		far := grid.ChunkCoord{X: 20, Y: 20}
		require.NoError(t, m.UpdateLoaded(ctx, far, 2))

		evictedCoord := grid.ChunkCoord{X: 5, Y: 5}
		_, ok := m.Loaded(evictedCoord)
		assert.False(t, ok)
		assert.Equal(t, 0, registry.Count(evictedCoord))
		assert.Equal(t, 1, registry.Count(grid.ChunkCoord{X: 20, Y: 20}))
	})
}

func TestManager_SerializeDeserialize(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	gen := &countingGenerator{inner: newTestGenerator(12345)}
	registry := newMockRegistry()
	m := NewManager(gen, Options{ChunkSize: testChunkSize, Collision: registry})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 2, Y: 2}
	original, err := m.Get(ctx, coord)
	require.NoError(t, err)

	snap, err := m.Serialize(coord)
	require.NoError(t, err)

	// Simulate gameplay mutation, then restore.
	restored, err := m.Deserialize(coord, snap)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
	assert.Equal(t, 1, registry.Count(coord), "deserialize re-registers collision once")

	t.Run("serialize unloaded chunk", func(t *testing.T) {
		_, err := m.Serialize(grid.ChunkCoord{X: 9, Y: 9})
		assert.ErrorIs(t, err, ErrNotLoaded)
	})

	t.Run("snapshot coordinate mismatch", func(t *testing.T) {
		_, err := m.Deserialize(grid.ChunkCoord{X: 3, Y: 3}, snap)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
	})

	t.Run("malformed snapshot", func(t *testing.T) {
		bad := &Snapshot{Coord: coord, Size: testChunkSize, Tiles: make([]Tile, 3)}
		_, err := m.Deserialize(coord, bad)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
	})

	t.Run("foreign chunk size", func(t *testing.T) {
		// Internally consistent but sized for a different world; accepting
		// it would break the tiles == chunkSize² invariant.
		bad := &Snapshot{Coord: coord, Size: 8, Tiles: make([]Tile, 64)}
		_, err := m.Deserialize(coord, bad)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		bad := &Snapshot{Coord: coord}
		_, err := m.Deserialize(coord, bad)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
	})
}

func TestManager_PersistOnEvict(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	store := newMemoryStore()
	gen := &countingGenerator{inner: newTestGenerator(12345)}
	m := NewManager(gen, Options{ChunkSize: testChunkSize, Store: store})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 0, Y: 0}
	original, err := m.Get(ctx, coord)
	require.NoError(t, err)

	// Push the center far away so the chunk is evicted and persisted.
	require.NoError(t, m.UpdateLoaded(ctx, grid.ChunkCoord{X: 50, Y: 50}, 1))
	_, loaded := m.Loaded(coord)
	require.False(t, loaded)

	store.mu.Lock()
	_, saved := store.snapshots[coord]
	store.mu.Unlock()
	require.True(t, saved, "evicted chunk should be persisted")

	// Reloading restores from the store instead of regenerating.
	calls := gen.Calls()
	restored, err := m.Get(ctx, coord)
	require.NoError(t, err)
	assert.Equal(t, calls, gen.Calls(), "restore must not regenerate")
	assert.Equal(t, original, restored)
}

func TestManager_FallbackChunksNotPersisted(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	store := newMemoryStore()
	gen := &countingGenerator{inner: newTestGenerator(1), shouldErr: true}
	m := NewManager(gen, Options{ChunkSize: testChunkSize, Store: store})
	ctx := testutil.CreateTestContext()

	coord := grid.ChunkCoord{X: 0, Y: 0}
	c, err := m.Get(ctx, coord)
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.True(t, c.Fallback)

	require.NoError(t, m.UpdateLoaded(ctx, grid.ChunkCoord{X: 50, Y: 50}, 1))

	store.mu.Lock()
	_, saved := store.snapshots[coord]
	store.mu.Unlock()
	assert.False(t, saved, "fallback chunks must not pin degraded content")
}

func TestChunk_SnapshotRoundTrip(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	c, err := newTestGenerator(12345).Generate(grid.ChunkCoord{X: 1, Y: 2})
	require.NoError(t, err)

	restored := FromSnapshot(c.ToSnapshot())
	assert.Equal(t, c, restored)

	// The snapshot is a deep copy: mutating it must not touch the chunk.
	snap := c.ToSnapshot()
	snap.Tiles[0].Terrain = terrain.Lava
	assert.NotEqual(t, terrain.Lava, c.Tiles[0].Terrain)
}
