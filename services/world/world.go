// Package world assembles the generation engine: it owns the seed, wires the
// noise, biome, terrain and feature services into a chunk generator, and
// runs the once-per-world initialization (border forest, spawn selection,
// initial chunk load) before handing control to per-tick updates.
package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/config"
	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/biome"
	"github.com/AfyKirby1/Game-Runic-Lands/services/border"
	"github.com/AfyKirby1/Game-Runic-Lands/services/chunk"
	"github.com/AfyKirby1/Game-Runic-Lands/services/collision"
	"github.com/AfyKirby1/Game-Runic-Lands/services/feature"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/noise"
	"github.com/AfyKirby1/Game-Runic-Lands/services/spawn"
	"github.com/AfyKirby1/Game-Runic-Lands/services/terrain"
)

// World owns the seed and every engine service built from it. The seed is
// immutable for the world's lifetime; all terrain, features, spawns and the
// border forest derive from it deterministically.
type World struct {
	seed   int64
	cfg    *config.Config
	bounds grid.Bounds

	Manager   *chunk.Manager
	Collision *collision.Index

	Border []border.Segment
	Spawns spawn.Selection
}

// New wires the full generation pipeline for a seed. The optional store
// receives chunk snapshots on evict and is consulted before regeneration;
// pass nil for a purely in-memory world.
func New(seed int64, cfg *config.Config, snapshots chunk.SnapshotStore) *World {
	bounds := grid.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}

	noiseGen := noise.NewGenerator(seed, noise.DefaultScales(), cfg.World.ChunkSize)
	classifier := biome.NewClassifier(biome.DefaultThresholds(), float64(cfg.World.OriginBiasRadius))
	typer := terrain.NewTyper()
	placer := feature.NewPlacer(noiseGen, feature.DefaultConfig())
	generator := chunk.NewGenerator(noiseGen, classifier, typer, placer, cfg.World.ChunkSize)

	index := collision.NewIndex(bounds, cfg.World.TileSize)
	manager := chunk.NewManager(generator, chunk.Options{
		ChunkSize:        cfg.World.ChunkSize,
		Bounds:           bounds,
		HysteresisMargin: cfg.World.HysteresisMargin,
		Collision:        index,
		Store:            snapshots,
	})

	return &World{
		seed:      seed,
		cfg:       cfg,
		bounds:    bounds,
		Manager:   manager,
		Collision: index,
	}
}

// Seed returns the world seed.
func (w *World) Seed() int64 {
	return w.seed
}

// Bounds returns the world bounds in tiles, corner-anchored at (0, 0).
func (w *World) Bounds() grid.Bounds {
	return w.bounds
}

// Init runs the one-time world setup: the border forest ring, spawn point
// selection around the origin, and the initial chunk load around the primary
// spawn. Spawn exhaustion degrades the world rather than failing it, so Init
// reports it through the returned Selection and keeps going; only
// non-recoverable errors abort.
func (w *World) Init(ctx context.Context) error {
	logger := logging.WithSeed(w.seed)
	logger.Info("Initializing world",
		"width", w.bounds.Width, "height", w.bounds.Height,
		"chunk_size", w.cfg.World.ChunkSize)

	// The border forest registers its collision entries first so spawn
	// selection can see and avoid them.
	borderGen := border.NewGenerator(w.seed)
	w.Border = borderGen.Generate(w.bounds, w.cfg.Border.Depth, w.cfg.Border.TreeProbability, w.Collision)

	selector := spawn.NewSelector(w.seed, spawn.Options{
		ChunkSize:     w.cfg.World.ChunkSize,
		Count:         w.cfg.Spawn.Count,
		MaxAttempts:   w.cfg.Spawn.MaxAttempts,
		MinSeparation: w.cfg.Spawn.MinSeparation,
		MaxRadius:     w.cfg.Spawn.MaxRadius,
		Bounds:        w.bounds,
	})
	selection, err := selector.SelectSpawns(ctx, w.Manager, w.Collision)
	if err != nil && !errors.Is(err, spawn.ErrSelectionExhausted) {
		return fmt.Errorf("failed to select spawns: %w", err)
	}
	w.Spawns = selection

	primaryChunk, _, _ := selection.Primary.ChunkOf(w.cfg.World.ChunkSize)
	if err := w.Manager.UpdateLoaded(ctx, primaryChunk, w.cfg.World.ViewDistance); err != nil {
		return fmt.Errorf("failed to load initial chunks: %w", err)
	}

	logger.Info("World initialized",
		"spawns", len(selection.Points),
		"loaded_chunks", w.Manager.LoadedCount(),
		"border_entries", w.Collision.BorderEntryCount())
	return nil
}

// UpdateLoaded drives the load/evict lifecycle from a player position. It
// should be called once per tick or on movement.
func (w *World) UpdateLoaded(ctx context.Context, playerPos grid.WorldPosition) error {
	center, _, _ := playerPos.ChunkOf(w.cfg.World.ChunkSize)
	return w.Manager.UpdateLoaded(ctx, center, w.cfg.World.ViewDistance)
}
