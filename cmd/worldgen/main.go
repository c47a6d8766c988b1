package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/config"
	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/internal/store"
	"github.com/AfyKirby1/Game-Runic-Lands/services/chunk"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
	"github.com/AfyKirby1/Game-Runic-Lands/services/world"
)

func main() {
	seed := flag.Int64("seed", 12345, "World seed")
	persist := flag.Bool("persist", false, "Persist chunk snapshots to the platform data directory")
	inspectX := flag.Int("x", 0, "Chunk X to inspect after init")
	inspectY := flag.Int("y", 0, "Chunk Y to inspect after init")
	flag.Parse()

	cfg := config.Load()
	logging.InitLogger()

	var snapshots chunk.SnapshotStore
	if *persist {
		s, err := store.Open("runic-lands")
		if err != nil {
			log.Fatal("Failed to open chunk store", "error", err)
		}
		snapshots = s
	}

	w := world.New(*seed, cfg, snapshots)

	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		log.Fatal("World initialization failed", "error", err)
	}

	c, err := w.Manager.Get(ctx, grid.ChunkCoord{X: *inspectX, Y: *inspectY})
	if err != nil {
		log.Error("Chunk generation degraded", "error", err)
	}
	if c == nil {
		os.Exit(1)
	}

	fmt.Printf("seed=%d chunk=(%d,%d) biome=%s structures=%d resources=%d\n",
		*seed, c.Coord.X, c.Coord.Y, c.Biome, len(c.Structures), len(c.Resources))
	fmt.Printf("spawns=%d primary=(%d,%d) loaded=%d collision_border=%d\n",
		len(w.Spawns.Points), w.Spawns.Primary.X, w.Spawns.Primary.Y,
		w.Manager.LoadedCount(), w.Collision.BorderEntryCount())
}
