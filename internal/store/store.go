// Package store persists chunk snapshots through a gdata-backed key-value
// container. Only chunks touched by gameplay need to live here; anything
// absent is regenerated deterministically from the world seed.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata"

	"github.com/AfyKirby1/Game-Runic-Lands/internal/logging"
	"github.com/AfyKirby1/Game-Runic-Lands/services/chunk"
	"github.com/AfyKirby1/Game-Runic-Lands/services/grid"
)

// ChunkStore saves and loads chunk snapshots as JSON items keyed by chunk
// coordinate. It implements chunk.SnapshotStore.
type ChunkStore struct {
	manager *gdata.Manager
}

// Open creates a chunk store rooted at the platform's data directory for
// the given application name.
func Open(appName string) (*ChunkStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}
	return &ChunkStore{manager: m}, nil
}

func itemKey(coord grid.ChunkCoord) string {
	return fmt.Sprintf("chunk_%d_%d", coord.X, coord.Y)
}

// Save writes the snapshot for a coordinate, overwriting any previous one.
func (s *ChunkStore) Save(coord grid.ChunkCoord, snapshot *chunk.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for chunk %s: %w", coord.Key(), err)
	}
	if err := s.manager.SaveItem(itemKey(coord), data); err != nil {
		return fmt.Errorf("failed to save snapshot for chunk %s: %w", coord.Key(), err)
	}
	logging.WithChunkCoords(coord.X, coord.Y).Debug("Saved chunk snapshot",
		"bytes", len(data))
	return nil
}

// Load returns the stored snapshot for a coordinate, or (nil, nil) when none
// has been saved.
func (s *ChunkStore) Load(coord grid.ChunkCoord) (*chunk.Snapshot, error) {
	if !s.manager.ItemExists(itemKey(coord)) {
		return nil, nil
	}
	data, err := s.manager.LoadItem(itemKey(coord))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for chunk %s: %w", coord.Key(), err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snapshot chunk.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for chunk %s: %w", coord.Key(), err)
	}
	return &snapshot, nil
}

// Delete removes a stored snapshot, making the chunk regenerate from seed on
// its next load.
func (s *ChunkStore) Delete(coord grid.ChunkCoord) error {
	if err := s.manager.DeleteItem(itemKey(coord)); err != nil {
		return fmt.Errorf("failed to delete snapshot for chunk %s: %w", coord.Key(), err)
	}
	return nil
}
