package chunk

import (
	"errors"
)

var (
	// ErrGenerationFailed marks a chunk whose generation pipeline failed.
	// It is recoverable: the manager caches a fallback chunk for the
	// coordinate and returns it alongside this error.
	ErrGenerationFailed = errors.New("chunk generation failed")

	// ErrOutOfBounds is returned when a requested chunk lies entirely
	// outside the configured world bounds. It indicates a caller bug and is
	// not recovered.
	ErrOutOfBounds = errors.New("chunk coordinate out of world bounds")

	// ErrNotLoaded is returned by persistence hooks addressed at a chunk
	// that is not currently materialized.
	ErrNotLoaded = errors.New("chunk not loaded")

	// ErrSnapshotMismatch is returned when a snapshot's coordinate or shape
	// does not match the coordinate it is being restored to.
	ErrSnapshotMismatch = errors.New("snapshot does not match coordinate")
)
