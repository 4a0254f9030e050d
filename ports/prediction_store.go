package ports

import (
	"context"
	"errors"
	"fmt"
)

// PredictionStore is the generic network table store the pipeline persists
// into: it accepts a mapping-of-fields per record, a bounded batch per call,
// and an optional conflict key for upsert semantics.
type PredictionStore interface {
	// InsertChunk writes one bounded chunk as pure inserts.
	InsertChunk(ctx context.Context, table string, rows []map[string]any) error
	// UpsertChunk writes one bounded chunk, superseding existing rows that
	// share the conflict key when the incoming batch timestamp is newer.
	UpsertChunk(ctx context.Context, table string, rows []map[string]any, conflictKey []string) error
	// Count returns the stored row count for a table.
	Count(ctx context.Context, table string) (int64, error)
	// Recent returns the latest stored rows for a table, newest first.
	Recent(ctx context.Context, table string, limit int) ([]map[string]any, error)
}

// ChunkError wraps a chunk write failure with its retry class. Transient
// failures (network, store unavailable) are retried a bounded number of
// times; validation-class failures (conflict key violations, bad values)
// are not.
type ChunkError struct {
	Transient bool
	Err       error
}

func (e *ChunkError) Error() string {
	class := "validation"
	if e.Transient {
		class = "transient"
	}
	return fmt.Sprintf("chunk write failed (%s): %v", class, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// IsTransient reports whether an error is a retryable chunk failure.
func IsTransient(err error) bool {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Transient
	}
	return false
}
