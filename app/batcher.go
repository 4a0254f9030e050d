package app

import (
	"context"
	"time"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// PersistenceBatcher writes prediction records in bounded sequential chunks.
// A chunk that exhausts its retries is recorded and skipped; later chunks
// still run, so one poisoned chunk never discards the rest of a batch.
type PersistenceBatcher struct {
	store   ports.PredictionStore
	retries int
	backoff time.Duration
	logger  *internal.Logger
}

// NewPersistenceBatcher creates a batcher. retries is the number of attempts
// after the first; backoff is the base delay between attempts.
func NewPersistenceBatcher(store ports.PredictionStore, retries int, backoff time.Duration, logger *internal.Logger) *PersistenceBatcher {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PersistenceBatcher{
		store:   store,
		retries: retries,
		backoff: backoff,
		logger:  logger.Component("Batcher"),
	}
}

// Persist writes all records for one upload, chunked by the domain's batch
// size. The returned summary accounts for every record exactly once as either
// committed or part of a failed chunk.
func (b *PersistenceBatcher) Persist(ctx context.Context, d inference.Descriptor, records []inference.PredictionRecord) inference.PersistenceSummary {
	summary := inference.PersistenceSummary{Attempted: len(records)}
	if len(records) == 0 {
		return summary
	}

	size := d.BatchSize
	if size <= 0 {
		size = 1000
	}

	chunkIndex := 0
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunkIndex++

		if err := ctx.Err(); err != nil {
			// Request abandoned: account for every remaining record, attempt none.
			summary.FailedChunks = append(summary.FailedChunks, inference.ChunkFailure{
				Chunk:       chunkIndex,
				FirstRecord: start,
				LastRecord:  end - 1,
				Attempts:    0,
				Reason:      err.Error(),
			})
			continue
		}

		rows := make([]map[string]any, 0, end-start)
		for _, rec := range records[start:end] {
			rows = append(rows, d.RecordFields(rec))
		}

		if attempts, err := b.writeChunk(ctx, d, rows); err != nil {
			b.logger.Warn("Chunk %d (%d-%d) failed after %d attempts: %v",
				chunkIndex, start, end-1, attempts, err)
			summary.FailedChunks = append(summary.FailedChunks, inference.ChunkFailure{
				Chunk:       chunkIndex,
				FirstRecord: start,
				LastRecord:  end - 1,
				Attempts:    attempts,
				Reason:      err.Error(),
			})
		} else {
			summary.Committed += end - start
		}
	}

	return summary
}

// writeChunk attempts one chunk with bounded retries. Only transient store
// failures are retried; a validation-class failure repeats identically and is
// surfaced on the first attempt.
func (b *PersistenceBatcher) writeChunk(ctx context.Context, d inference.Descriptor, rows []map[string]any) (int, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return attempts, ctx.Err()
			case <-time.After(b.backoff * time.Duration(attempt)):
			}
		}
		attempts++

		var err error
		if len(d.ConflictKey) > 0 {
			err = b.store.UpsertChunk(ctx, d.Table, rows, d.ConflictKey)
		} else {
			err = b.store.InsertChunk(ctx, d.Table, rows)
		}
		if err == nil {
			return attempts, nil
		}
		lastErr = err
		if !ports.IsTransient(err) {
			return attempts, err
		}
	}
	return attempts, lastErr
}
