package vectorstore

import (
	"context"
	"fmt"
)

// DefaultBatchSize is the upsert batch size used across the service.
const DefaultBatchSize = 100

// BatchError reports a single failed upsert batch. Upserts are idempotent,
// so a failed batch can always be retried without affecting others.
type BatchError struct {
	Batch int
	Size  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upserting batch %d (%d documents): %v", e.Batch, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// UpsertBatches upserts documents in fixed-size batches. A failing batch is
// recorded and does not block the remaining batches. The returned slice
// contains one entry per failed batch, or is empty when everything committed.
func UpsertBatches(ctx context.Context, store Store, namespace string, docs []Document, size int) []*BatchError {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var failed []*BatchError
	for i := 0; i < len(docs); i += size {
		end := i + size
		if end > len(docs) {
			end = len(docs)
		}

		batch := docs[i:end]
		if err := store.Upsert(ctx, namespace, batch); err != nil {
			failed = append(failed, &BatchError{
				Batch: i/size + 1,
				Size:  len(batch),
				Err:   err,
			})
		}
	}

	return failed
}
