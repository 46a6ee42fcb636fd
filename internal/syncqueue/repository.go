package syncqueue

import (
	"context"
	"encoding/json"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
)

// Repository is the generic retry queue. Items are created when an online
// operation fails, drained FIFO by the sync engine, and removed on success
// or when their attempt count hits the configured ceiling.
type Repository interface {
	Enqueue(ctx context.Context, kind model.SyncOpKind, payload json.RawMessage) (int64, error)

	// DequeueAll returns every queued item oldest-first. The engine decides
	// per item whether to retry, keep, or drop.
	DequeueAll(ctx context.Context) ([]model.SyncQueueItem, error)

	// RecordAttempt bumps the attempt counter and stamps the attempt time.
	RecordAttempt(ctx context.Context, id int64) error

	Remove(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)
}
