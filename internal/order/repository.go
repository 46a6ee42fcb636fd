package order

import (
	"context"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
)

// Repository is the durable store of locally created orders. Orders are
// never deleted here; voiding is an admin operation against the remote
// order once it has synced.
type Repository interface {
	// Insert appends a new order with synced=false and returns the local id.
	Insert(ctx context.Context, o *model.Order) (int64, error)

	// Get returns the order with the given local id, or nil if absent.
	Get(ctx context.Context, localID int64) (*model.Order, error)

	// List returns the most recent orders first.
	List(ctx context.Context, limit int) ([]model.Order, error)

	// ListUnsynced returns unsynced orders oldest-first, preserving the
	// sequence customers were served in for replay to the backend.
	ListUnsynced(ctx context.Context) ([]model.Order, error)

	CountUnsynced(ctx context.Context) (int64, error)

	// MarkSynced is a one-way, idempotent transition: repeating it with the
	// same remote id is a no-op, not an error.
	MarkSynced(ctx context.Context, localID int64, remoteID string) error
}
