package syncer

import (
	"context"
	"errors"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/syncer/dto"
)

// ErrBusy reports that a sync pass is already running. The in-flight pass
// covers the same pending work, so callers simply wait it out.
var ErrBusy = errors.New("sync already in progress")

// UseCase is the facade the checkout UI talks to. Reads and order creation
// touch only the local store and never wait on network I/O; remote
// reconciliation happens in background sync passes.
type UseCase interface {
	// Start launches the periodic sync loop and wires the connectivity
	// trigger. Blocks until ctx is done.
	Start(ctx context.Context)

	GetProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error)

	// CreateOrder durably records the order locally and returns its local
	// id immediately. If the device is online a background sync pass is
	// kicked, but the returned id is valid regardless of sync outcome.
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (int64, error)

	GetOrders(ctx context.Context, limit int) ([]model.Order, error)
	UnsyncedCount(ctx context.Context) (int64, error)

	// ForceSync runs a full sync pass synchronously. Fails fast with an
	// offline error when there is no connectivity; it does not queue.
	ForceSync(ctx context.Context) error

	// ForceSyncOrders pushes all unsynced orders through the bulk sync
	// endpoint and reports how many succeeded and failed. Fails fast with
	// an offline error when there is no connectivity and with ErrBusy while
	// a regular pass holds the sync flag.
	ForceSyncOrders(ctx context.Context) (*dto.FlushReport, error)

	Status(ctx context.Context) model.SyncStatus

	// Subscribe registers a status listener; the returned func removes it.
	Subscribe(fn func(model.SyncStatus)) func()
}
