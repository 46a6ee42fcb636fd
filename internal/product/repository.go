package product

import (
	"context"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
)

// Repository is the local catalog snapshot. It is read-only to callers
// outside the sync engine; only a successful remote fetch replaces it and
// only a confirmed order sync decrements stock.
type Repository interface {
	// ReplaceCatalog clears and rewrites the whole snapshot in one
	// transaction. A crash mid-write must never leave a partial catalog.
	ReplaceCatalog(ctx context.Context, products []model.Product) error

	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)

	// DecrementStock subtracts qty from local stock, clamping at zero.
	DecrementStock(ctx context.Context, id string, qty int64) error
}
