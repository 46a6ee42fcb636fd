package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/product/repository"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *repository.SQLiteRepository {
	t.Helper()
	db, err := storage.Open(context.Background(), &storage.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewSQLiteRepository(db)
}

func str(s string) *string { return &s }

func sampleCatalog() []model.Product {
	now := time.Now().UTC()
	return []model.Product{
		{ID: "p1", Name: "Espresso", PriceCents: 350, Stock: 100, TaxRate: 8.25, Category: str("Beverages"), Barcode: str("111"), LastUpdated: now},
		{ID: "p2", Name: "Croissant", PriceCents: 225, Stock: 50, TaxRate: 8.25, Category: str("Pastries"), Barcode: str("222"), LastUpdated: now},
		{ID: "p3", Name: "Still Water", PriceCents: 150, Stock: 200, TaxRate: 0, Category: str("Beverages"), LastUpdated: now},
	}
}

func TestReplaceCatalogSnapshot(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceCatalog(ctx, sampleCatalog()))

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	// Wholesale replace: the old snapshot is gone, not merged.
	require.NoError(t, repo.ReplaceCatalog(ctx, []model.Product{
		{ID: "p9", Name: "Bagel", PriceCents: 175, Stock: 10, LastUpdated: time.Now().UTC()},
	}))

	products, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p9", products[0].ID)

	old, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestReplaceCatalogAtomicOnFailure(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceCatalog(ctx, sampleCatalog()))

	// A duplicate primary key aborts the rewrite; the previous snapshot
	// must survive untouched.
	bad := []model.Product{
		{ID: "dup", Name: "A", PriceCents: 100, LastUpdated: time.Now().UTC()},
		{ID: "dup", Name: "B", PriceCents: 200, LastUpdated: time.Now().UTC()},
	}
	require.Error(t, repo.ReplaceCatalog(ctx, bad))

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
}

func TestFindByBarcode(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceCatalog(ctx, sampleCatalog()))

	p, err := repo.FindByBarcode(ctx, "222")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p2", p.ID)

	missing, err := repo.FindByBarcode(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceCatalog(ctx, sampleCatalog()))

	byName, err := repo.Search(ctx, "water")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "p3", byName[0].ID)

	byCategory, err := repo.Search(ctx, "bever")
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	none, err := repo.Search(ctx, "pizza")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDecrementStockClampsAtZero(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceCatalog(ctx, sampleCatalog()))

	require.NoError(t, repo.DecrementStock(ctx, "p2", 30))
	p, err := repo.FindByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Stock)

	require.NoError(t, repo.DecrementStock(ctx, "p2", 500))
	p, err = repo.FindByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stock)
}
