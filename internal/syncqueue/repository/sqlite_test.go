package repository_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/storage"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/syncqueue/repository"
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

func TestEnqueueDequeueOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.Enqueue(ctx, model.OpCreateOrder, json.RawMessage(`{"local_order_id":1}`))
	require.NoError(t, err)
	second, err := repo.Enqueue(ctx, model.OpUpdateProduct, json.RawMessage(`{"product_id":"p1"}`))
	require.NoError(t, err)

	items, err := repo.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].ID)
	assert.Equal(t, second, items[1].ID)
	assert.Equal(t, model.OpCreateOrder, items[0].Kind)
	assert.JSONEq(t, `{"local_order_id":1}`, string(items[0].Payload))
	assert.Zero(t, items[0].Attempts)
	assert.Nil(t, items[0].LastAttempt)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRecordAttempt(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, model.OpCreateOrder, json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, repo.RecordAttempt(ctx, id))
	require.NoError(t, repo.RecordAttempt(ctx, id))

	items, err := repo.DequeueAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Attempts)
	assert.NotNil(t, items[0].LastAttempt)
}

func TestRemove(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, model.OpCreateOrder, json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, id))
	// Removing an already-removed item is harmless.
	require.NoError(t, repo.Remove(ctx, id))

	items, err := repo.DequeueAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
