package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/storage"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	DB *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{DB: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, kind model.SyncOpKind, payload json.RawMessage) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO sync_queue (kind, payload_json, created_at, attempts)
        VALUES (?, ?, ?, 0)
    `, kind, []byte(payload), time.Now().UTC())
	if err != nil {
		return 0, storage.Wrap("enqueue sync item", err)
	}
	id, err := res.LastInsertId()
	return id, storage.Wrap("enqueue sync item", err)
}

func (r *SQLiteRepository) DequeueAll(ctx context.Context) ([]model.SyncQueueItem, error) {
	var items []model.SyncQueueItem
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM sync_queue ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, storage.Wrap("read sync queue", err)
	}
	return items, nil
}

func (r *SQLiteRepository) RecordAttempt(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE sync_queue SET attempts = attempts + 1, last_attempt = ? WHERE id = ?
    `, time.Now().UTC(), id)
	return storage.Wrap("record sync attempt", err)
}

func (r *SQLiteRepository) Remove(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	return storage.Wrap("remove sync item", err)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM sync_queue`)
	return count, storage.Wrap("count sync queue", err)
}
