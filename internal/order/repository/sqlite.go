package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

func (r *SQLiteRepository) Insert(ctx context.Context, o *model.Order) (int64, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return 0, fmt.Errorf("encode order items: %w", err)
	}
	o.ItemsJSON = items

	res, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO orders (
            remote_id, items_json, subtotal_cents, tax_cents, total_cents,
            payment_method, status, created_at, synced, cashier_id
        )
        VALUES (
            :remote_id, :items_json, :subtotal_cents, :tax_cents, :total_cents,
            :payment_method, :status, :created_at, :synced, :cashier_id
        )
    `, o)
	if err != nil {
		return 0, storage.Wrap("insert order", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storage.Wrap("insert order", err)
	}
	o.ID = id
	return id, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, localID int64) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = ? LIMIT 1`, localID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storage.Wrap("load order", err)
	}
	if err := json.Unmarshal(o.ItemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %d: %w", o.ID, err)
	}
	return &o, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM orders ORDER BY created_at DESC, id DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, storage.Wrap("list orders", err)
	}
	return decodeItems(orders)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM orders WHERE synced = 0 ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, storage.Wrap("list unsynced orders", err)
	}
	return decodeItems(orders)
}

func (r *SQLiteRepository) CountUnsynced(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM orders WHERE synced = 0`)
	return count, storage.Wrap("count unsynced orders", err)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID int64, remoteID string) error {
	// Guarded so a repeat call cannot overwrite an already-attached remote
	// id; marking twice with the same id is simply a no-op.
	_, err := r.DB.ExecContext(ctx, `
        UPDATE orders SET synced = 1, remote_id = ?
        WHERE id = ? AND (remote_id IS NULL OR remote_id = ?)
    `, remoteID, localID, remoteID)
	return storage.Wrap("mark order synced", err)
}

func decodeItems(orders []model.Order) ([]model.Order, error) {
	for i := range orders {
		if err := json.Unmarshal(orders[i].ItemsJSON, &orders[i].Items); err != nil {
			return nil, fmt.Errorf("decode items of order %d: %w", orders[i].ID, err)
		}
	}
	return orders, nil
}
