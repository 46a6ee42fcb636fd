package repository

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) ReplaceCatalog(ctx context.Context, products []model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return storage.Wrap("replace catalog", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return storage.Wrap("replace catalog", err)
	}

	query := `
        INSERT INTO products (
            id, name, price_cents, stock, tax_rate, category, barcode, image_url, last_updated
        )
        VALUES (
            :id, :name, :price_cents, :stock, :tax_rate, :category, :barcode, :image_url, :last_updated
        )
    `
	for i := range products {
		if _, err := tx.NamedExecContext(ctx, query, &products[i]); err != nil {
			return storage.Wrap(fmt.Sprintf("insert product %s", products[i].ID), err)
		}
	}

	return storage.Wrap("replace catalog", tx.Commit())
}

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.DB.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY name`)
	if err != nil {
		return nil, storage.Wrap("list products", err)
	}
	return products, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storage.Wrap("load product", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE barcode = ? LIMIT 1`, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storage.Wrap("load product by barcode", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	var products []model.Product
	pattern := "%" + query + "%"
	// LIKE is case-insensitive in SQLite.
	err := r.DB.SelectContext(ctx, &products, `
        SELECT * FROM products
        WHERE name LIKE ? OR category LIKE ?
        ORDER BY name
    `, pattern, pattern)
	if err != nil {
		return nil, storage.Wrap("search products", err)
	}
	return products, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM products`)
	return count, storage.Wrap("count products", err)
}

func (r *SQLiteRepository) DecrementStock(ctx context.Context, id string, qty int64) error {
	if qty <= 0 {
		return nil
	}
	// max(stock - qty, 0): local stock is advisory and must never go
	// negative.
	_, err := r.DB.ExecContext(ctx, `
        UPDATE products SET stock = max(stock - ?, 0) WHERE id = ?
    `, qty, id)
	return storage.Wrap("decrement stock", err)
}
