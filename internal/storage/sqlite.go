// Package storage opens and migrates the on-device SQLite database shared
// by the product, order and sync-queue repositories.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite"; teach sqlx its bindvar style.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// ErrStorage marks a failure of the on-device store. Repositories wrap
// driver errors with it so callers can classify local persistence failures
// via errors.Is the same way they classify gateway errors.
var ErrStorage = errors.New("local storage error")

// Wrap tags err with ErrStorage, keeping the original chain intact.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    price_cents  INTEGER NOT NULL,
    stock        INTEGER NOT NULL DEFAULT 0,
    tax_rate     REAL NOT NULL DEFAULT 0,
    category     TEXT,
    barcode      TEXT,
    image_url    TEXT,
    last_updated TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    remote_id      TEXT,
    items_json     BLOB NOT NULL,
    subtotal_cents INTEGER NOT NULL,
    tax_cents      INTEGER NOT NULL DEFAULT 0,
    total_cents    INTEGER NOT NULL,
    payment_method TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'PENDING',
    created_at     TIMESTAMP NOT NULL,
    synced         INTEGER NOT NULL DEFAULT 0,
    cashier_id     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_queue (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    kind         TEXT NOT NULL,
    payload_json BLOB NOT NULL,
    created_at   TIMESTAMP NOT NULL,
    attempts     INTEGER NOT NULL DEFAULT 0,
    last_attempt TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);
CREATE INDEX IF NOT EXISTS idx_orders_synced ON orders(synced);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_sync_queue_kind ON sync_queue(kind);
`

type Config struct {
	Path string
}

// Open connects to the local database and applies the schema. SQLite
// serializes writers anyway, so the pool is capped at one connection; that
// also keeps ":memory:" databases coherent in tests.
func Open(ctx context.Context, cfg *Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.Path)

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
