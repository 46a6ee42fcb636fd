package model

import "time"

// Product is a row of the local catalog snapshot. The snapshot is replaced
// wholesale on every successful catalog sync; the UI only ever reads it.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Stock       int64     `db:"stock" json:"stock"`
	TaxRate     float64   `db:"tax_rate" json:"tax_rate"`
	Category    *string   `db:"category" json:"category"` // Nullable
	Barcode     *string   `db:"barcode" json:"barcode"`   // Nullable
	ImageURL    *string   `db:"image_url" json:"image_url"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}
