package model

import "time"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentQR   PaymentMethod = "QR"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusVoid      OrderStatus = "VOID"
)

// OrderItem is a line of a local order. Name and unit price are snapshotted
// at checkout so later catalog changes cannot drift stored totals.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	LineTaxCents   int64  `json:"line_tax_cents"`
}

// Order is a locally created order. ID is device-scoped; RemoteID is set
// exactly once when the remote side acknowledges the order.
type Order struct {
	ID            int64         `db:"id" json:"id"`
	RemoteID      *string       `db:"remote_id" json:"remote_id"` // Nullable until synced
	ItemsJSON     []byte        `db:"items_json" json:"-"`
	Items         []OrderItem   `db:"-" json:"items"` // Decoded from ItemsJSON
	SubtotalCents int64         `db:"subtotal_cents" json:"subtotal_cents"`
	TaxCents      int64         `db:"tax_cents" json:"tax_cents"`
	TotalCents    int64         `db:"total_cents" json:"total_cents"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	Status        OrderStatus   `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	Synced        bool          `db:"synced" json:"synced"`
	CashierID     string        `db:"cashier_id" json:"cashier_id"`
}
