package model

import (
	"encoding/json"
	"time"
)

type SyncOpKind string

const (
	OpCreateOrder       SyncOpKind = "CREATE_ORDER"
	OpUpdateProduct     SyncOpKind = "UPDATE_PRODUCT"
	OpUpdateOrderStatus SyncOpKind = "UPDATE_ORDER_STATUS"
)

// SyncQueueItem is the generic retry envelope for operations that failed
// while online and need remote acknowledgement. Payload is opaque at the
// storage layer; each kind defines its own strict schema, validated on
// dequeue.
type SyncQueueItem struct {
	ID          int64           `db:"id" json:"id"`
	Kind        SyncOpKind      `db:"kind" json:"kind"`
	Payload     json.RawMessage `db:"payload_json" json:"payload"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Attempts    int             `db:"attempts" json:"attempts"`
	LastAttempt *time.Time      `db:"last_attempt" json:"last_attempt"`
}

// CreateOrderPayload is the payload schema for OpCreateOrder items.
type CreateOrderPayload struct {
	LocalOrderID int64 `json:"local_order_id"`
	Order        Order `json:"order"`
}

// UpdateProductPayload is the payload schema for OpUpdateProduct items.
type UpdateProductPayload struct {
	ProductID string `json:"product_id"`
	Stock     int64  `json:"stock"`
}

// UpdateOrderStatusPayload is the payload schema for OpUpdateOrderStatus
// items.
type UpdateOrderStatusPayload struct {
	RemoteOrderID string      `json:"remote_order_id"`
	Status        OrderStatus `json:"status"`
}

// SyncStatus is the snapshot pushed to status subscribers.
type SyncStatus struct {
	Online       bool       `json:"online"`
	Syncing      bool       `json:"syncing"`
	LastSync     *time.Time `json:"last_sync"`
	PendingCount int64      `json:"pending_count"`
}
