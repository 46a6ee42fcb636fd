// Package gateway defines the client-side contract against the
// authoritative order backend, plus the error taxonomy the sync engine
// classifies remote failures with.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
)

var (
	// ErrNetwork covers timeouts, refused connections and 5xx responses.
	// Always transient: the engine queues and retries, never surfaces it to
	// checkout.
	ErrNetwork = errors.New("network unavailable")

	// ErrAuth means the credential was rejected or has expired. Order sync
	// pauses until re-authentication; local order creation still proceeds.
	ErrAuth = errors.New("authentication failed")

	// ErrValidation means the server rejected the request shape. Never
	// retried.
	ErrValidation = errors.New("request rejected as invalid")

	// ErrNotFound means a referenced product or order does not exist
	// remotely.
	ErrNotFound = errors.New("not found")

	// ErrOffline is returned by operations that require connectivity and
	// fail fast instead of queueing.
	ErrOffline = errors.New("device is offline")
)

type CreateOrderItem struct {
	ProductID string `json:"productId"`
	Qty       int64  `json:"qty"`
}

type CreateOrderRequest struct {
	PaymentMethod   model.PaymentMethod `json:"paymentMethod"`
	Items           []CreateOrderItem   `json:"items"`
	ClientCreatedAt *time.Time          `json:"clientCreatedAt,omitempty"`
}

type OrderTotals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

type CreateOrderResponse struct {
	OrderID string      `json:"orderId"`
	Totals  OrderTotals `json:"totals"`
}

type SyncOrderEnvelope struct {
	TempID  string             `json:"tempId"`
	Payload CreateOrderRequest `json:"payload"`
}

type SyncOrdersRequest struct {
	Orders []SyncOrderEnvelope `json:"orders"`
}

type SyncOrderResult struct {
	TempID  string `json:"tempId"`
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status"` // "ok" or "error"
	Error   string `json:"error,omitempty"`
}

type SyncOrdersResponse struct {
	Results []SyncOrderResult `json:"results"`
}

// Gateway is the remote order service as seen from the device. The server
// recomputes totals authoritatively from its own price and tax data;
// client-submitted totals are display-only.
//
// CreateOrder carries no idempotency key: a retried create after a timeout
// of unknown outcome can duplicate the order remotely. Delivery is
// at-least-once; the retry queue's attempt ceiling bounds how many
// duplicates one order can produce.
type Gateway interface {
	FetchCatalog(ctx context.Context) ([]model.Product, error)
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	SyncOrders(ctx context.Context, req *SyncOrdersRequest) (*SyncOrdersResponse, error)
	Health(ctx context.Context) error
}
