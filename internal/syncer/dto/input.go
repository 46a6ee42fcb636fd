package dto

import "github.com/fahimhasan4438765/techzu-pos-system/internal/model"

type CartLine struct {
	ProductID string
	Quantity  int64
}

type CreateOrderInput struct {
	Items         []CartLine
	PaymentMethod model.PaymentMethod
	CashierID     string
}

// FlushReport summarizes an explicit user-requested order flush.
type FlushReport struct {
	Synced int
	Failed int
}
