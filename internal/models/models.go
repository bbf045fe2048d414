package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawOrderRow is an order row as read from storage, before validation.
// Dates arrive as text and numeric fields as floats; the normalizer owns
// all coercion and never trusts the stored derived amounts.
type RawOrderRow struct {
	OrderID              int64   `db:"order_id" json:"order_id"`
	Org                  string  `db:"org" json:"org"`
	ReceiverName         string  `db:"receiver_name" json:"receiver_name"`
	Date                 string  `db:"date" json:"date"`
	ExpectedDeliveryDate string  `db:"expected_delivery_date" json:"expected_delivery_date"`
	Product              string  `db:"product" json:"product"`
	Description          string  `db:"description" json:"description"`
	Quantity             int64   `db:"quantity" json:"quantity"`
	Price                float64 `db:"price" json:"price"`
	BasicPrice           float64 `db:"basic_price" json:"basic_price"`
	TaxRate              float64 `db:"gst" json:"gst"`
	AdvancePayment       float64 `db:"advance_payment" json:"advance_payment"`
	TotalWithTax         float64 `db:"total_amount_with_gst" json:"total_amount_with_gst"`
	PendingAmount        float64 `db:"pending_amount" json:"pending_amount"`
	Status               string  `db:"status" json:"status"`
	CreatedBy            string  `db:"created_by" json:"created_by"`
}

// RawDeliveryRow is a delivery row as read from storage. Deliveries
// reference an order by (order_id, org); one order may have several.
type RawDeliveryRow struct {
	OrderID           int64   `db:"order_id" json:"order_id"`
	Org               string  `db:"org" json:"org"`
	DeliveredQuantity int64   `db:"delivered_quantity" json:"delivered_quantity"`
	DeliveryDate      string  `db:"delivery_date" json:"delivery_date"`
	Payment           float64 `db:"payment" json:"payment"`
}

// OrderRecord is the canonical, fully-typed form of an order row.
// Derived monetary fields are recomputed during normalization and are
// immutable afterwards.
type OrderRecord struct {
	OrderID              int64           `json:"order_id"`
	Org                  string          `json:"org"`
	ReceiverName         string          `json:"receiver_name"`
	Date                 time.Time       `json:"date"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	Product              string          `json:"product"`
	Quantity             int64           `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	BasicPrice           decimal.Decimal `json:"basic_price"`
	TaxRate              decimal.Decimal `json:"tax_rate"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	AdvancePayment       decimal.Decimal `json:"advance_payment"`
	TotalWithTax         decimal.Decimal `json:"total_with_tax"`
	PendingAmount        decimal.Decimal `json:"pending_amount"`
	Status               string          `json:"status"`
	CreatedBy            string          `json:"created_by"`
}

// DeliveryRecord is the canonical form of a delivery row.
type DeliveryRecord struct {
	OrderID           int64           `json:"order_id"`
	Org               string          `json:"org"`
	DeliveredQuantity int64           `json:"delivered_quantity"`
	DeliveryDate      time.Time       `json:"delivery_date"`
	Payment           decimal.Decimal `json:"payment"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// KnownStatus reports whether s is one of the recognized order statuses.
func KnownStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
