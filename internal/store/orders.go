package store

import (
	"context"

	"order-analytics/internal/models"
)

// GetOrderRows fetches the raw order rows of one organization. Rows
// come back loosely typed on purpose: dates as text, numerics as
// floats. Validation and recomputation of derived amounts belong to the
// engine's normalizer, not to SQL.
func (s *Store) GetOrderRows(ctx context.Context, org string) ([]models.RawOrderRow, error) {
	rows := []models.RawOrderRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT order_id, org, receiver_name, date, expected_delivery_date,
		       product, COALESCE(description, '') AS description, quantity,
		       price, basic_price, gst, advance_payment,
		       total_amount_with_gst, pending_amount, status, created_by
		FROM orders
		WHERE org = $1
		ORDER BY order_id`, org)
	return rows, err
}

// GetDeliveryRows fetches the raw delivery rows of one organization.
func (s *Store) GetDeliveryRows(ctx context.Context, org string) ([]models.RawDeliveryRow, error) {
	rows := []models.RawDeliveryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT order_id, org, delivered_quantity, delivery_date, payment
		FROM deliveries
		WHERE org = $1
		ORDER BY order_id, delivery_date`, org)
	return rows, err
}

// CountOrders returns the number of stored orders for an organization.
// Used by the readiness probe to verify connectivity cheaply.
func (s *Store) CountOrders(ctx context.Context, org string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders WHERE org = $1", org)
	return n, err
}
