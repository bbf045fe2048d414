package analytics

import (
	"fmt"
	"strings"
	"time"

	"order-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// Accepted date layouts, tried in order. Storage writes dates as plain
// ISO days but older rows carry timestamps.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var hundred = decimal.NewFromInt(100)

// NormalizeResult holds the canonical tables plus the skipped-row
// diagnostics. Normalization never aborts the batch for one bad row.
type NormalizeResult struct {
	Orders      []models.OrderRecord
	Deliveries  []models.DeliveryRecord
	Diagnostics []Diagnostic
}

// Normalize validates and coerces raw rows into canonical records,
// scoped to a single organization. Rows belonging to another org are
// dropped silently: isolation is enforced here, not downstream.
func Normalize(org string, orders []models.RawOrderRow, deliveries []models.RawDeliveryRow) NormalizeResult {
	res := NormalizeResult{}
	seen := make(map[int64]bool, len(orders))
	ordered := make(map[int64]int64, len(orders))

	for i, row := range orders {
		if row.Org != org {
			continue
		}
		ref := fmt.Sprintf("order[%d] id=%d", i, row.OrderID)

		rec, diag := normalizeOrder(row)
		if diag != nil {
			diag.RowRef = ref
			res.Diagnostics = append(res.Diagnostics, *diag)
			continue
		}
		if seen[row.OrderID] {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   DiagMalformedRecord,
				RowRef: ref,
				Detail: "duplicate order id within organization",
			})
			continue
		}
		seen[row.OrderID] = true
		ordered[rec.OrderID] = rec.Quantity
		res.Orders = append(res.Orders, *rec)
	}

	delivered := make(map[int64]int64)
	reported := make(map[int64]bool)
	for i, row := range deliveries {
		if row.Org != org {
			continue
		}
		ref := fmt.Sprintf("delivery[%d] order=%d", i, row.OrderID)

		if _, ok := ordered[row.OrderID]; !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   DiagMalformedRecord,
				RowRef: ref,
				Detail: "delivery references unknown order",
			})
			continue
		}
		if row.DeliveredQuantity < 0 || row.Payment < 0 {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   DiagInvalidValue,
				RowRef: ref,
				Detail: "negative delivered quantity or payment",
			})
			continue
		}
		dt, err := parseDate(row.DeliveryDate)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   DiagMalformedRecord,
				RowRef: ref,
				Detail: fmt.Sprintf("unparseable delivery date %q", row.DeliveryDate),
			})
			continue
		}

		delivered[row.OrderID] += row.DeliveredQuantity
		// Over-delivery is reported once per order; the order stays in
		// all aggregates, nothing is clamped.
		if delivered[row.OrderID] > ordered[row.OrderID] && !reported[row.OrderID] {
			reported[row.OrderID] = true
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   DiagOverDeliveryViolation,
				RowRef: ref,
				Detail: fmt.Sprintf("delivered %d exceeds ordered %d", delivered[row.OrderID], ordered[row.OrderID]),
			})
		}

		res.Deliveries = append(res.Deliveries, models.DeliveryRecord{
			OrderID:           row.OrderID,
			Org:               row.Org,
			DeliveredQuantity: row.DeliveredQuantity,
			DeliveryDate:      dt,
			Payment:           decimal.NewFromFloat(row.Payment),
		})
	}

	return res
}

// normalizeOrder coerces one raw row. The returned diagnostic has no
// RowRef; the caller fills it in.
func normalizeOrder(row models.RawOrderRow) (*models.OrderRecord, *Diagnostic) {
	if strings.TrimSpace(row.ReceiverName) == "" || strings.TrimSpace(row.Product) == "" {
		return nil, &Diagnostic{Kind: DiagMalformedRecord, Detail: "missing receiver or product"}
	}

	date, err := parseDate(row.Date)
	if err != nil {
		return nil, &Diagnostic{Kind: DiagMalformedRecord, Detail: fmt.Sprintf("unparseable order date %q", row.Date)}
	}

	var expected time.Time
	if strings.TrimSpace(row.ExpectedDeliveryDate) != "" {
		expected, err = parseDate(row.ExpectedDeliveryDate)
		if err != nil {
			return nil, &Diagnostic{Kind: DiagMalformedRecord, Detail: fmt.Sprintf("unparseable expected delivery date %q", row.ExpectedDeliveryDate)}
		}
	}

	if row.Quantity < 0 {
		return nil, &Diagnostic{Kind: DiagInvalidValue, Detail: fmt.Sprintf("negative quantity %d", row.Quantity)}
	}
	if row.Price < 0 || row.BasicPrice < 0 || row.AdvancePayment < 0 || row.TaxRate < 0 {
		return nil, &Diagnostic{Kind: DiagInvalidValue, Detail: "negative price, tax rate or advance payment"}
	}

	status := strings.ToLower(strings.TrimSpace(row.Status))
	if !models.KnownStatus(status) {
		return nil, &Diagnostic{Kind: DiagInvalidValue, Detail: fmt.Sprintf("unknown status %q", row.Status)}
	}

	// Derived amounts are recomputed from scratch; stored values drift.
	basic := decimal.NewFromFloat(row.BasicPrice)
	rate := decimal.NewFromFloat(row.TaxRate)
	advance := decimal.NewFromFloat(row.AdvancePayment)
	tax := basic.Mul(rate).Div(hundred)
	total := basic.Add(tax)

	return &models.OrderRecord{
		OrderID:              row.OrderID,
		Org:                  row.Org,
		ReceiverName:         strings.TrimSpace(row.ReceiverName),
		Date:                 date,
		ExpectedDeliveryDate: expected,
		Product:              strings.TrimSpace(row.Product),
		Quantity:             row.Quantity,
		UnitPrice:            decimal.NewFromFloat(row.Price),
		BasicPrice:           basic,
		TaxRate:              rate,
		TaxAmount:            tax,
		AdvancePayment:       advance,
		TotalWithTax:         total,
		PendingAmount:        total.Sub(advance),
		Status:               status,
		CreatedBy:            row.CreatedBy,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}
