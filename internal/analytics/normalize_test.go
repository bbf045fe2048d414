package analytics

import (
	"testing"

	"order-analytics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawOrder(id int64, org, receiver, date, product string, qty int64, basic, gst, advance float64) models.RawOrderRow {
	return models.RawOrderRow{
		OrderID:        id,
		Org:            org,
		ReceiverName:   receiver,
		Date:           date,
		Product:        product,
		Quantity:       qty,
		Price:          basic / float64(max64(qty, 1)),
		BasicPrice:     basic,
		TaxRate:        gst,
		AdvancePayment: advance,
		Status:         "pending",
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func TestNormalizeRecomputesDerivedAmounts(t *testing.T) {
	rows := []models.RawOrderRow{
		rawOrder(1, "acme-corp", "Beta", "2024-03-05", "Widget", 10, 1000, 18, 500),
	}
	// Stored derived fields drift on purpose; they must be ignored.
	rows[0].TotalWithTax = 9999
	rows[0].PendingAmount = -1

	res := Normalize("acme-corp", rows, nil)
	require.Len(t, res.Orders, 1)
	assert.Empty(t, res.Diagnostics)

	o := res.Orders[0]
	assert.True(t, o.TaxAmount.Equal(decimal.NewFromInt(180)), "tax = basic * rate / 100, got %s", o.TaxAmount)
	assert.True(t, o.TotalWithTax.Equal(decimal.NewFromInt(1180)), "total = basic + tax, got %s", o.TotalWithTax)
	assert.True(t, o.PendingAmount.Equal(decimal.NewFromInt(680)), "pending = total - advance, got %s", o.PendingAmount)
}

func TestNormalizeSkipsBadRowsAndContinues(t *testing.T) {
	rows := []models.RawOrderRow{
		rawOrder(1, "acme-corp", "Beta", "not-a-date", "Widget", 1, 100, 0, 0),
		rawOrder(2, "acme-corp", "Beta", "2024-03-05", "Widget", -3, 100, 0, 0),
		rawOrder(3, "acme-corp", "", "2024-03-05", "Widget", 1, 100, 0, 0),
		rawOrder(4, "acme-corp", "Beta", "2024-03-06", "Widget", 1, 100, 0, 0),
	}

	res := Normalize("acme-corp", rows, nil)
	require.Len(t, res.Orders, 1)
	assert.EqualValues(t, 4, res.Orders[0].OrderID)
	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, DiagMalformedRecord, res.Diagnostics[0].Kind)
	assert.Equal(t, DiagInvalidValue, res.Diagnostics[1].Kind)
	assert.Equal(t, DiagMalformedRecord, res.Diagnostics[2].Kind)
}

func TestNormalizeEnforcesOrgIsolationSilently(t *testing.T) {
	rows := []models.RawOrderRow{
		rawOrder(1, "acme-corp", "Beta", "2024-03-05", "Widget", 1, 100, 0, 0),
		rawOrder(2, "other-org", "Gamma", "2024-03-05", "Widget", 1, 100, 0, 0),
	}

	res := Normalize("acme-corp", rows, nil)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "acme-corp", res.Orders[0].Org)
	// Foreign-org rows are dropped without a diagnostic.
	assert.Empty(t, res.Diagnostics)
}

func TestNormalizeRejectsDuplicateOrderIDs(t *testing.T) {
	rows := []models.RawOrderRow{
		rawOrder(7, "acme-corp", "Beta", "2024-03-05", "Widget", 1, 100, 0, 0),
		rawOrder(7, "acme-corp", "Beta", "2024-03-06", "Widget", 1, 100, 0, 0),
	}

	res := Normalize("acme-corp", rows, nil)
	require.Len(t, res.Orders, 1)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagMalformedRecord, res.Diagnostics[0].Kind)
	assert.Contains(t, res.Diagnostics[0].Detail, "duplicate")
}

func TestNormalizeRejectsUnknownStatus(t *testing.T) {
	row := rawOrder(1, "acme-corp", "Beta", "2024-03-05", "Widget", 1, 100, 0, 0)
	row.Status = "shipped"

	res := Normalize("acme-corp", []models.RawOrderRow{row}, nil)
	assert.Empty(t, res.Orders)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagInvalidValue, res.Diagnostics[0].Kind)
}

func TestNormalizeOverDeliveryIsDiagnosticNotFatal(t *testing.T) {
	orders := []models.RawOrderRow{
		rawOrder(1, "acme-corp", "Beta", "2024-03-05", "Widget", 10, 100, 0, 0),
	}
	deliveries := []models.RawDeliveryRow{
		{OrderID: 1, Org: "acme-corp", DeliveredQuantity: 6, DeliveryDate: "2024-03-10"},
		{OrderID: 1, Org: "acme-corp", DeliveredQuantity: 7, DeliveryDate: "2024-03-20"},
	}

	res := Normalize("acme-corp", orders, deliveries)
	// The order stays in the canonical table; nothing is clamped.
	require.Len(t, res.Orders, 1)
	require.Len(t, res.Deliveries, 2)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagOverDeliveryViolation, res.Diagnostics[0].Kind)
	assert.Contains(t, res.Diagnostics[0].Detail, "delivered 13 exceeds ordered 10")
}

func TestNormalizeDeliveryUnknownOrder(t *testing.T) {
	deliveries := []models.RawDeliveryRow{
		{OrderID: 42, Org: "acme-corp", DeliveredQuantity: 1, DeliveryDate: "2024-03-10"},
	}

	res := Normalize("acme-corp", nil, deliveries)
	assert.Empty(t, res.Deliveries)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagMalformedRecord, res.Diagnostics[0].Kind)
}

func TestNormalizeAcceptsMultipleDateLayouts(t *testing.T) {
	rows := []models.RawOrderRow{
		rawOrder(1, "acme-corp", "Beta", "2024-03-05", "Widget", 1, 100, 0, 0),
		rawOrder(2, "acme-corp", "Beta", "2024-03-05T10:30:00Z", "Widget", 1, 100, 0, 0),
		rawOrder(3, "acme-corp", "Beta", "2024-03-05 10:30:00", "Widget", 1, 100, 0, 0),
	}

	res := Normalize("acme-corp", rows, nil)
	assert.Len(t, res.Orders, 3)
	assert.Empty(t, res.Diagnostics)
}
