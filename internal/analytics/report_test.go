package analytics

import (
	"encoding/json"
	"testing"

	"order-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportInput() Input {
	return Input{
		Org:    "acme-corp",
		Window: window("2024-01-01", "2024-06-30"),
		Orders: []models.RawOrderRow{
			rawOrder(1, "acme-corp", "Beta", "2024-01-10", "Widget", 2, 1000, 18, 100),
			rawOrder(2, "acme-corp", "Beta", "2024-02-11", "Widget", 1, 1100, 18, 0),
			rawOrder(3, "acme-corp", "Gamma", "2024-03-12", "Bolt", 5, 1050, 18, 500),
			rawOrder(4, "acme-corp", "Gamma", "2024-04-13", "Bolt", 3, 1200, 18, 0),
			rawOrder(5, "acme-corp", "Delta", "2024-05-14", "Widget", 4, 900, 18, 0),
			rawOrder(6, "other-org", "Zeta", "2024-05-14", "Widget", 4, 900, 18, 0),
			rawOrder(7, "acme-corp", "Bad", "nope", "Widget", 1, 100, 0, 0),
		},
		Deliveries: []models.RawDeliveryRow{
			{OrderID: 1, Org: "acme-corp", DeliveredQuantity: 2, DeliveryDate: "2024-01-20"},
		},
	}
}

func TestRunProducesFullReport(t *testing.T) {
	report, err := Run(reportInput())
	require.NoError(t, err)

	assert.Equal(t, 5, report.OrderCount)
	assert.Equal(t, 1, report.SkippedRows)
	assert.Len(t, report.Aggregates.Monthly, 6)
	require.NotNil(t, report.Segmentation)
	assert.Len(t, report.Segmentation.Customers, 3)
	require.NotNil(t, report.RevenueForecast)
	assert.Len(t, report.RevenueForecast.Points, DefaultHorizonMonths)
	require.NotNil(t, report.QuantityForecast)

	// Defaults applied to the effective config echoed back.
	assert.Equal(t, DefaultTopN, report.Config.TopN)
	assert.InDelta(t, DefaultConfidenceLevel, report.Config.ConfidenceLevel, 1e-9)
}

func TestRunIsDeterministic(t *testing.T) {
	first, err := Run(reportInput())
	require.NoError(t, err)
	second, err := Run(reportInput())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "identical input must yield byte-identical output")
}

func TestRunFatalErrors(t *testing.T) {
	in := reportInput()
	in.Org = ""
	_, err := Run(in)
	assert.ErrorIs(t, err, ErrEmptyOrg)

	in = reportInput()
	in.Window = window("2024-06-30", "2024-01-01")
	_, err = Run(in)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestRunDegradesToPartialResults(t *testing.T) {
	// One customer, one month: segmentation and forecasting both fail,
	// aggregation still succeeds and the report carries the flags.
	in := Input{
		Org:    "acme-corp",
		Window: window("2024-01-01", "2024-01-31"),
		Orders: []models.RawOrderRow{
			rawOrder(1, "acme-corp", "Solo", "2024-01-10", "Widget", 1, 100, 0, 0),
		},
	}

	report, err := Run(in)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OrderCount)
	assert.Nil(t, report.Segmentation)
	assert.Nil(t, report.RevenueForecast)
	assert.Nil(t, report.QuantityForecast)

	kinds := make(map[string]int)
	for _, d := range report.Diagnostics {
		kinds[d.Kind]++
	}
	assert.Equal(t, 1, kinds[DiagInsufficientData])
	assert.Equal(t, 2, kinds[DiagInsufficientHistory])
}

func TestRunWindowBoundsAllComputation(t *testing.T) {
	in := reportInput()
	in.Window = window("2024-02-01", "2024-03-31")

	report, err := Run(in)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrderCount)
	assert.Len(t, report.Aggregates.Monthly, 2)
}
