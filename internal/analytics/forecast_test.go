package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlySeries(start string, values ...float64) []MonthlyBucket {
	s, _ := time.Parse("2006-01-02", start)
	m := monthOf(s.UTC())
	buckets := make([]MonthlyBucket, len(values))
	for i, v := range values {
		buckets[i] = MonthlyBucket{
			Month:   m.AddDate(0, i, 0),
			Revenue: decimal.NewFromFloat(v),
		}
	}
	return buckets
}

func TestForecastFourMonthScenario(t *testing.T) {
	series := monthlySeries("2024-01-01", 1000, 1100, 1050, 1200)

	f, err := ForecastSeries(series, RevenueValue, 1, 0.95)
	require.NoError(t, err)
	require.Len(t, f.Points, 1)

	// OLS over x=0..3: slope 55, intercept 1005, next point 1225.
	assert.InDelta(t, 55.0, f.Slope, 1e-9)
	assert.InDelta(t, 1005.0, f.Intercept, 1e-9)

	p := f.Points[0]
	assert.InDelta(t, 1225.0, p.Value, 1e-9)
	assert.Equal(t, time.May, p.Month.Month())

	// Prediction interval from the residual standard error
	// (s = sqrt(6750/2)) and t(2 df, 97.5%): half width ~395.2.
	assert.InDelta(t, 395.2, p.Value-p.Lower, 0.5)
	assert.InDelta(t, 395.2, p.Upper-p.Value, 0.5)

	assert.InDelta(t, 1-6750.0/21875.0, f.RSquared, 1e-9)
}

func TestForecastRequiresThreeNonZeroMonths(t *testing.T) {
	series := monthlySeries("2024-01-01", 1000, 0, 1100, 0)

	_, err := ForecastSeries(series, RevenueValue, 3, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestForecastIntervalWidensWithHorizon(t *testing.T) {
	series := monthlySeries("2024-01-01", 900, 1040, 980, 1130, 1075, 1210)

	f, err := ForecastSeries(series, RevenueValue, 6, 0.95)
	require.NoError(t, err)
	require.Len(t, f.Points, 6)

	prev := 0.0
	for i, p := range f.Points {
		width := p.Upper - p.Lower
		assert.GreaterOrEqual(t, width, prev, "interval width must not shrink at horizon %d", i+1)
		prev = width
	}
}

func TestForecastPerfectFitCollapsesInterval(t *testing.T) {
	// Exactly linear history: zero residual variance must not divide by
	// zero; the interval collapses to the point.
	series := monthlySeries("2024-01-01", 100, 200, 300, 400)

	f, err := ForecastSeries(series, RevenueValue, 2, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f.RSquared, 1e-9)

	for _, p := range f.Points {
		assert.InDelta(t, p.Value, p.Lower, 1e-9)
		assert.InDelta(t, p.Value, p.Upper, 1e-9)
	}
	assert.InDelta(t, 500.0, f.Points[0].Value, 1e-9)
	assert.InDelta(t, 600.0, f.Points[1].Value, 1e-9)
}

func TestForecastStatesLinearTrendLimitation(t *testing.T) {
	series := monthlySeries("2024-01-01", 1000, 1100, 1050, 1200)

	f, err := ForecastSeries(series, RevenueValue, 1, 0.95)
	require.NoError(t, err)
	assert.Contains(t, f.ModelNote, "linear trend")
}

func TestForecastQuantitySeries(t *testing.T) {
	series := monthlySeries("2024-01-01", 0, 0, 0, 0)
	for i := range series {
		series[i].Quantity = int64(10 * (i + 1))
	}

	f, err := ForecastSeries(series, QuantityValue, 1, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, f.Points[0].Value, 1e-9)
}
