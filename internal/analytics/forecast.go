package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ForecastPoint is one projected month with its prediction interval
// bounds. When the historical fit has zero residual variance the
// interval collapses to the point value.
type ForecastPoint struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Forecast is a linear-trend projection of a monthly series.
type Forecast struct {
	Points          []ForecastPoint `json:"points"`
	ConfidenceLevel float64         `json:"confidence_level"`
	RSquared        float64         `json:"r_squared"`
	Slope           float64         `json:"slope"`
	Intercept       float64         `json:"intercept"`
	// ModelNote states the model's limits. The fit is a linear trend
	// only; seasonal or non-linear series produce wide intervals and no
	// hidden smoothing is applied to narrow them.
	ModelNote string `json:"model_note"`
}

const forecastModelNote = "ordinary least squares linear trend; seasonal or non-linear series will show wide prediction intervals"

// MinNonZeroMonths is the least history the forecaster accepts.
// Extrapolating from fewer points is noise, not a forecast.
const MinNonZeroMonths = 3

// ForecastSeries fits an OLS linear trend over month index -> value and
// emits horizon point forecasts with prediction intervals at the given
// confidence level. The intervals use the residual standard error and
// the Student-t critical value, and account for residual variance, not
// just parameter uncertainty, so they widen with distance from the
// fitted range.
func ForecastSeries(series []MonthlyBucket, value func(MonthlyBucket) float64, horizon int, confidence float64) (*Forecast, error) {
	n := len(series)
	nonZero := 0
	y := make([]float64, n)
	for i, b := range series {
		y[i] = value(b)
		if y[i] != 0 {
			nonZero++
		}
	}
	if nonZero < MinNonZeroMonths {
		return nil, ErrInsufficientHistory
	}

	// OLS over x = 0..n-1.
	xMean := float64(n-1) / 2
	var yMean, sxx, sxy float64
	for i := range y {
		yMean += y[i]
	}
	yMean /= float64(n)
	for i := range y {
		dx := float64(i) - xMean
		sxx += dx * dx
		sxy += dx * (y[i] - yMean)
	}
	slope := sxy / sxx
	intercept := yMean - slope*xMean

	var sse, sst float64
	for i := range y {
		r := y[i] - (intercept + slope*float64(i))
		sse += r * r
		d := y[i] - yMean
		sst += d * d
	}

	rSquared := 1.0
	if sst > 0 {
		rSquared = 1 - sse/sst
	}

	// Residual standard error with n-2 degrees of freedom. nonZero >= 3
	// guarantees n >= 3, so df >= 1.
	df := float64(n - 2)
	s := math.Sqrt(sse / df)

	var tCrit float64
	if s > 0 {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		tCrit = dist.Quantile(0.5 + confidence/2)
	}

	lastMonth := series[n-1].Month
	points := make([]ForecastPoint, 0, horizon)
	for k := 1; k <= horizon; k++ {
		x := float64(n - 1 + k)
		v := intercept + slope*x
		half := 0.0
		if s > 0 {
			dx := x - xMean
			half = tCrit * s * math.Sqrt(1+1/float64(n)+dx*dx/sxx)
		}
		points = append(points, ForecastPoint{
			Month: lastMonth.AddDate(0, k, 0),
			Value: v,
			Lower: v - half,
			Upper: v + half,
		})
	}

	return &Forecast{
		Points:          points,
		ConfidenceLevel: confidence,
		RSquared:        rSquared,
		Slope:           slope,
		Intercept:       intercept,
		ModelNote:       forecastModelNote,
	}, nil
}

// RevenueValue extracts the revenue of a bucket for forecasting.
func RevenueValue(b MonthlyBucket) float64 {
	f, _ := b.Revenue.Float64()
	return f
}

// QuantityValue extracts the quantity of a bucket for forecasting.
func QuantityValue(b MonthlyBucket) float64 {
	return float64(b.Quantity)
}
