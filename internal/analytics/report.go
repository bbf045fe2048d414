package analytics

import (
	"order-analytics/internal/models"
)

// Input is the engine's boundary contract: raw rows as fetched from
// storage plus the organization scope, window and tuning config. The
// engine holds no state across calls and performs no I/O.
type Input struct {
	Org        string
	Window     Window
	Orders     []models.RawOrderRow
	Deliveries []models.RawDeliveryRow
	Config     Config
}

// Report is the merged output of all engine modules. Module-level
// shortfalls (too few customers, too little history) surface as nil
// sections plus diagnostics; they never fail the whole report.
type Report struct {
	Org              string        `json:"org"`
	Window           Window        `json:"window"`
	Config           Config        `json:"config"`
	Aggregates       Aggregates    `json:"aggregates"`
	Segmentation     *Segmentation `json:"segmentation,omitempty"`
	RevenueForecast  *Forecast     `json:"revenue_forecast,omitempty"`
	QuantityForecast *Forecast     `json:"quantity_forecast,omitempty"`
	Diagnostics      []Diagnostic  `json:"diagnostics"`
	OrderCount       int           `json:"order_count"`
	SkippedRows      int           `json:"skipped_rows"`
}

// Run executes the full pipeline: normalize, aggregate, segment,
// forecast, assemble. Only an empty org or an inverted window is fatal;
// everything else degrades into diagnostics alongside partial results.
// Identical input and config always produce identical output.
func Run(in Input) (*Report, error) {
	if in.Org == "" {
		return nil, ErrEmptyOrg
	}
	if in.Window.End.Before(in.Window.Start) {
		return nil, ErrInvalidWindow
	}
	cfg := in.Config.withDefaults()

	norm := Normalize(in.Org, in.Orders, in.Deliveries)

	orders := make([]models.OrderRecord, 0, len(norm.Orders))
	for _, o := range norm.Orders {
		if in.Window.Contains(o.Date) {
			orders = append(orders, o)
		}
	}

	report := &Report{
		Org:         in.Org,
		Window:      in.Window,
		Config:      cfg,
		Aggregates:  Aggregate(orders, in.Window, cfg.TopN),
		Diagnostics: norm.Diagnostics,
		OrderCount:  len(orders),
	}
	for _, d := range norm.Diagnostics {
		if d.Kind == DiagMalformedRecord || d.Kind == DiagInvalidValue {
			report.SkippedRows++
		}
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []Diagnostic{}
	}

	seg, err := Segment(orders, in.Window, cfg)
	if err != nil {
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Kind:   DiagInsufficientData,
			Detail: err.Error(),
		})
	} else {
		report.Segmentation = &seg
	}

	report.RevenueForecast = runForecast(report, RevenueValue, "revenue", cfg)
	report.QuantityForecast = runForecast(report, QuantityValue, "quantity", cfg)

	return report, nil
}

func runForecast(report *Report, value func(MonthlyBucket) float64, name string, cfg Config) *Forecast {
	f, err := ForecastSeries(report.Aggregates.Monthly, value, cfg.ForecastHorizonMonths, cfg.ConfidenceLevel)
	if err != nil {
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Kind:   DiagInsufficientHistory,
			Detail: name + " series: " + err.Error(),
		})
		return nil
	}
	return f
}
