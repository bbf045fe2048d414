package analytics

import "time"

// Window bounds every computation: orders outside [Start, End] are
// excluded before any aggregate is built.
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// SegmentRange maps a combined RFM score range (sum of the three 1-5
// digit scores, so 3..15) to a segment name.
type SegmentRange struct {
	Min  int    `json:"min"`
	Max  int    `json:"max"`
	Name string `json:"name"`
}

// Config tunes a single engine run. Zero values are replaced by the
// defaults below; the segment table and the CLV retention horizon are
// deliberately caller-supplied so organizations can tune them.
type Config struct {
	TopN                   int            `json:"top_n"`
	ForecastHorizonMonths  int            `json:"forecast_horizon_months"`
	ConfidenceLevel        float64        `json:"confidence_level"`
	RetentionHorizonMonths int            `json:"retention_horizon_months"`
	SegmentTable           []SegmentRange `json:"rfm_segment_table"`
}

// Defaults
const (
	DefaultTopN            = 10
	DefaultHorizonMonths   = 3
	DefaultConfidenceLevel = 0.95
)

// DefaultSegmentTable is the fallback score-range mapping used when the
// caller supplies none.
func DefaultSegmentTable() []SegmentRange {
	return []SegmentRange{
		{Min: 13, Max: 15, Name: "Champions"},
		{Min: 10, Max: 12, Name: "Loyal"},
		{Min: 8, Max: 9, Name: "Potential"},
		{Min: 5, Max: 7, Name: "At risk"},
		{Min: 3, Max: 4, Name: "Lost"},
	}
}

// withDefaults fills unset fields. It never mutates the caller's value.
func (c Config) withDefaults() Config {
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.ForecastHorizonMonths <= 0 {
		c.ForecastHorizonMonths = DefaultHorizonMonths
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		c.ConfidenceLevel = DefaultConfidenceLevel
	}
	if len(c.SegmentTable) == 0 {
		c.SegmentTable = DefaultSegmentTable()
	}
	return c
}

// segmentName resolves a combined score against the table; scores not
// covered by any range fall through to "Unclassified".
func segmentName(table []SegmentRange, score int) string {
	for _, r := range table {
		if score >= r.Min && score <= r.Max {
			return r.Name
		}
	}
	return "Unclassified"
}
