package analytics

import (
	"fmt"
	"sort"
	"time"

	"order-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// CustomerRFM is a derived, per-window view of one customer. Customers
// are identified by receiver name inside the organization and are never
// persisted.
type CustomerRFM struct {
	Receiver      string           `json:"receiver"`
	RecencyDays   int              `json:"recency_days"`
	Frequency     int              `json:"frequency"`
	Monetary      decimal.Decimal  `json:"monetary"`
	FirstOrder    time.Time        `json:"first_order"`
	LastOrder     time.Time        `json:"last_order"`
	RScore        int              `json:"r_score"`
	FScore        int              `json:"f_score"`
	MScore        int              `json:"m_score"`
	RFM           string           `json:"rfm"`
	Segment       string           `json:"segment"`
	HistoricCLV   decimal.Decimal  `json:"historic_clv"`
	ProjectedCLV  *decimal.Decimal `json:"projected_clv,omitempty"`
	LowConfidence bool             `json:"low_confidence"`
}

// CohortRow is one acquisition cohort: customers whose first order fell
// in Month. Retention[k] is the fraction of the cohort with at least
// one order k months after acquisition; Retention[0] is always 1.
type CohortRow struct {
	Month     time.Time `json:"month"`
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

// Segmentation is the output of the customer segmentation module.
type Segmentation struct {
	Customers  []CustomerRFM `json:"customers"`
	Cohorts    []CohortRow   `json:"cohorts"`
	RepeatRate float64       `json:"repeat_rate"`
}

// Segment scores every customer in the window on recency, frequency and
// monetary value, assigns segments from the configured score table, and
// builds retention cohorts. Fewer than 2 distinct customers make
// quantile binning degenerate, so ErrInsufficientData is returned
// instead of bins.
func Segment(orders []models.OrderRecord, w Window, cfg Config) (Segmentation, error) {
	byReceiver := make(map[string]*CustomerRFM)
	activeMonths := make(map[string]map[time.Time]bool)

	for _, o := range orders {
		c, ok := byReceiver[o.ReceiverName]
		if !ok {
			c = &CustomerRFM{
				Receiver:   o.ReceiverName,
				Monetary:   decimal.Zero,
				FirstOrder: o.Date,
				LastOrder:  o.Date,
			}
			byReceiver[o.ReceiverName] = c
			activeMonths[o.ReceiverName] = make(map[time.Time]bool)
		}
		c.Frequency++
		c.Monetary = c.Monetary.Add(o.TotalWithTax)
		if o.Date.Before(c.FirstOrder) {
			c.FirstOrder = o.Date
		}
		if o.Date.After(c.LastOrder) {
			c.LastOrder = o.Date
		}
		activeMonths[o.ReceiverName][monthOf(o.Date)] = true
	}

	if len(byReceiver) < 2 {
		return Segmentation{}, ErrInsufficientData
	}

	customers := make([]CustomerRFM, 0, len(byReceiver))
	for _, c := range byReceiver {
		c.RecencyDays = int(w.End.Sub(c.LastOrder).Hours() / 24)
		c.HistoricCLV = c.Monetary
		c.LowConfidence = c.Frequency < 2
		if c.Frequency >= 2 && cfg.RetentionHorizonMonths > 0 {
			p := projectCLV(*c, w, cfg.RetentionHorizonMonths)
			c.ProjectedCLV = &p
		}
		customers = append(customers, *c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Receiver < customers[j].Receiver })

	scoreDimensions(customers, cfg.SegmentTable)

	seg := Segmentation{
		Customers:  customers,
		Cohorts:    cohorts(customers, activeMonths, w),
		RepeatRate: repeatRate(activeMonths),
	}
	return seg, nil
}

// scoreDimensions assigns 1-5 quintile scores in place. Scores are rank
// based: customers sharing a value share a bin, no forced distinct
// ranks. Recency is inverted, a smaller value is a better score.
func scoreDimensions(customers []CustomerRFM, table []SegmentRange) {
	n := len(customers)
	for i := range customers {
		var less, greater, mLess int
		for j := range customers {
			if customers[j].Frequency < customers[i].Frequency {
				less++
			}
			if customers[j].RecencyDays > customers[i].RecencyDays {
				greater++
			}
			if customers[j].Monetary.Cmp(customers[i].Monetary) < 0 {
				mLess++
			}
		}
		// Quintile bin of the strict rank: floor(5 * rank/n) + 1. The
		// rank never reaches n, so scores stay in 1..5.
		c := &customers[i]
		c.RScore = 1 + 5*greater/n
		c.FScore = 1 + 5*less/n
		c.MScore = 1 + 5*mLess/n
		c.RFM = fmt.Sprintf("%d%d%d", c.RScore, c.FScore, c.MScore)
		c.Segment = segmentName(table, c.RScore+c.FScore+c.MScore)
	}
}

// projectCLV implements the simple projection: historic value scaled by
// observed purchase frequency per month over the assumed retention
// horizon. The horizon is caller configuration, never a guessed
// constant.
func projectCLV(c CustomerRFM, w Window, horizonMonths int) decimal.Decimal {
	days := w.End.Sub(c.FirstOrder).Hours() / 24
	months := days / 30
	if months < 1 {
		months = 1
	}
	perMonth := float64(c.Frequency) / months
	return c.HistoricCLV.Mul(decimal.NewFromFloat(perMonth * float64(horizonMonths)))
}

// cohorts groups customers by acquisition month. Unlike the monthly
// revenue series, months with no acquisitions are omitted: retention is
// cohort-relative, not time-series-relative.
func cohorts(customers []CustomerRFM, activeMonths map[string]map[time.Time]bool, w Window) []CohortRow {
	members := make(map[time.Time][]string)
	for _, c := range customers {
		m := monthOf(c.FirstOrder)
		members[m] = append(members[m], c.Receiver)
	}

	monthsEnd := monthOf(w.End)
	out := make([]CohortRow, 0, len(members))
	for m, names := range members {
		row := CohortRow{Month: m, Size: len(names)}
		for offset := m; !offset.After(monthsEnd); offset = offset.AddDate(0, 1, 0) {
			active := 0
			for _, name := range names {
				if activeMonths[name][offset] {
					active++
				}
			}
			row.Retention = append(row.Retention, float64(active)/float64(len(names)))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// repeatRate is the fraction of customers active in more than one
// calendar month.
func repeatRate(activeMonths map[string]map[time.Time]bool) float64 {
	if len(activeMonths) == 0 {
		return 0
	}
	repeat := 0
	for _, months := range activeMonths {
		if len(months) > 1 {
			repeat++
		}
	}
	return float64(repeat) / float64(len(activeMonths))
}
