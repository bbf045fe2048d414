package analytics

import (
	"sort"
	"time"

	"order-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// MonthlyBucket is one calendar month of the trend series. Months with
// no orders are present with zero values; the forecaster depends on the
// series having no gaps.
type MonthlyBucket struct {
	Month        time.Time       `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	BasicRevenue decimal.Decimal `json:"basic_revenue"`
	Pending      decimal.Decimal `json:"pending"`
	Quantity     int64           `json:"quantity"`
	Orders       int             `json:"orders"`
}

// RankingEntry is one row of a top-N ranking.
type RankingEntry struct {
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

// StatusBucket aggregates orders sharing a status.
type StatusBucket struct {
	Status   string          `json:"status"`
	Revenue  decimal.Decimal `json:"revenue"`
	Pending  decimal.Decimal `json:"pending"`
	Quantity int64           `json:"quantity"`
	Orders   int             `json:"orders"`
}

// OrderSizeStats summarizes the order quantity distribution.
type OrderSizeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Aggregates is the output of the aggregation engine.
type Aggregates struct {
	Monthly                []MonthlyBucket `json:"monthly"`
	TopReceiversByRevenue  []RankingEntry  `json:"top_receivers_by_revenue"`
	TopReceiversByQuantity []RankingEntry  `json:"top_receivers_by_quantity"`
	TopProductsByRevenue   []RankingEntry  `json:"top_products_by_revenue"`
	TopProductsByQuantity  []RankingEntry  `json:"top_products_by_quantity"`
	StatusBreakdown        []StatusBucket  `json:"status_breakdown"`
	OrderSize              OrderSizeStats  `json:"order_size"`
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TotalOrders            int             `json:"total_orders"`
}

// Aggregate builds the monthly trend series and the top-N rankings for
// orders already scoped to the window. Revenue is total_with_tax; the
// parallel basic series is basic_price * quantity for tax-exclusive
// views. All sums are decimal, never binary floats.
func Aggregate(orders []models.OrderRecord, w Window, topN int) Aggregates {
	agg := Aggregates{
		Monthly:      monthSpan(w),
		TotalRevenue: decimal.Zero,
		TotalOrders:  len(orders),
	}
	index := make(map[time.Time]int, len(agg.Monthly))
	for i, b := range agg.Monthly {
		index[b.Month] = i
	}

	receivers := make(map[string]*RankingEntry)
	products := make(map[string]*RankingEntry)
	statuses := make(map[string]*StatusBucket)
	quantities := make([]int64, 0, len(orders))

	for _, o := range orders {
		basicRevenue := o.BasicPrice.Mul(decimal.NewFromInt(o.Quantity))

		if i, ok := index[monthOf(o.Date)]; ok {
			b := &agg.Monthly[i]
			b.Revenue = b.Revenue.Add(o.TotalWithTax)
			b.BasicRevenue = b.BasicRevenue.Add(basicRevenue)
			b.Pending = b.Pending.Add(o.PendingAmount)
			b.Quantity += o.Quantity
			b.Orders++
		}

		accumulate(receivers, o.ReceiverName, o.TotalWithTax, o.Quantity)
		accumulate(products, o.Product, o.TotalWithTax, o.Quantity)

		s, ok := statuses[o.Status]
		if !ok {
			s = &StatusBucket{Status: o.Status, Revenue: decimal.Zero, Pending: decimal.Zero}
			statuses[o.Status] = s
		}
		s.Revenue = s.Revenue.Add(o.TotalWithTax)
		s.Pending = s.Pending.Add(o.PendingAmount)
		s.Quantity += o.Quantity
		s.Orders++

		quantities = append(quantities, o.Quantity)
		agg.TotalRevenue = agg.TotalRevenue.Add(o.TotalWithTax)
	}

	agg.TopReceiversByRevenue = rank(receivers, topN, byRevenue)
	agg.TopReceiversByQuantity = rank(receivers, topN, byQuantity)
	agg.TopProductsByRevenue = rank(products, topN, byRevenue)
	agg.TopProductsByQuantity = rank(products, topN, byQuantity)
	agg.StatusBreakdown = statusSlice(statuses)
	agg.OrderSize = orderSizeStats(quantities)
	return agg
}

func accumulate(m map[string]*RankingEntry, name string, revenue decimal.Decimal, qty int64) {
	e, ok := m[name]
	if !ok {
		e = &RankingEntry{Name: name, Revenue: decimal.Zero}
		m[name] = e
	}
	e.Revenue = e.Revenue.Add(revenue)
	e.Quantity += qty
}

type rankMetric int

const (
	byRevenue rankMetric = iota
	byQuantity
)

// rank sorts entries on the metric, breaking ties by total quantity and
// then lexicographically by name so the order is deterministic.
func rank(m map[string]*RankingEntry, topN int, metric rankMetric) []RankingEntry {
	out := make([]RankingEntry, 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if metric == byRevenue {
			if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
				return c > 0
			}
		}
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func statusSlice(m map[string]*StatusBucket) []StatusBucket {
	out := make([]StatusBucket, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

func orderSizeStats(quantities []int64) OrderSizeStats {
	n := len(quantities)
	if n == 0 {
		return OrderSizeStats{}
	}
	var sum int64
	for _, q := range quantities {
		sum += q
	}
	sorted := make([]int64, n)
	copy(sorted, quantities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var median float64
	if n%2 == 1 {
		median = float64(sorted[n/2])
	} else {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return OrderSizeStats{
		Mean:   float64(sum) / float64(n),
		Median: median,
	}
}

// monthSpan returns one zero bucket per calendar month of the window,
// inclusive on both ends.
func monthSpan(w Window) []MonthlyBucket {
	var buckets []MonthlyBucket
	for m := monthOf(w.Start); !m.After(monthOf(w.End)); m = m.AddDate(0, 1, 0) {
		buckets = append(buckets, MonthlyBucket{
			Month:        m,
			Revenue:      decimal.Zero,
			BasicRevenue: decimal.Zero,
			Pending:      decimal.Zero,
		})
	}
	return buckets
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
