// Package features computes per-day model inputs from a sales history.
//
// Positions are 0-based offsets into a values slice whose element 0 is d_1,
// so position t corresponds to day index t+1. Lag and rolling features only
// read positions strictly before t.
package features

import (
	"fmt"
	"math"

	"m5-forecast/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stat names a rolling-window statistic.
type Stat string

const (
	StatMean Stat = "mean"
	StatStd  Stat = "std"
	StatMin  Stat = "min"
	StatMax  Stat = "max"
)

// Lag returns values[t-lag], or NaN when it is outside the slice.
func Lag(values []float64, t, lag int) float64 {
	i := t - lag
	if lag <= 0 || i < 0 || i >= len(values) {
		return math.NaN()
	}
	return values[i]
}

// Rolling computes stat over values[t-window : t]. The window must be fully available.
func Rolling(values []float64, t, window int, s Stat) float64 {
	if window <= 0 || t-window < 0 || t > len(values) {
		return math.NaN()
	}
	w := values[t-window : t]
	switch s {
	case StatMean:
		return stat.Mean(w, nil)
	case StatStd:
		if len(w) < 2 {
			return 0
		}
		return stat.StdDev(w, nil)
	case StatMin:
		return floats.Min(w)
	case StatMax:
		return floats.Max(w)
	default:
		return math.NaN()
	}
}

// Builder assembles feature rows. Calendar and Prices are optional; their
// features are emitted only when the source is set.
type Builder struct {
	Lags     []int
	Windows  []int
	Stats    []Stat
	Calendar *model.Calendar
	Prices   *model.Prices
}

func ParseStats(names []string) ([]Stat, error) {
	out := make([]Stat, 0, len(names))
	for _, n := range names {
		switch s := Stat(n); s {
		case StatMean, StatStd, StatMin, StatMax:
			out = append(out, s)
		default:
			return nil, fmt.Errorf("unknown rolling stat %q", n)
		}
	}
	return out, nil
}

// Names lists the feature columns in Row order.
func (b *Builder) Names() []string {
	var names []string
	for _, l := range b.Lags {
		names = append(names, fmt.Sprintf("lag_%d", l))
	}
	for _, w := range b.Windows {
		for _, s := range b.Stats {
			names = append(names, fmt.Sprintf("rolling_%s_%d", s, w))
		}
	}
	if b.Calendar != nil {
		names = append(names, "dayofweek", "month", "quarter", "is_weekend", "has_event", "snap")
	}
	if b.Prices != nil {
		names = append(names, "sell_price", "price_rel_max", "price_change")
	}
	return names
}

// MaxLookback is the number of observations needed before every lag and window is defined.
func (b *Builder) MaxLookback() int {
	m := 0
	for _, l := range b.Lags {
		if l > m {
			m = l
		}
	}
	for _, w := range b.Windows {
		if w > m {
			m = w
		}
	}
	return m
}

// Row computes the features for position t of values belonging to series s.
// Missing inputs come back as NaN.
func (b *Builder) Row(s model.SalesSeries, values []float64, t int) []float64 {
	row := make([]float64, 0, len(b.Lags)+len(b.Windows)*len(b.Stats)+9)
	for _, l := range b.Lags {
		row = append(row, Lag(values, t, l))
	}
	for _, w := range b.Windows {
		for _, st := range b.Stats {
			row = append(row, Rolling(values, t, w, st))
		}
	}

	day, haveDay := b.Calendar.ByIndex(t + 1)
	if b.Calendar != nil {
		if haveDay {
			row = append(row,
				float64(day.DayOfWeek),
				float64(day.Month),
				float64(day.Quarter),
				boolFloat(day.IsWeekend),
				boolFloat(day.HasEvent()),
				boolFloat(day.Snap(s.StateID)),
			)
		} else {
			row = append(row, nan(6)...)
		}
	}
	if b.Prices != nil {
		row = append(row, b.priceFeatures(s, day, haveDay)...)
	}
	return row
}

func (b *Builder) priceFeatures(s model.SalesSeries, day model.CalendarDay, haveDay bool) []float64 {
	if !haveDay {
		return nan(3)
	}
	price, ok := b.Prices.Lookup(s.StoreID, s.ItemID, day.WmYrWk)
	if !ok {
		return nan(3)
	}
	rel := math.NaN()
	if m := b.Prices.Max(s.StoreID, s.ItemID); m > 0 {
		rel = price / m
	}
	change := 0.0
	if prevDay, ok := b.Calendar.ByIndex(day.DayIndex - 7); ok && prevDay.WmYrWk != day.WmYrWk {
		if prev, ok := b.Prices.Lookup(s.StoreID, s.ItemID, prevDay.WmYrWk); ok && prev > 0 {
			change = price/prev - 1
		}
	}
	return []float64{price, rel, change}
}

func boolFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func nan(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// HasNaN reports whether any value in row is NaN.
func HasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
