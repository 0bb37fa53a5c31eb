// Package forecast holds the per-series forecasting models.
package forecast

import (
	"m5-forecast/internal/model"
)

// Context is everything a model may look at when forecasting one series.
// History holds d_1 .. FirstDay-1; nothing at or after FirstDay is visible.
type Context struct {
	Series   model.SalesSeries
	History  []float64
	FirstDay int
	Calendar *model.Calendar
	Prices   *model.Prices
}

// Forecaster produces h daily forecasts starting at ctx.FirstDay.
// Implementations must be safe for concurrent use.
type Forecaster interface {
	Name() string
	Forecast(ctx Context, h int) ([]float64, error)
}

// active drops the leading zeros before the first sale.
func active(history []float64) []float64 {
	for i, v := range history {
		if v != 0 {
			return history[i:]
		}
	}
	return nil
}

func constant(v float64, h int) []float64 {
	out := make([]float64, h)
	for i := range out {
		out[i] = v
	}
	return out
}

func tail(history []float64, n int) []float64 {
	if n <= 0 || n >= len(history) {
		return history
	}
	return history[len(history)-n:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
