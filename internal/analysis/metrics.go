package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Metric names accepted by Compute.
const (
	MetricMAE   = "mae"
	MetricMSE   = "mse"
	MetricRMSE  = "rmse"
	MetricMAPE  = "mape"
	MetricSMAPE = "smape"
	MetricRMSSE = "rmsse"
)

// MAE is the mean absolute error. Mismatched or empty inputs give NaN.
func MAE(actual, forecast []float64) float64 {
	if !comparable(actual, forecast) {
		return math.NaN()
	}
	sum := 0.0
	for i, a := range actual {
		sum += math.Abs(a - forecast[i])
	}
	return sum / float64(len(actual))
}

// MSE is the mean squared error.
func MSE(actual, forecast []float64) float64 {
	if !comparable(actual, forecast) {
		return math.NaN()
	}
	sum := 0.0
	for i, a := range actual {
		d := a - forecast[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

func RMSE(actual, forecast []float64) float64 {
	return math.Sqrt(MSE(actual, forecast))
}

// MAPE is the mean absolute percentage error (in percent) over non-zero actuals.
// NaN when every actual is zero.
func MAPE(actual, forecast []float64) float64 {
	if !comparable(actual, forecast) {
		return math.NaN()
	}
	sum, n := 0.0, 0
	for i, a := range actual {
		if a == 0 {
			continue
		}
		sum += math.Abs((a - forecast[i]) / a)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return 100 * sum / float64(n)
}

// SMAPE is the symmetric MAPE (in percent, 0..200). Terms where both values are zero count as 0.
func SMAPE(actual, forecast []float64) float64 {
	if !comparable(actual, forecast) {
		return math.NaN()
	}
	sum := 0.0
	for i, a := range actual {
		den := math.Abs(a) + math.Abs(forecast[i])
		if den == 0 {
			continue
		}
		sum += 2 * math.Abs(a-forecast[i]) / den
	}
	return 100 * sum / float64(len(actual))
}

// RMSSE is the root mean squared scaled error. The scale is the mean squared
// one-step naive error of train from its first non-zero observation.
// NaN when the scale is zero or undefined.
func RMSSE(train, actual, forecast []float64) float64 {
	scale := NaiveScale(train)
	if !(scale > 0) {
		return math.NaN()
	}
	return math.Sqrt(MSE(actual, forecast) / scale)
}

// NaiveScale is mean((y_t - y_{t-1})^2) over train starting at its first non-zero value.
func NaiveScale(train []float64) float64 {
	start := -1
	for i, v := range train {
		if v != 0 {
			start = i
			break
		}
	}
	if start < 0 || len(train)-start < 2 {
		return math.NaN()
	}
	sum := 0.0
	for t := start + 1; t < len(train); t++ {
		d := train[t] - train[t-1]
		sum += d * d
	}
	return sum / float64(len(train)-start-1)
}

// Compute evaluates a metric by name.
func Compute(name string, train, actual, forecast []float64) (float64, error) {
	switch strings.ToLower(name) {
	case MetricMAE:
		return MAE(actual, forecast), nil
	case MetricMSE:
		return MSE(actual, forecast), nil
	case MetricRMSE:
		return RMSE(actual, forecast), nil
	case MetricMAPE:
		return MAPE(actual, forecast), nil
	case MetricSMAPE:
		return SMAPE(actual, forecast), nil
	case MetricRMSSE:
		return RMSSE(train, actual, forecast), nil
	default:
		return math.NaN(), fmt.Errorf("unknown metric %q", name)
	}
}

// NanMean averages the non-NaN values; NaN if there are none.
func NanMean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func comparable(actual, forecast []float64) bool {
	return len(actual) > 0 && len(actual) == len(forecast)
}
