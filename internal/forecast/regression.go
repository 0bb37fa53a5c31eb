package forecast

import (
	"errors"
	"fmt"
	"math"

	"m5-forecast/internal/features"

	"gonum.org/v1/gonum/mat"
)

// Regression fits a per-series ridge regression on lag, rolling, calendar and
// price features and forecasts recursively, feeding each prediction back as history.
// Series too short to fit fall back to Fallback.
type Regression struct {
	Lambda    float64
	TrainDays int
	Lags      []int
	Windows   []int
	Stats     []features.Stat
	Fallback  Forecaster
}

func (r Regression) Name() string { return "regression" }

func (r Regression) builder(ctx Context) *features.Builder {
	return &features.Builder{
		Lags:     r.Lags,
		Windows:  r.Windows,
		Stats:    r.Stats,
		Calendar: ctx.Calendar,
		Prices:   ctx.Prices,
	}
}

func (r Regression) Forecast(ctx Context, h int) ([]float64, error) {
	b := r.builder(ctx)
	fit, ok, err := r.fit(b, ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Fallback.Forecast(ctx, h)
	}

	ext := make([]float64, len(ctx.History), len(ctx.History)+h)
	copy(ext, ctx.History)
	out := make([]float64, h)
	for k := 0; k < h; k++ {
		row := b.Row(ctx.Series, ext, len(ext))
		y := fit.predict(row)
		if y < 0 || math.IsNaN(y) {
			y = 0
		}
		out[k] = y
		ext = append(ext, y)
	}
	return out, nil
}

// ridgeFit is a standardized linear model: y = intercept + sum(beta_j * (x_j - mean_j) / scale_j).
type ridgeFit struct {
	intercept float64
	beta      []float64
	means     []float64
	scales    []float64
}

func (f *ridgeFit) predict(row []float64) float64 {
	y := f.intercept
	for j, x := range impute(row, f.means) {
		y += f.beta[j] * (x - f.means[j]) / f.scales[j]
	}
	return y
}

// impute replaces NaN inputs with the column means; complete rows are returned as is.
func impute(row, means []float64) []float64 {
	if !features.HasNaN(row) {
		return row
	}
	out := make([]float64, len(row))
	for j, x := range row {
		if math.IsNaN(x) {
			x = means[j]
		}
		out[j] = x
	}
	return out
}

// fit returns ok=false when there are not enough usable training rows.
func (r Regression) fit(b *features.Builder, ctx Context) (*ridgeFit, bool, error) {
	hist := ctx.History
	start := b.MaxLookback()
	if first := ctx.Series.FirstSaleDay() - 1; first > start && first < len(hist) {
		start = first
	}
	if r.TrainDays > 0 && len(hist)-r.TrainDays > start {
		start = len(hist) - r.TrainDays
	}
	p := len(b.Names())
	if p == 0 || len(hist)-start < 2*(p+1) {
		return nil, false, nil
	}

	rows := make([][]float64, 0, len(hist)-start)
	ys := make([]float64, 0, len(hist)-start)
	for t := start; t < len(hist); t++ {
		rows = append(rows, b.Row(ctx.Series, hist, t))
		ys = append(ys, hist[t])
	}

	// Column means over observed values impute missing calendar/price inputs.
	means := make([]float64, p)
	counts := make([]int, p)
	for _, row := range rows {
		for j, x := range row {
			if !math.IsNaN(x) {
				means[j] += x
				counts[j]++
			}
		}
	}
	for j := range means {
		if counts[j] > 0 {
			means[j] /= float64(counts[j])
		}
	}
	for i, row := range rows {
		rows[i] = impute(row, means)
	}
	scales := make([]float64, p)
	for _, row := range rows {
		for j, x := range row {
			scales[j] += (x - means[j]) * (x - means[j])
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / float64(len(rows)))
		if scales[j] == 0 {
			scales[j] = 1
		}
	}

	yMean := mean(ys)
	X := mat.NewDense(len(rows), p, nil)
	y := mat.NewVecDense(len(ys), nil)
	for i, row := range rows {
		for j, x := range row {
			X.Set(i, j, (x-means[j])/scales[j])
		}
		y.SetVec(i, ys[i]-yMean)
	}

	// (X'X + lambda*I) beta = X'y
	var A mat.Dense
	A.Mul(X.T(), X)
	for j := 0; j < p; j++ {
		A.Set(j, j, A.At(j, j)+r.Lambda)
	}
	var rhs mat.VecDense
	rhs.MulVec(X.T(), y)
	var beta mat.VecDense
	if err := beta.SolveVec(&A, &rhs); err != nil {
		// A near-singular system still yields a usable least-squares solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false, fmt.Errorf("ridge solve for %s: %w", ctx.Series.ID, err)
		}
	}

	fit := &ridgeFit{
		intercept: yMean,
		beta:      make([]float64, p),
		means:     means,
		scales:    scales,
	}
	for j := 0; j < p; j++ {
		fit.beta[j] = beta.AtVec(j)
	}
	return fit, true, nil
}
