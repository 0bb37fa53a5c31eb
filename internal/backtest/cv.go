package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"m5-forecast/internal/analysis"
	"m5-forecast/internal/forecast"
	"m5-forecast/internal/model"
)

// CVOptions configures rolling-origin cross-validation.
type CVOptions struct {
	Splits  int
	Gap     int
	Horizon int
	Metrics []string
	// Weights optionally fixes the WRMSSE dollar weights per series; otherwise
	// they come from the last Horizon training days of each fold.
	Weights []float64
	// Ledger keeps per series-day rows in the result.
	Ledger bool
}

// Fold is one train/test split. Training covers d_1..TrainEnd, the test
// block is TestStart..TestEnd, and Gap days between them are skipped.
type Fold struct {
	Index     int `json:"index"`
	TrainEnd  int `json:"train_end"`
	TestStart int `json:"test_start"`
	TestEnd   int `json:"test_end"`
}

type FoldResult struct {
	Fold
	Scores map[string]float64     `json:"scores"`
	WRMSSE *analysis.WRMSSEResult `json:"wrmsse,omitempty"`
}

type CVResult struct {
	Model  string             `json:"model"`
	Folds  []FoldResult       `json:"folds"`
	Scores map[string]float64 `json:"scores"`
	Ledger []LedgerRow        `json:"-"`
}

// Score converts the overall scores for ranking.
func (r *CVResult) Score() analysis.ModelScore {
	return analysis.ModelScore{Model: r.Model, Scores: r.Scores}
}

// Folds lays out splits consecutive test blocks ending at lastDay; the last fold is the most recent.
func Folds(lastDay, splits, gap, horizon int) ([]Fold, error) {
	if splits < 1 {
		return nil, fmt.Errorf("splits must be >= 1, got %d", splits)
	}
	if gap < 0 {
		return nil, fmt.Errorf("gap must be >= 0, got %d", gap)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be >= 1, got %d", horizon)
	}
	folds := make([]Fold, splits)
	for i := 0; i < splits; i++ {
		end := lastDay - (splits-1-i)*horizon
		start := end - horizon + 1
		folds[i] = Fold{Index: i, TrainEnd: start - 1 - gap, TestStart: start, TestEnd: end}
	}
	if folds[0].TrainEnd < 2 {
		return nil, fmt.Errorf("%d days cannot hold %d folds of %d days with gap %d", lastDay, splits, horizon, gap)
	}
	return folds, nil
}

// CrossValidate scores f on every fold. Models never see the gap or test days of a fold.
func (e *Engine) CrossValidate(ctx context.Context, series []model.SalesSeries, env Env, f forecast.Forecaster, opts CVOptions) (*CVResult, error) {
	if len(series) == 0 {
		return nil, errors.New("no series")
	}
	if opts.Horizon == 0 {
		opts.Horizon = model.HorizonDays
	}
	if opts.Weights != nil && len(opts.Weights) != len(series) {
		return nil, fmt.Errorf("got %d weights for %d series", len(opts.Weights), len(series))
	}
	lastDay := series[0].LastDay()
	for _, s := range series {
		if s.LastDay() != lastDay {
			return nil, fmt.Errorf("series %s ends at day %d, expected %d", s.ID, s.LastDay(), lastDay)
		}
	}
	folds, err := Folds(lastDay, opts.Splits, opts.Gap, opts.Horizon)
	if err != nil {
		return nil, err
	}

	var perSeries []string
	for _, m := range opts.Metrics {
		if m = strings.ToLower(m); m != "wrmsse" {
			perSeries = append(perSeries, m)
		}
	}
	withWRMSSE := env.Prices != nil && env.Calendar != nil

	res := &CVResult{Model: f.Name(), Scores: map[string]float64{}}
	for _, fold := range folds {
		slog.Info("cross-validation fold", "model", f.Name(), "fold", fold.Index,
			"train_end", fold.TrainEnd, "test", fmt.Sprintf("%d-%d", fold.TestStart, fold.TestEnd))

		// Forecast from the day after training and drop the gap days.
		h := model.Horizon{Name: fmt.Sprintf("fold_%d", fold.Index), Suffix: "fold", FirstDay: fold.TrainEnd + 1, LastDay: fold.TestEnd}
		run, err := e.Run(ctx, series, env, f, h)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}

		train := make([][]float64, len(series))
		actual := make([][]float64, len(series))
		pred := make([][]float64, len(series))
		for i, s := range series {
			train[i] = s.Window(1, fold.TrainEnd)
			actual[i] = s.Window(fold.TestStart, fold.TestEnd)
			pred[i] = run.Rows[i].Values[opts.Gap:]
			if opts.Ledger {
				for k := range actual[i] {
					res.Ledger = append(res.Ledger, LedgerRow{
						Fold:     fold.Index,
						SeriesID: s.ID,
						Day:      fold.TestStart + k,
						Actual:   actual[i][k],
						Forecast: pred[i][k],
					})
				}
			}
		}

		fr := FoldResult{Fold: fold, Scores: map[string]float64{}}
		for _, m := range perSeries {
			vals := make([]float64, len(series))
			for i := range series {
				v, err := analysis.Compute(m, train[i], actual[i], pred[i])
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			if v := analysis.NanMean(vals); !math.IsNaN(v) {
				fr.Scores[m] = v
			}
		}
		if withWRMSSE {
			dollars := opts.Weights
			if dollars == nil {
				dollars = analysis.DollarSales(series, train, env.Calendar, env.Prices, opts.Horizon)
			}
			w, err := analysis.WRMSSE(analysis.WRMSSEInput{
				Series: series, Train: train, Actual: actual, Forecast: pred, Dollars: dollars,
			})
			if err != nil {
				slog.Warn("wrmsse not available", "fold", fold.Index, "err", err)
			} else {
				fr.WRMSSE = &w
				fr.Scores["wrmsse"] = w.Total
			}
		}
		res.Folds = append(res.Folds, fr)
	}

	// Overall scores average the folds that produced the metric.
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, fr := range res.Folds {
		for m, v := range fr.Scores {
			sums[m] += v
			counts[m]++
		}
	}
	for m, sum := range sums {
		res.Scores[m] = sum / float64(counts[m])
	}
	return res, nil
}
