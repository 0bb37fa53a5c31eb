// Package pipeline runs the end-to-end batch jobs: forecasting both horizons into
// a submission file, and cross-validating models against recent history.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"m5-forecast/internal/backtest"
	"m5-forecast/internal/config"
	"m5-forecast/internal/data"
	"m5-forecast/internal/features"
	"m5-forecast/internal/forecast"
	"m5-forecast/internal/model"
	"m5-forecast/internal/submission"

	"github.com/google/uuid"
)

// Output file names inside the results directory.
const (
	SubmissionFile = "submission.csv"
	RunFile        = "run.json"
)

// Evaluation sources recorded in the run summary.
const (
	SourceEvaluationFile = "sales_train_evaluation"
	SourceExtended       = "extended_validation"
)

// Summary describes one forecasting run and is written as run.json.
type Summary struct {
	RunID            string          `json:"run_id"`
	Model            string          `json:"model"`
	Params           map[string]any  `json:"params,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	DurationSeconds  float64         `json:"duration_seconds"`
	Series           int             `json:"series"`
	LastObservedDay  int             `json:"last_observed_day"`
	Horizons         []model.Horizon `json:"horizons"`
	EvaluationSource string          `json:"evaluation_source"`
	SubmissionPath   string          `json:"submission_path"`
	Rows             int             `json:"rows"`
	MeanForecast     float64         `json:"mean_forecast"`
}

// NewForecaster builds a model using the configured feature settings.
func NewForecaster(cfg *config.Config, name string, params map[string]any) (forecast.Forecaster, error) {
	stats, err := features.ParseStats(cfg.Features.RollingStats)
	if err != nil {
		return nil, err
	}
	return forecast.New(name, params, forecast.Options{
		Lags:    cfg.Features.Lags,
		Windows: cfg.Features.RollingWindows,
		Stats:   stats,
	})
}

// Forecast predicts the validation and evaluation horizons and writes the
// submission and run summary to the results directory. When the evaluation
// sales file is absent, the evaluation horizon is the second half of a
// 56-day forecast from the validation history.
func Forecast(ctx context.Context, cfg *config.Config) (*Summary, error) {
	start := time.Now()
	f, err := NewForecaster(cfg, cfg.Forecast.Model.Name, cfg.Forecast.Model.Params)
	if err != nil {
		return nil, err
	}
	loader := data.NewLoaderFromConfig(cfg)
	ds, err := loader.LoadAll(true)
	if err != nil {
		return nil, err
	}
	series := data.Limit(ds.Sales, cfg.Forecast.Limit)
	if len(series) == 0 {
		return nil, fmt.Errorf("no series in %s", cfg.Files.SalesTrainValidation)
	}

	last := ds.LastDay()
	valH := model.HorizonAfter(model.ValidationHorizon.Name, last)
	evalH := model.HorizonAfter(model.EvaluationHorizon.Name, valH.LastDay)
	if err := submission.CheckHorizons(last, valH, evalH); err != nil {
		return nil, err
	}
	if valH != model.ValidationHorizon {
		slog.Warn("validation history does not end at the competition cutoff",
			"last_day", last, "expected", model.ValidationHorizon.FirstDay-1)
	}

	engine := backtest.New(cfg.Forecast.Workers)
	env := backtest.Env{Calendar: ds.Calendar, Prices: ds.Prices}

	slog.Info("forecasting", "model", f.Name(), "horizon", valH.Name, "series", len(series))
	valRes, err := engine.Run(ctx, series, env, f, valH)
	if err != nil {
		return nil, fmt.Errorf("validation forecast: %w", err)
	}

	evalRows, source, err := forecastEvaluation(ctx, loader, cfg, engine, env, f, series, valH, evalH)
	if err != nil {
		return nil, fmt.Errorf("evaluation forecast: %w", err)
	}

	sample := ds.SampleSubmission
	if cfg.Forecast.Limit > 0 {
		sample = restrictSample(sample, series, valH, evalH)
	}
	rows, err := submission.Order(submission.Build(valRes.Submission(), evalRows), sample)
	if err != nil {
		return nil, err
	}
	if err := submission.Validate(rows, sample); err != nil {
		return nil, err
	}
	path := cfg.ResultPath(SubmissionFile)
	if err := submission.WriteCSV(path, rows); err != nil {
		return nil, fmt.Errorf("write submission: %w", err)
	}

	sum := &Summary{
		RunID:            uuid.New().String(),
		Model:            f.Name(),
		Params:           cfg.Forecast.Model.Params,
		CreatedAt:        start.UTC(),
		DurationSeconds:  time.Since(start).Seconds(),
		Series:           len(series),
		LastObservedDay:  last,
		Horizons:         []model.Horizon{valH, evalH},
		EvaluationSource: source,
		SubmissionPath:   path,
		Rows:             len(rows),
		MeanForecast:     meanValue(rows),
	}
	if err := data.SaveJSON(cfg.ResultPath(RunFile), sum); err != nil {
		return nil, err
	}
	slog.Info("submission written", "path", path, "rows", len(rows), "run_id", sum.RunID)
	return sum, nil
}

func forecastEvaluation(
	ctx context.Context,
	loader *data.Loader,
	cfg *config.Config,
	engine *backtest.Engine,
	env backtest.Env,
	f forecast.Forecaster,
	validation []model.SalesSeries,
	valH, evalH model.Horizon,
) ([]model.SubmissionRow, string, error) {
	if loader.HasEvaluation() {
		sales, err := loader.LoadSales(false)
		if err != nil {
			return nil, "", err
		}
		sales = data.Limit(sales, cfg.Forecast.Limit)
		slog.Info("forecasting", "model", f.Name(), "horizon", evalH.Name, "series", len(sales))
		res, err := engine.Run(ctx, sales, env, f, evalH)
		if err != nil {
			return nil, "", err
		}
		return res.Submission(), SourceEvaluationFile, nil
	}

	slog.Warn("evaluation sales file not found, extending the validation forecast",
		"file", cfg.Files.SalesTrainEvaluation)
	ext := model.Horizon{Name: evalH.Name, Suffix: evalH.Suffix, FirstDay: valH.FirstDay, LastDay: evalH.LastDay}
	res, err := engine.Run(ctx, validation, env, f, ext)
	if err != nil {
		return nil, "", err
	}
	offset := evalH.FirstDay - valH.FirstDay
	rows := make([]model.SubmissionRow, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = model.SubmissionRow{ID: model.SubmissionID(r.Key, evalH), Values: r.Values[offset:]}
	}
	return rows, SourceExtended, nil
}

// restrictSample keeps the sample ids that belong to series.
func restrictSample(sample []model.SubmissionRow, series []model.SalesSeries, horizons ...model.Horizon) []model.SubmissionRow {
	keep := map[string]bool{}
	for _, s := range series {
		for _, h := range horizons {
			keep[model.SubmissionID(s.Key(), h)] = true
		}
	}
	var out []model.SubmissionRow
	for _, r := range sample {
		if keep[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func meanValue(rows []model.SubmissionRow) float64 {
	sum, n := 0.0, 0
	for _, r := range rows {
		for _, v := range r.Values {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
