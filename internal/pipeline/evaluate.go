package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"m5-forecast/internal/analysis"
	"m5-forecast/internal/backtest"
	"m5-forecast/internal/config"
	"m5-forecast/internal/data"
	"m5-forecast/internal/model"
)

// ComparisonFile holds the ranked output of Compare.
const ComparisonFile = "comparison.json"

// Comparison is the ranked result of cross-validating several models.
type Comparison struct {
	Metric  string                 `json:"metric"`
	Ranking []analysis.RankedModel `json:"ranking"`
	Results []*backtest.CVResult   `json:"results"`
}

type evalData struct {
	series []model.SalesSeries
	env    backtest.Env
}

// loadHistory prefers the longer evaluation sales file when it exists.
func loadHistory(cfg *config.Config) (*evalData, error) {
	loader := data.NewLoaderFromConfig(cfg)
	cal, err := loader.LoadCalendar()
	if err != nil {
		return nil, err
	}
	prices, err := loader.LoadPrices()
	if err != nil {
		return nil, err
	}
	sales, err := loader.LoadSales(!loader.HasEvaluation())
	if err != nil {
		return nil, err
	}
	sales = data.Limit(sales, cfg.Forecast.Limit)
	if len(sales) == 0 {
		return nil, errors.New("no series to evaluate")
	}
	return &evalData{series: sales, env: backtest.Env{Calendar: cal, Prices: prices}}, nil
}

func cvOptions(cfg *config.Config, ledger bool) backtest.CVOptions {
	return backtest.CVOptions{
		Splits:  cfg.CV.Splits,
		Gap:     cfg.CV.Gap,
		Horizon: cfg.Forecast.Horizon,
		Metrics: cfg.Metrics,
		Ledger:  ledger,
	}
}

// Evaluate cross-validates one model (the configured one when name is empty)
// and writes cv_<model>.json and ledger_<model>.csv to the results directory.
func Evaluate(ctx context.Context, cfg *config.Config, name string) (*backtest.CVResult, error) {
	ed, err := loadHistory(cfg)
	if err != nil {
		return nil, err
	}
	return evaluate(ctx, cfg, ed, name, true)
}

func evaluate(ctx context.Context, cfg *config.Config, ed *evalData, name string, ledger bool) (*backtest.CVResult, error) {
	params := map[string]any(nil)
	if name == "" || strings.EqualFold(name, cfg.Forecast.Model.Name) {
		name, params = cfg.Forecast.Model.Name, cfg.Forecast.Model.Params
	}
	f, err := NewForecaster(cfg, name, params)
	if err != nil {
		return nil, err
	}
	res, err := backtest.New(cfg.Forecast.Workers).CrossValidate(ctx, ed.series, ed.env, f, cvOptions(cfg, ledger))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	if err := data.SaveJSON(cfg.ResultPath("cv_"+f.Name()+".json"), res); err != nil {
		return nil, err
	}
	if ledger {
		if err := backtest.WriteLedgerCSV(cfg.ResultPath("ledger_"+f.Name()+".csv"), res.Ledger); err != nil {
			return nil, fmt.Errorf("write ledger: %w", err)
		}
	}
	slog.Info("evaluation finished", "model", f.Name(), "scores", res.Scores)
	return res, nil
}

// Compare cross-validates every named model on the same folds and ranks them
// by the primary metric: wrmsse when available, else the first configured metric.
func Compare(ctx context.Context, cfg *config.Config, names []string) (*Comparison, error) {
	if len(names) == 0 {
		return nil, errors.New("no models to compare")
	}
	ed, err := loadHistory(cfg)
	if err != nil {
		return nil, err
	}
	cmp := &Comparison{}
	scores := make([]analysis.ModelScore, 0, len(names))
	for _, n := range names {
		res, err := evaluate(ctx, cfg, ed, n, false)
		if err != nil {
			return nil, err
		}
		cmp.Results = append(cmp.Results, res)
		scores = append(scores, res.Score())
	}
	cmp.Metric = PrimaryMetric(cfg.Metrics, cmp.Results[0].Scores)
	cmp.Ranking = analysis.RankModels(scores, cmp.Metric)
	if err := data.SaveJSON(cfg.ResultPath(ComparisonFile), cmp); err != nil {
		return nil, err
	}
	return cmp, nil
}

// PrimaryMetric picks the metric used for ranking.
func PrimaryMetric(metrics []string, scores map[string]float64) string {
	if _, ok := scores["wrmsse"]; ok {
		return "wrmsse"
	}
	if len(metrics) > 0 {
		return strings.ToLower(metrics[0])
	}
	return analysis.MetricRMSE
}
