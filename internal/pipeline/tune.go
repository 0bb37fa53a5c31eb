package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"m5-forecast/internal/analysis"
	"m5-forecast/internal/backtest"
	"m5-forecast/internal/config"
	"m5-forecast/internal/data"
	"m5-forecast/internal/forecast"

	"golang.org/x/exp/rand"
)

// Trial is one parameter set scored by cross-validation.
type Trial struct {
	Index   int                `json:"index"`
	Params  map[string]any     `json:"params,omitempty"`
	Scores  map[string]float64 `json:"scores"`
	Seconds float64            `json:"seconds"`
}

// TuneResult is written as tune_<model>.json.
type TuneResult struct {
	Model      string  `json:"model"`
	Metric     string  `json:"metric"`
	Trials     []Trial `json:"trials"`
	Best       Trial   `json:"best"`
	TimedOut   bool    `json:"timed_out"`
	PresetPath string  `json:"preset_path"`
}

// Tune runs a random search over a model's parameters. Trial 0 uses the
// configured params; the rest are drawn from forecast.SearchSpace with a
// generator seeded by random_state. The search stops after tuning.n_trials
// trials or when tuning.timeout expires, keeping the trials already scored.
// The best set is saved as a model preset under models_dir.
func Tune(ctx context.Context, cfg *config.Config, name string) (*TuneResult, error) {
	if name == "" {
		name = cfg.Forecast.Model.Name
	}
	name = strings.ToLower(strings.TrimSpace(name))
	base := map[string]any{}
	if strings.EqualFold(name, cfg.Forecast.Model.Name) {
		base = config.MergeModel(cfg.Forecast.Model, config.ModelConfig{Name: name}).Params
	}
	if _, err := NewForecaster(cfg, name, base); err != nil {
		return nil, err
	}

	ed, err := loadHistory(cfg)
	if err != nil {
		return nil, err
	}

	tctx := ctx
	if cfg.Tuning.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Tuning.Timeout)*time.Second)
		defer cancel()
	}

	space := forecast.SearchSpace(name)
	n := cfg.Tuning.NTrials
	if len(space) == 0 {
		n = 1
	}
	rng := rand.New(rand.NewSource(uint64(cfg.RandomState)))
	engine := backtest.New(cfg.Forecast.Workers)
	opts := cvOptions(cfg, false)

	out := &TuneResult{Model: name}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tctx.Err() != nil {
			out.TimedOut = true
			break
		}
		params := base
		if i > 0 {
			params = config.MergeModel(config.ModelConfig{Name: name, Params: base},
				config.ModelConfig{Name: name, Params: forecast.SampleParams(space, rng)}).Params
		}
		f, err := NewForecaster(cfg, name, params)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		start := time.Now()
		res, err := engine.CrossValidate(tctx, ed.series, ed.env, f, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(tctx.Err(), context.DeadlineExceeded) {
				out.TimedOut = true
				break
			}
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		t := Trial{Index: i, Params: params, Scores: res.Scores, Seconds: time.Since(start).Seconds()}
		out.Trials = append(out.Trials, t)
		slog.Debug("trial scored", "model", name, "trial", i, "params", params, "scores", res.Scores)
	}
	if out.TimedOut {
		slog.Warn("tuning timed out", "model", name, "completed", len(out.Trials))
	}
	if len(out.Trials) == 0 {
		return nil, fmt.Errorf("tune %s: no trial finished within %ds", name, cfg.Tuning.Timeout)
	}

	out.Metric = PrimaryMetric(cfg.Metrics, out.Trials[0].Scores)
	scores := make([]analysis.ModelScore, len(out.Trials))
	for i, t := range out.Trials {
		scores[i] = analysis.ModelScore{Model: fmt.Sprint(t.Index), Scores: t.Scores}
	}
	best := analysis.RankModels(scores, out.Metric)[0]
	for _, t := range out.Trials {
		if fmt.Sprint(t.Index) == best.Model {
			out.Best = t
		}
	}

	out.PresetPath = cfg.ModelPath("tuned_" + name + ".yaml")
	if err := config.SaveModelFile(out.PresetPath, config.ModelConfig{Name: name, Params: out.Best.Params}); err != nil {
		return nil, err
	}
	if err := data.SaveJSON(cfg.ResultPath("tune_"+name+".json"), out); err != nil {
		return nil, err
	}
	slog.Info("tuning finished", "model", name, "trials", len(out.Trials),
		"metric", out.Metric, "best", out.Best.Scores[out.Metric], "preset", out.PresetPath)
	return out, nil
}
