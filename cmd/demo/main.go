package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"m5-forecast/internal/config"
	"m5-forecast/internal/data"
	"m5-forecast/internal/forecast"
	"m5-forecast/internal/logging"
	"m5-forecast/internal/pipeline"
)

// Demo:
// - Generate a small synthetic dataset in the competition layout
// - Forecast both horizons with one model and write a submission
// - Cross-validate every model on the same folds and print the ranking
func main() {
	outDir := flag.String("out", "", "Working directory for data/ and results/ (default: a temp dir)")
	seed := flag.Int64("seed", 42, "Random seed for the synthetic dataset")
	items := flag.Int("items", 2, "Items per department")
	modelName := flag.String("model", "weekly_profile", "Model used for the submission")
	splits := flag.Int("splits", 3, "Cross-validation folds")
	level := flag.String("log-level", "WARN", "Log level")
	flag.Parse()

	logging.Setup(*level, "text", os.Stderr)

	dir := *outDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "m5-demo-")
		if err != nil {
			panic(err)
		}
		dir = tmp
	}

	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.CV.Splits = *splits
	cfg.Forecast.Model = config.ModelConfig{Name: *modelName}
	cfg.Metrics = []string{"mae", "rmse", "rmsse"}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	ds := data.Synthetic(data.SyntheticOptions{Seed: *seed, ItemsPerDept: *items})
	if err := data.WriteDataset(cfg.DataDir, ds, data.FilesFromConfig(cfg.Files)); err != nil {
		panic(err)
	}
	fmt.Printf("Generated %d series x %d days in %s\n", len(ds.Evaluation), len(ds.Evaluation[0].Sales), cfg.DataDir)

	ctx := context.Background()
	sum, err := pipeline.Forecast(ctx, cfg)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Model=%s wrote %d rows to %s (evaluation from %s)\n\n", sum.Model, sum.Rows, sum.SubmissionPath, sum.EvaluationSource)

	cmp, err := pipeline.Compare(ctx, cfg, forecast.Names())
	if err != nil {
		panic(err)
	}
	fmt.Printf("Cross-validation over %d folds, ranked by %s\n", cfg.CV.Splits, cmp.Metric)
	fmt.Printf("%-4s %-16s %-10s %-10s %-10s %-10s\n", "rank", "model", "wrmsse", "rmsse", "rmse", "mae")
	for _, r := range cmp.Ranking {
		fmt.Printf("%-4d %-16s %-10.4f %-10.4f %-10.4f %-10.4f\n",
			r.Rank, r.Model, r.Scores["wrmsse"], r.Scores["rmsse"], r.Scores["rmse"], r.Scores["mae"])
	}
	fmt.Printf("\nDone. Results in %s\n", cfg.ResultsDir)
}
