package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"m5-forecast/internal/config"
	"m5-forecast/internal/data"
	"m5-forecast/internal/logging"
	"m5-forecast/internal/pipeline"
	"m5-forecast/internal/storage"
	"m5-forecast/internal/store"
	"m5-forecast/internal/submission"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// publish uploads a finished results directory to object storage and records
// the run (and optionally every forecast value) in Postgres.
func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("publish failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	cfgPath    string
	resultsDir string
	skipS3     bool
	skipDB     bool
	values     bool
	list       int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.StringVar(&o.cfgPath, "config", "", "Path to YAML config (optional)")
	fs.StringVar(&o.resultsDir, "results", "", "Results directory (default: results_dir)")
	fs.BoolVar(&o.skipS3, "skip-s3", false, "Do not upload artifacts")
	fs.BoolVar(&o.skipDB, "skip-db", false, "Do not record the run in Postgres")
	fs.BoolVar(&o.values, "values", false, "Also copy every submission value into Postgres")
	fs.IntVar(&o.list, "list", 0, "Print the N most recent recorded runs and exit")
	err := fs.Parse(args)
	return o, err
}

func run(ctx context.Context, args []string) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := config.Default()
	if o.cfgPath != "" {
		loaded, err := config.Load(o.cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if o.resultsDir != "" {
		cfg.ResultsDir = o.resultsDir
	}

	if o.list > 0 {
		return listRuns(ctx, o.list)
	}

	var sum pipeline.Summary
	if err := data.LoadJSON(cfg.ResultPath(pipeline.RunFile), &sum); err != nil {
		return fmt.Errorf("read run summary: %w", err)
	}
	runID, err := uuid.Parse(sum.RunID)
	if err != nil {
		return fmt.Errorf("parse run id: %w", err)
	}

	if !o.skipS3 {
		if err := upload(ctx, cfg, sum.RunID); err != nil {
			return err
		}
	}
	if !o.skipDB {
		return record(ctx, cfg, runID, &sum, o.values)
	}
	return nil
}

func upload(ctx context.Context, cfg *config.Config, runID string) error {
	opts := storage.S3OptionsFromEnv()
	if cfg.Publish.Bucket != "" {
		opts.Bucket = cfg.Publish.Bucket
	}
	client, err := storage.NewS3Client(ctx, opts)
	if err != nil {
		return fmt.Errorf("create s3 client: %w", err)
	}
	keys, err := client.UploadDir(ctx, cfg.ResultsDir, cfg.Publish.Prefix, runID)
	if err != nil {
		return fmt.Errorf("upload results: %w", err)
	}
	fmt.Printf("Uploaded %d files to s3://%s/%s\n", len(keys), opts.Bucket,
		storage.ObjectKey(cfg.Publish.Prefix, runID, ""))
	return nil
}

func record(ctx context.Context, cfg *config.Config, runID uuid.UUID, sum *pipeline.Summary, values bool) error {
	db, err := store.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	r := &store.Run{
		ID:               runID,
		Model:            sum.Model,
		Params:           sum.Params,
		CreatedAt:        sum.CreatedAt,
		Series:           sum.Series,
		LastObservedDay:  sum.LastObservedDay,
		EvaluationSource: sum.EvaluationSource,
		Rows:             sum.Rows,
		MeanForecast:     sum.MeanForecast,
	}
	if err := db.SaveRun(ctx, r); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Printf("Recorded run %s\n", r.ID)

	if !values {
		return nil
	}
	rows, err := submission.ReadCSV(filepath.Join(cfg.ResultsDir, pipeline.SubmissionFile))
	if err != nil {
		return fmt.Errorf("read submission: %w", err)
	}
	n, err := db.SaveForecasts(ctx, r.ID, rows)
	if err != nil {
		return fmt.Errorf("save forecasts: %w", err)
	}
	fmt.Printf("Copied %d forecast values\n", n)
	return nil
}

func listRuns(ctx context.Context, n int) error {
	db, err := store.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, n)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	fmt.Printf("%-36s %-20s %-16s %-8s %-10s\n", "run", "created", "model", "series", "mean")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-16s %-8d %-10.3f\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Model, r.Series, r.MeanForecast)
	}
	return nil
}
