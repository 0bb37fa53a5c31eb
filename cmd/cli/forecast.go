package main

import (
	"fmt"

	"m5-forecast/internal/config"
	"m5-forecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast both horizons and write results/submission.csv",
	Long: `Forecast the validation and evaluation horizons with the configured model
and write a submission ordered like sample_submission.csv, plus run.json.

Without sales_train_evaluation.csv the evaluation horizon is taken from a
56-day forecast of the validation history.`,
	RunE: runForecast,
}

var (
	forecastModel     string
	forecastModelFile string
	forecastLimit     int
	forecastWorkers   int
	forecastOut       string
)

func init() {
	forecastCmd.Flags().StringVarP(&forecastModel, "model", "m", "", "model name (overrides forecast.model.name)")
	forecastCmd.Flags().StringVar(&forecastModelFile, "model-file", "", "model preset YAML (e.g. examples/models/croston_sba.yaml)")
	forecastCmd.Flags().IntVarP(&forecastLimit, "limit", "n", -1, "limit to the first N series (0 = all)")
	forecastCmd.Flags().IntVar(&forecastWorkers, "workers", -1, "worker goroutines (0 = GOMAXPROCS)")
	forecastCmd.Flags().StringVarP(&forecastOut, "out", "o", "", "results directory (overrides results_dir)")
	rootCmd.AddCommand(forecastCmd)
}

// applyRunFlags overlays the flags shared by forecast and evaluate onto cfg.
func applyRunFlags(model, modelFile string, limit, workers int) error {
	if modelFile != "" {
		m, err := config.LoadModelFile(modelFile)
		if err != nil {
			return err
		}
		cfg.Forecast.Model = m
	}
	if model != "" {
		cfg.Forecast.Model = config.MergeModel(cfg.Forecast.Model, config.ModelConfig{Name: model})
	}
	if limit >= 0 {
		cfg.Forecast.Limit = limit
	}
	if workers >= 0 {
		cfg.Forecast.Workers = workers
	}
	return cfg.Validate()
}

func runForecast(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(forecastModel, forecastModelFile, forecastLimit, forecastWorkers); err != nil {
		return err
	}
	if forecastOut != "" {
		cfg.ResultsDir = forecastOut
	}

	sum, err := pipeline.Forecast(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", sum.RunID)
	fmt.Printf("Model=%s series=%d last observed day=%d\n", sum.Model, sum.Series, sum.LastObservedDay)
	for _, h := range sum.Horizons {
		fmt.Printf("  %-10s d_%d..d_%d\n", h.Name, h.FirstDay, h.LastDay)
	}
	fmt.Printf("Evaluation source: %s\n", sum.EvaluationSource)
	fmt.Printf("Wrote %d rows to %s (mean forecast %.3f)\n", sum.Rows, sum.SubmissionPath, sum.MeanForecast)
	return nil
}
