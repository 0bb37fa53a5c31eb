package main

import (
	"fmt"

	"m5-forecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Random-search a model's parameters with cross-validation",
	Long: `Score tuning.n_trials parameter sets for one model on the cross-validation
folds and keep the best by the primary metric. The search stops early when
tuning.timeout seconds pass. Writes tune_<model>.json to the results directory
and the best set as tuned_<model>.yaml under models_dir, ready for --model-file.`,
	RunE: runTune,
}

var (
	tuneModel     string
	tuneTrials    int
	tuneTimeout   int
	tuneLimit     int
	tuneOut       string
	tunePresetDir string
)

func init() {
	tuneCmd.Flags().StringVarP(&tuneModel, "model", "m", "", "model name (default: configured model)")
	tuneCmd.Flags().IntVar(&tuneTrials, "trials", 0, "number of trials (overrides tuning.n_trials)")
	tuneCmd.Flags().IntVar(&tuneTimeout, "timeout", -1, "time limit in seconds, 0 = none (overrides tuning.timeout)")
	tuneCmd.Flags().IntVarP(&tuneLimit, "limit", "n", -1, "limit to the first N series (0 = all)")
	tuneCmd.Flags().StringVarP(&tuneOut, "out", "o", "", "results directory (overrides results_dir)")
	tuneCmd.Flags().StringVar(&tunePresetDir, "preset-dir", "", "directory for the tuned preset (overrides models_dir)")
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	if tuneTrials > 0 {
		cfg.Tuning.NTrials = tuneTrials
	}
	if tuneTimeout >= 0 {
		cfg.Tuning.Timeout = tuneTimeout
	}
	if tuneLimit >= 0 {
		cfg.Forecast.Limit = tuneLimit
	}
	if tuneOut != "" {
		cfg.ResultsDir = tuneOut
	}
	if tunePresetDir != "" {
		cfg.ModelsDir = tunePresetDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := pipeline.Tune(cmd.Context(), cfg, tuneModel)
	if err != nil {
		return err
	}
	fmt.Printf("%-6s %-10s %s\n", "trial", res.Metric, "params")
	for _, t := range res.Trials {
		fmt.Printf("%-6d %-10s %v\n", t.Index, formatScore(t.Scores, res.Metric), t.Params)
	}
	if res.TimedOut {
		fmt.Printf("stopped after %d trials (timeout %ds)\n", len(res.Trials), cfg.Tuning.Timeout)
	}
	fmt.Printf("best: trial %d %s=%s -> %s\n", res.Best.Index, res.Metric, formatScore(res.Best.Scores, res.Metric), res.PresetPath)
	return nil
}
