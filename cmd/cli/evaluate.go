package main

import (
	"fmt"
	"sort"

	"m5-forecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Cross-validate one model on the most recent history",
	Long: `Score a model with rolling-origin cross-validation (cv.splits folds of 28
days ending at the last observed day). Writes cv_<model>.json and the per
series-day ledger ledger_<model>.csv to the results directory.`,
	RunE: runEvaluate,
}

var (
	evalModel     string
	evalModelFile string
	evalLimit     int
	evalWorkers   int
	evalSplits    int
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalModel, "model", "m", "", "model name (default: configured model)")
	evaluateCmd.Flags().StringVar(&evalModelFile, "model-file", "", "model preset YAML")
	evaluateCmd.Flags().IntVarP(&evalLimit, "limit", "n", -1, "limit to the first N series (0 = all)")
	evaluateCmd.Flags().IntVar(&evalWorkers, "workers", -1, "worker goroutines (0 = GOMAXPROCS)")
	evaluateCmd.Flags().IntVar(&evalSplits, "splits", 0, "number of folds (overrides cv.splits)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(evalModel, evalModelFile, evalLimit, evalWorkers); err != nil {
		return err
	}
	if evalSplits > 0 {
		cfg.CV.Splits = evalSplits
	}

	res, err := pipeline.Evaluate(cmd.Context(), cfg, "")
	if err != nil {
		return err
	}

	metrics := make([]string, 0, len(res.Scores))
	for m := range res.Scores {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	fmt.Printf("%-6s %-12s", "fold", "test")
	for _, m := range metrics {
		fmt.Printf(" %-10s", m)
	}
	fmt.Println()
	for _, f := range res.Folds {
		fmt.Printf("%-6d %-12s", f.Index, fmt.Sprintf("%d-%d", f.TestStart, f.TestEnd))
		for _, m := range metrics {
			fmt.Printf(" %-10s", formatScore(f.Scores, m))
		}
		fmt.Println()
	}
	fmt.Printf("%-6s %-12s", "mean", "")
	for _, m := range metrics {
		fmt.Printf(" %-10s", formatScore(res.Scores, m))
	}
	fmt.Println()
	return nil
}
