package main

import (
	"fmt"
	"sort"

	"m5-forecast/internal/forecast"
	"m5-forecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Cross-validate several models and rank them",
	Long: `Run the same cross-validation folds for every listed model and rank them by
WRMSSE (or the first configured metric when prices are unavailable).
Writes comparison.json to the results directory.`,
	RunE: runRank,
}

var (
	rankModels string
	rankLimit  int
)

func init() {
	rankCmd.Flags().StringVar(&rankModels, "models", "", "comma-separated model names (default: all)")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", -1, "limit to the first N series (0 = all)")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	names := splitList(rankModels)
	if len(names) == 0 {
		names = forecast.Names()
	}
	if rankLimit >= 0 {
		cfg.Forecast.Limit = rankLimit
	}

	cmp, err := pipeline.Compare(cmd.Context(), cfg, names)
	if err != nil {
		return err
	}
	printRanking(cmp)
	return nil
}

func printRanking(cmp *pipeline.Comparison) {
	var metrics []string
	if len(cmp.Ranking) > 0 {
		for m := range cmp.Ranking[0].Scores {
			metrics = append(metrics, m)
		}
	}
	sort.Strings(metrics)

	fmt.Printf("ranked by %s\n", cmp.Metric)
	fmt.Printf("%-4s %-16s", "rank", "model")
	for _, m := range metrics {
		fmt.Printf(" %-10s", m)
	}
	fmt.Println()
	for _, r := range cmp.Ranking {
		fmt.Printf("%-4d %-16s", r.Rank, r.Model)
		for _, m := range metrics {
			fmt.Printf(" %-10s", formatScore(r.Scores, m))
		}
		fmt.Println()
	}
}

// formatScore prints a metric to four decimals, or "-" when it was not scored.
func formatScore(scores map[string]float64, metric string) string {
	v, ok := scores[metric]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
