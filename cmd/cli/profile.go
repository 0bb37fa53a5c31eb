package main

import (
	"fmt"

	"m5-forecast/internal/analysis"
	"m5-forecast/internal/data"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile series demand and classify it (smooth, erratic, intermittent, lumpy)",
	RunE:  runProfile,
}

var (
	profileTop int
	profileOut string
)

func init() {
	profileCmd.Flags().IntVar(&profileTop, "top", 10, "print the N highest-volume series")
	profileCmd.Flags().StringVarP(&profileOut, "out", "o", "", "write every profile as JSON to this path")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	sales, err := data.NewLoaderFromConfig(cfg).LoadSales(true)
	if err != nil {
		return err
	}
	sales = data.Limit(sales, cfg.Forecast.Limit)

	profiles := make([]analysis.SeriesProfile, len(sales))
	for i, s := range sales {
		profiles[i] = analysis.ComputeProfile(s)
	}

	counts := analysis.CountByClass(profiles)
	fmt.Printf("%d series\n", len(profiles))
	for _, c := range []analysis.DemandClass{
		analysis.DemandSmooth, analysis.DemandErratic, analysis.DemandIntermittent,
		analysis.DemandLumpy, analysis.DemandInactive,
	} {
		fmt.Printf("  %-13s %d\n", c, counts[c])
	}

	ranked := analysis.RankProfilesByVolume(profiles)
	if profileTop > len(ranked) {
		profileTop = len(ranked)
	}
	if profileTop > 0 {
		fmt.Println()
		fmt.Printf("%-4s %-30s %-13s %-8s %-8s %-8s %-8s\n", "rank", "id", "class", "mean", "p95", "zero%", "adi")
		for i, p := range ranked[:profileTop] {
			fmt.Printf("%-4d %-30s %-13s %-8.2f %-8.2f %-8.1f %-8.2f\n",
				i+1, p.ID, p.Class, p.MeanSales, p.P95Sales, p.ZeroShare*100, p.ADI)
		}
	}

	if profileOut != "" {
		if err := data.SaveJSON(profileOut, profiles); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", profileOut)
	}
	return nil
}
