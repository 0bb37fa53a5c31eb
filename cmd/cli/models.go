package main

import (
	"fmt"

	"m5-forecast/internal/forecast"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available forecasting models and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, m := range forecast.Describe() {
			fmt.Printf("%s\n  %s\n", m.Name, m.Description)
			for _, p := range m.Parameters {
				fmt.Printf("    %-12s %-7s %s (default %v)\n", p.Name, p.Type, p.Description, p.Default)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
