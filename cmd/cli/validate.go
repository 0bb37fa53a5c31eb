package main

import (
	"errors"
	"fmt"

	"m5-forecast/internal/data"
	"m5-forecast/internal/submission"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [submission.csv]",
	Short: "Check a submission file against sample_submission.csv",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.ResultPath("submission.csv")
	if len(args) == 1 {
		path = args[0]
	}
	rows, err := submission.ReadCSV(path)
	if err != nil {
		return err
	}
	sample, err := data.NewLoaderFromConfig(cfg).LoadSampleSubmission()
	if err != nil {
		return err
	}

	err = submission.Validate(rows, sample)
	var verr *submission.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			fmt.Println("  -", p)
		}
		return fmt.Errorf("%s: %d problems", path, len(verr.Problems))
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d rows OK\n", path, len(rows))
	return nil
}
