package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"m5-forecast/internal/data"
	"m5-forecast/internal/model"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the competition files in the data directory",
	RunE:  runInfo,
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Write the state/store/category/department/item hierarchy as JSON",
	RunE:  runHierarchy,
}

var meltCmd = &cobra.Command{
	Use:   "melt",
	Short: "Convert validation sales from wide to long format joined with dates",
	RunE:  runMelt,
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Sum validation sales to one of the 12 aggregation levels and write JSON",
	RunE:  runAggregate,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a small synthetic dataset in the competition layout",
	Long: `Generate a seeded synthetic dataset (calendar, validation and evaluation
sales, weekly sell prices and a sample submission) with the same file layout
and day numbering as the competition data. Useful for trying the pipeline
without downloading the real files.`,
	RunE: runGenerate,
}

var (
	infoJSON bool

	hierarchyOut string

	meltOut   string
	meltLimit int

	aggLevel int
	aggOut   string

	genOut    string
	genSeed   int64
	genStores int
	genItems  int
)

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print as JSON")

	hierarchyCmd.Flags().StringVarP(&hierarchyOut, "out", "o", "", "output path (default: <results_dir>/hierarchy.json)")

	meltCmd.Flags().StringVarP(&meltOut, "out", "o", "", "output path (default: <results_dir>/sales_long.csv)")
	meltCmd.Flags().IntVarP(&meltLimit, "limit", "n", 0, "limit to the first N series (0 = all)")

	aggregateCmd.Flags().IntVarP(&aggLevel, "level", "l", 1, "aggregation level (1 = total .. 12 = item x store)")
	aggregateCmd.Flags().StringVarP(&aggOut, "out", "o", "", "output path (default: <results_dir>/level_<n>.json)")

	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output directory (default: data_dir)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (default: random_state)")
	generateCmd.Flags().IntVar(&genStores, "stores", 1, "stores per state")
	generateCmd.Flags().IntVar(&genItems, "items", 2, "items per department")

	rootCmd.AddCommand(infoCmd, hierarchyCmd, meltCmd, aggregateCmd, generateCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	tables, err := data.NewLoaderFromConfig(cfg).Info()
	if err != nil {
		return err
	}
	if infoJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	}
	if len(tables) == 0 {
		fmt.Printf("No competition files found in %s\n", cfg.DataDir)
		return nil
	}
	fmt.Printf("%-24s %-10s %-8s %-8s %-10s\n", "table", "rows", "columns", "nulls", "size_mb")
	for _, t := range tables {
		nulls := 0
		for _, n := range t.NullCounts {
			nulls += n
		}
		fmt.Printf("%-24s %-10d %-8d %-8d %-10.2f\n", t.Name, t.Rows, len(t.Columns), nulls, t.SizeMB)
	}
	return nil
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	sales, err := data.NewLoaderFromConfig(cfg).LoadSales(true)
	if err != nil {
		return err
	}
	h := data.BuildHierarchy(sales)
	out := hierarchyOut
	if out == "" {
		out = cfg.ResultPath("hierarchy.json")
	}
	if err := data.SaveHierarchy(h, out); err != nil {
		return err
	}
	fmt.Printf("states=%d stores=%d categories=%d departments=%d items=%d\n",
		len(h.States), len(h.Stores), len(h.Categories), len(h.Departments), len(h.Items))
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func runMelt(cmd *cobra.Command, args []string) error {
	loader := data.NewLoaderFromConfig(cfg)
	cal, err := loader.LoadCalendar()
	if err != nil {
		return err
	}
	sales, err := loader.LoadSales(true)
	if err != nil {
		return err
	}
	rows := data.Melt(data.Limit(sales, meltLimit), cal)
	out := meltOut
	if out == "" {
		out = cfg.ResultPath("sales_long.csv")
	}
	if err := data.WriteMeltedCSV(out, rows); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), out)
	return nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	lvl, err := model.Level(aggLevel)
	if err != nil {
		return err
	}
	sales, err := data.NewLoaderFromConfig(cfg).LoadSales(true)
	if err != nil {
		return err
	}
	groups, err := data.Aggregate(sales, aggLevel)
	if err != nil {
		return err
	}
	out := aggOut
	if out == "" {
		out = cfg.ResultPath(fmt.Sprintf("level_%d.json", aggLevel))
	}
	if err := data.SaveJSON(out, groups); err != nil {
		return err
	}
	fmt.Printf("Level %d (%s): %d groups from %d series\n", lvl.ID, lvl.Name, len(groups), len(sales))
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	seed := genSeed
	if seed == 0 {
		seed = cfg.RandomState
	}
	out := genOut
	if out == "" {
		out = cfg.DataDir
	}
	ds := data.Synthetic(data.SyntheticOptions{Seed: seed, StoresPerState: genStores, ItemsPerDept: genItems})
	if err := data.WriteDataset(out, ds, data.FilesFromConfig(cfg.Files)); err != nil {
		return err
	}
	stores := data.GroupByStore(ds.Validation)
	names := make([]string, 0, len(stores))
	for s := range stores {
		names = append(names, s)
	}
	sort.Strings(names)
	fmt.Printf("Wrote %d series across stores %v to %s\n", len(ds.Validation), names, filepath.Clean(out))
	return nil
}
