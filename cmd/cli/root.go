package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"m5-forecast/internal/config"
	"m5-forecast/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
	dataDir  string

	// cfg is loaded once per invocation, before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "m5",
	Short: "Forecast 28 days of M5 unit sales per item and store",
	Long: `m5 loads the M5 competition files (calendar, sales, sell prices and the
sample submission), forecasts the validation and evaluation horizons with a
configurable model, and scores models with rolling-origin cross-validation.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "override data_dir")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	var err error
	if path != "" {
		cfg, err = config.LoadUnchecked(path)
		if errors.Is(err, fs.ErrNotExist) && cfgPath == "" {
			cfg, err = defaultConfig(), nil
		}
	} else {
		cfg = defaultConfig()
	}
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	return nil
}

func defaultConfig() *config.Config {
	c := config.Default()
	c.ApplyEnv()
	return c
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
