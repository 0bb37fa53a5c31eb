package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"m5-forecast/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	DataDir    string `yaml:"data_dir"`
	ResultsDir string `yaml:"results_dir"`
	ModelsDir  string `yaml:"models_dir"`

	Files       FilesConfig    `yaml:"files"`
	RandomState int64          `yaml:"random_state"`
	Forecast    ForecastConfig `yaml:"forecast"`
	Features    FeaturesConfig `yaml:"features"`
	CV          CVConfig       `yaml:"cv"`
	Tuning      TuningConfig   `yaml:"tuning"`
	Metrics     []string       `yaml:"metrics"`
	Logging     LoggingConfig  `yaml:"logging"`
	Publish     PublishConfig  `yaml:"publish"`
}

type FilesConfig struct {
	Calendar             string `yaml:"calendar"`
	SalesTrainValidation string `yaml:"sales_train_validation"`
	SalesTrainEvaluation string `yaml:"sales_train_evaluation"`
	SampleSubmission     string `yaml:"sample_submission"`
	SellPrices           string `yaml:"sell_prices"`
}

type ForecastConfig struct {
	Horizon int `yaml:"horizon"`
	Workers int `yaml:"workers"`

	// Optional: load the model from a separate YAML (e.g. examples/models/*.yaml).
	// If both ModelFile and Model are provided, Model overrides ModelFile.
	ModelFile string      `yaml:"model_file"`
	Model     ModelConfig `yaml:"model"`

	// Limit restricts the run to the first N series (0 = all).
	Limit int `yaml:"limit"`
}

type ModelConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type FeaturesConfig struct {
	Lags           []int    `yaml:"lags"`
	RollingWindows []int    `yaml:"rolling_windows"`
	RollingStats   []string `yaml:"rolling_stats"`
}

type CVConfig struct {
	Splits int `yaml:"splits"`
	Gap    int `yaml:"gap"`
}

// TuningConfig bounds a random parameter search: at most NTrials parameter
// sets per model, stopping after Timeout seconds (0 = no limit).
type TuningConfig struct {
	NTrials int `yaml:"n_trials"`
	Timeout int `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

var (
	knownStats   = map[string]bool{"mean": true, "std": true, "min": true, "max": true}
	knownMetrics = map[string]bool{"mae": true, "mse": true, "rmse": true, "mape": true, "smape": true, "rmsse": true, "wrmsse": true}
	knownLevels  = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	knownFormats = map[string]bool{"text": true, "json": true}
)

// Default returns the project defaults.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		ResultsDir: "results",
		ModelsDir:  "models",
		Files: FilesConfig{
			Calendar:             "calendar.csv",
			SalesTrainValidation: "sales_train_validation.csv",
			SalesTrainEvaluation: "sales_train_evaluation.csv",
			SampleSubmission:     "sample_submission.csv",
			SellPrices:           "sell_prices.csv",
		},
		RandomState: 42,
		Forecast: ForecastConfig{
			Horizon: model.HorizonDays,
			Model:   ModelConfig{Name: "weekly_profile"},
		},
		Features: FeaturesConfig{
			Lags:           []int{1, 2, 3, 7, 14, 21, 28},
			RollingWindows: []int{7, 14, 28},
			RollingStats:   []string{"mean", "std", "min", "max"},
		},
		CV:      CVConfig{Splits: 5, Gap: 0},
		Tuning:  TuningConfig{NTrials: 100, Timeout: 3600},
		Metrics: []string{"mae", "mse", "rmse", "mape", "smape"},
		Logging: LoggingConfig{Level: "INFO", Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads, merges and fills defaults, but does not validate.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// If model_file is set, load it and merge in any explicit overrides from c.Forecast.Model.
	if c.Forecast.ModelFile != "" {
		modelPath := c.Forecast.ModelFile
		if !filepath.IsAbs(modelPath) {
			// Relative to the config file directory first, then cwd.
			cand := filepath.Join(filepath.Dir(path), modelPath)
			if _, err := os.Stat(cand); err == nil {
				modelPath = cand
			}
		}
		loaded, err := LoadModelFile(modelPath)
		if err != nil {
			return nil, err
		}
		c.Forecast.Model = MergeModel(loaded, c.Forecast.Model)
	}
	c.ApplyDefaults()
	c.ApplyEnv()
	return &c, nil
}

// ApplyDefaults fills zero-valued fields from Default().
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.ResultsDir == "" {
		c.ResultsDir = d.ResultsDir
	}
	if c.ModelsDir == "" {
		c.ModelsDir = d.ModelsDir
	}
	if c.Files.Calendar == "" {
		c.Files.Calendar = d.Files.Calendar
	}
	if c.Files.SalesTrainValidation == "" {
		c.Files.SalesTrainValidation = d.Files.SalesTrainValidation
	}
	if c.Files.SalesTrainEvaluation == "" {
		c.Files.SalesTrainEvaluation = d.Files.SalesTrainEvaluation
	}
	if c.Files.SampleSubmission == "" {
		c.Files.SampleSubmission = d.Files.SampleSubmission
	}
	if c.Files.SellPrices == "" {
		c.Files.SellPrices = d.Files.SellPrices
	}
	if c.RandomState == 0 {
		c.RandomState = d.RandomState
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = d.Forecast.Horizon
	}
	if c.Forecast.Model.Name == "" {
		c.Forecast.Model.Name = d.Forecast.Model.Name
	}
	if c.Features.Lags == nil {
		c.Features.Lags = d.Features.Lags
	}
	if c.Features.RollingWindows == nil {
		c.Features.RollingWindows = d.Features.RollingWindows
	}
	if c.Features.RollingStats == nil {
		c.Features.RollingStats = d.Features.RollingStats
	}
	if c.CV.Splits == 0 {
		c.CV.Splits = d.CV.Splits
	}
	if c.Tuning == (TuningConfig{}) {
		c.Tuning = d.Tuning
	}
	if c.Tuning.NTrials == 0 {
		c.Tuning.NTrials = d.Tuning.NTrials
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// ApplyEnv lets M5_DATA_DIR and M5_RESULTS_DIR override the configured directories.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("M5_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("M5_RESULTS_DIR"); v != "" {
		c.ResultsDir = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Forecast.Horizon != model.HorizonDays {
		return fmt.Errorf("forecast.horizon must be %d (submission format), got %d", model.HorizonDays, c.Forecast.Horizon)
	}
	if c.Forecast.Workers < 0 {
		return errors.New("forecast.workers must be >= 0")
	}
	if c.Forecast.Limit < 0 {
		return errors.New("forecast.limit must be >= 0")
	}
	if strings.TrimSpace(c.Forecast.Model.Name) == "" {
		return errors.New("forecast.model.name is required")
	}
	if c.CV.Splits < 1 {
		return errors.New("cv.splits must be >= 1")
	}
	if c.CV.Gap < 0 {
		return errors.New("cv.gap must be >= 0")
	}
	if c.Tuning.NTrials < 1 {
		return errors.New("tuning.n_trials must be >= 1")
	}
	if c.Tuning.Timeout < 0 {
		return errors.New("tuning.timeout must be >= 0")
	}
	for _, l := range c.Features.Lags {
		if l <= 0 {
			return fmt.Errorf("features.lags must be > 0, got %d", l)
		}
	}
	for _, w := range c.Features.RollingWindows {
		if w <= 0 {
			return fmt.Errorf("features.rolling_windows must be > 0, got %d", w)
		}
	}
	for _, s := range c.Features.RollingStats {
		if !knownStats[s] {
			return fmt.Errorf("unknown rolling stat %q", s)
		}
	}
	for _, m := range c.Metrics {
		if !knownMetrics[strings.ToLower(m)] {
			return fmt.Errorf("unknown metric %q", m)
		}
	}
	if !knownLevels[strings.ToUpper(c.Logging.Level)] {
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	if !knownFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// Path joins a file name onto the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// ModelPath joins a file name onto the models directory.
func (c *Config) ModelPath(name string) string {
	return filepath.Join(c.ModelsDir, name)
}

// ResultPath joins a file name onto the results directory.
func (c *Config) ResultPath(name string) string {
	return filepath.Join(c.ResultsDir, name)
}

type modelFileWrapper struct {
	Model ModelConfig `yaml:"model"`
}

// LoadModelFile reads a model preset ("model:" document).
func LoadModelFile(path string) (ModelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, err
	}
	var w modelFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return ModelConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Model, nil
}

// SaveModelFile writes m as a model preset that LoadModelFile reads back.
func SaveModelFile(path string, m ModelConfig) error {
	raw, err := yaml.Marshal(modelFileWrapper{Model: m})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// MergeModel overlays the non-empty name and every param key from override onto base.
func MergeModel(base, override ModelConfig) ModelConfig {
	out := ModelConfig{Name: base.Name, Params: map[string]any{}}
	for k, v := range base.Params {
		out.Params[k] = v
	}
	if override.Name != "" && override.Name != base.Name {
		// A different model does not inherit the preset's params.
		out.Name = override.Name
		out.Params = map[string]any{}
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}
