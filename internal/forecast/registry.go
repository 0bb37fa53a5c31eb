package forecast

import (
	"fmt"
	"strings"

	"m5-forecast/internal/features"
)

// Options carries the project-level feature settings some models need.
type Options struct {
	Lags    []int
	Windows []int
	Stats   []features.Stat
}

func defaultOptions() Options {
	return Options{
		Lags:    []int{1, 2, 3, 7, 14, 21, 28},
		Windows: []int{7, 14, 28},
		Stats:   []features.Stat{features.StatMean, features.StatStd, features.StatMin, features.StatMax},
	}
}

// New builds a model by name from its params. A zero Options uses the
// default lags, windows and rolling stats.
func New(name string, params map[string]any, opts Options) (Forecaster, error) {
	if opts.Lags == nil && opts.Windows == nil && opts.Stats == nil {
		opts = defaultOptions()
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "zero":
		return Zero{}, nil
	case "naive":
		return Naive{}, nil
	case "seasonal_naive":
		period := mustInt(params, "period", 7)
		if err := checkPositive("period", period); err != nil {
			return nil, err
		}
		return SeasonalNaive{Period: period}, nil
	case "moving_average":
		window := mustInt(params, "window", 28)
		if err := checkPositive("window", window); err != nil {
			return nil, err
		}
		return MovingAverage{Window: window}, nil
	case "weekly_profile":
		window := mustInt(params, "window", 28)
		weeks := mustInt(params, "weeks", 8)
		if err := checkPositive("window", window); err != nil {
			return nil, err
		}
		if err := checkPositive("weeks", weeks); err != nil {
			return nil, err
		}
		return WeeklyProfile{Window: window, Weeks: weeks}, nil
	case "ses":
		alpha := mustNum(params, "alpha", 0.1)
		if err := checkUnit("alpha", alpha); err != nil {
			return nil, err
		}
		return SES{Alpha: alpha}, nil
	case "croston":
		alpha := mustNum(params, "alpha", 0.1)
		beta := mustNum(params, "beta", 0.1)
		if err := checkUnit("alpha", alpha); err != nil {
			return nil, err
		}
		if err := checkUnit("beta", beta); err != nil {
			return nil, err
		}
		variant, err := ParseCrostonVariant(mustStr(params, "variant", string(CrostonClassic)))
		if err != nil {
			return nil, err
		}
		return Croston{Alpha: alpha, Beta: beta, Variant: variant}, nil
	case "regression":
		lambda := mustNum(params, "lambda", 1.0)
		if lambda < 0 {
			return nil, fmt.Errorf("lambda must be >= 0, got %v", lambda)
		}
		trainDays := mustInt(params, "train_days", 365)
		if trainDays < 0 {
			return nil, fmt.Errorf("train_days must be >= 0, got %d", trainDays)
		}
		return Regression{
			Lambda:    lambda,
			TrainDays: trainDays,
			Lags:      opts.Lags,
			Windows:   opts.Windows,
			Stats:     opts.Stats,
			Fallback:  WeeklyProfile{Window: 28, Weeks: 8},
		}, nil
	case "auto":
		alpha := mustNum(params, "alpha", 0.1)
		beta := mustNum(params, "beta", 0.1)
		window := mustInt(params, "window", 28)
		if err := checkUnit("alpha", alpha); err != nil {
			return nil, err
		}
		if err := checkUnit("beta", beta); err != nil {
			return nil, err
		}
		if err := checkPositive("window", window); err != nil {
			return nil, err
		}
		return NewAuto(alpha, beta, window), nil
	case "ensemble":
		names := mustStrList(params, "members", []string{"weekly_profile", "croston", "moving_average"})
		if len(names) == 0 {
			return nil, fmt.Errorf("ensemble needs at least one member")
		}
		e := &Ensemble{}
		for _, n := range names {
			if strings.EqualFold(n, "ensemble") {
				return nil, fmt.Errorf("ensemble cannot contain itself")
			}
			m, err := New(n, nil, opts)
			if err != nil {
				return nil, fmt.Errorf("ensemble member %q: %w", n, err)
			}
			e.Members = append(e.Members, m)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported model: %q", name)
	}
}

// Info describes a model for listings.
type Info struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters,omitempty"`
}

type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int", "string", "list"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Describe lists every model New accepts.
func Describe() []Info {
	return []Info{
		{Name: "zero", Description: "Predicts zero sales."},
		{Name: "naive", Description: "Repeats the last observed day."},
		{
			Name:        "seasonal_naive",
			Description: "Repeats the last full season.",
			Parameters: []ParameterInfo{
				{Name: "period", Type: "int", Description: "Season length in days", Default: 7},
			},
		},
		{
			Name:        "moving_average",
			Description: "Mean of the last window days.",
			Parameters: []ParameterInfo{
				{Name: "window", Type: "int", Description: "Days averaged", Default: 28},
			},
		},
		{
			Name:        "weekly_profile",
			Description: "Recent level scaled by day-of-week factors.",
			Parameters: []ParameterInfo{
				{Name: "window", Type: "int", Description: "Days used for the level", Default: 28},
				{Name: "weeks", Type: "int", Description: "Weeks used for the day-of-week factors", Default: 8},
			},
		},
		{
			Name:        "ses",
			Description: "Simple exponential smoothing from the first sale.",
			Parameters: []ParameterInfo{
				{Name: "alpha", Type: "float", Description: "Smoothing factor in (0, 1]", Default: 0.1},
			},
		},
		{
			Name:        "croston",
			Description: "Intermittent-demand model: smoothed size over smoothed interval.",
			Parameters: []ParameterInfo{
				{Name: "alpha", Type: "float", Description: "Smoothing factor for size and interval", Default: 0.1},
				{Name: "beta", Type: "float", Description: "Probability smoothing factor (tsb only)", Default: 0.1},
				{Name: "variant", Type: "string", Description: "classic, sba or tsb", Default: "classic"},
			},
		},
		{
			Name:        "regression",
			Description: "Per-series ridge regression on lag, rolling, calendar and price features, forecast recursively.",
			Parameters: []ParameterInfo{
				{Name: "lambda", Type: "float", Description: "L2 penalty", Default: 1.0},
				{Name: "train_days", Type: "int", Description: "Most recent days used for fitting (0 = all)", Default: 365},
			},
		},
		{
			Name:        "auto",
			Description: "Chooses a model per series from its demand class (smooth, erratic, intermittent, lumpy).",
			Parameters: []ParameterInfo{
				{Name: "alpha", Type: "float", Description: "Croston smoothing factor", Default: 0.1},
				{Name: "beta", Type: "float", Description: "TSB probability smoothing factor", Default: 0.1},
				{Name: "window", Type: "int", Description: "Level window for smooth/erratic series", Default: 28},
			},
		},
		{
			Name:        "ensemble",
			Description: "Mean of member models built with default params.",
			Parameters: []ParameterInfo{
				{Name: "members", Type: "list", Description: "Model names", Default: []string{"weekly_profile", "croston", "moving_average"}},
			},
		},
	}
}

// Names lists the model names.
func Names() []string {
	infos := Describe()
	out := make([]string, len(infos))
	for i, in := range infos {
		out[i] = in.Name
	}
	return out
}
