package forecast

import (
	"m5-forecast/internal/analysis"
)

// Auto picks a model per series from its demand class.
type Auto struct {
	ByClass map[analysis.DemandClass]Forecaster
	Default Forecaster
}

// NewAuto maps smooth to a weekly profile, erratic to a moving average,
// intermittent to Croston SBA and lumpy to Croston TSB.
func NewAuto(alpha, beta float64, window int) *Auto {
	return &Auto{
		ByClass: map[analysis.DemandClass]Forecaster{
			analysis.DemandSmooth:       WeeklyProfile{Window: window, Weeks: 8},
			analysis.DemandErratic:      MovingAverage{Window: window},
			analysis.DemandIntermittent: Croston{Alpha: alpha, Variant: CrostonSBA},
			analysis.DemandLumpy:        Croston{Alpha: alpha, Beta: beta, Variant: CrostonTSB},
			analysis.DemandInactive:     Zero{},
		},
		Default: MovingAverage{Window: window},
	}
}

func (a *Auto) Name() string { return "auto" }

func (a *Auto) Forecast(ctx Context, h int) ([]float64, error) {
	if f, ok := a.ByClass[analysis.ClassifyHistory(ctx.History)]; ok {
		return f.Forecast(ctx, h)
	}
	return a.Default.Forecast(ctx, h)
}
