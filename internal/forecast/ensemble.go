package forecast

import (
	"errors"
	"fmt"
)

// Ensemble averages the forecasts of its members.
type Ensemble struct {
	Members []Forecaster
}

func (e *Ensemble) Name() string { return "ensemble" }

func (e *Ensemble) Forecast(ctx Context, h int) ([]float64, error) {
	if len(e.Members) == 0 {
		return nil, errors.New("ensemble has no members")
	}
	out := make([]float64, h)
	for _, m := range e.Members {
		f, err := m.Forecast(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("ensemble member %s: %w", m.Name(), err)
		}
		for i := range out {
			out[i] += f[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(e.Members))
	}
	return out, nil
}
