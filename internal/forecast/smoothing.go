package forecast

import (
	"fmt"
)

// SES is simple exponential smoothing over the active history.
type SES struct {
	Alpha float64
}

func (s SES) Name() string { return "ses" }

func (s SES) Forecast(ctx Context, h int) ([]float64, error) {
	a := active(ctx.History)
	if len(a) == 0 {
		return make([]float64, h), nil
	}
	level := a[0]
	for _, y := range a[1:] {
		level = s.Alpha*y + (1-s.Alpha)*level
	}
	return constant(level, h), nil
}

// CrostonVariant selects the intermittent-demand estimator.
type CrostonVariant string

const (
	CrostonClassic CrostonVariant = "classic"
	// CrostonSBA applies the Syntetos-Boylan bias correction (1 - alpha/2).
	CrostonSBA CrostonVariant = "sba"
	// CrostonTSB smooths demand probability every period instead of the interval.
	CrostonTSB CrostonVariant = "tsb"
)

func ParseCrostonVariant(s string) (CrostonVariant, error) {
	switch v := CrostonVariant(s); v {
	case CrostonClassic, CrostonSBA, CrostonTSB:
		return v, nil
	default:
		return "", fmt.Errorf("unknown croston variant %q", s)
	}
}

// Croston forecasts intermittent demand as smoothed size over smoothed interval
// (or size x probability for TSB). Beta is only used by TSB.
type Croston struct {
	Alpha   float64
	Beta    float64
	Variant CrostonVariant
}

func (c Croston) Name() string {
	if c.Variant == "" || c.Variant == CrostonClassic {
		return "croston"
	}
	return "croston_" + string(c.Variant)
}

func (c Croston) Forecast(ctx Context, h int) ([]float64, error) {
	a := active(ctx.History)
	if len(a) == 0 {
		return make([]float64, h), nil
	}
	if c.Variant == CrostonTSB {
		return constant(c.tsb(a), h), nil
	}

	// a[0] is the first sale, so the first interval is 1.
	size := a[0]
	interval := 1.0
	since := 0
	for _, y := range a[1:] {
		since++
		if y == 0 {
			continue
		}
		size += c.Alpha * (y - size)
		interval += c.Alpha * (float64(since) - interval)
		since = 0
	}
	f := size / interval
	if c.Variant == CrostonSBA {
		f *= 1 - c.Alpha/2
	}
	return constant(f, h), nil
}

func (c Croston) tsb(a []float64) float64 {
	size := a[0]
	prob := 1.0
	for _, y := range a[1:] {
		if y > 0 {
			prob += c.Beta * (1 - prob)
			size += c.Alpha * (y - size)
		} else {
			prob -= c.Beta * prob
		}
	}
	return prob * size
}
