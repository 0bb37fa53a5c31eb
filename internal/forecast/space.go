package forecast

import (
	"math"
	"strings"

	"golang.org/x/exp/rand"
)

// Param is one tunable model parameter. A parameter with Values is
// categorical; otherwise it is drawn from [Min, Max], uniformly or on a log
// scale, and rounded when Int is set.
type Param struct {
	Name   string
	Min    float64
	Max    float64
	Int    bool
	Log    bool
	Values []any
}

// Sample draws one value for p.
func (p Param) Sample(rng *rand.Rand) any {
	if len(p.Values) > 0 {
		return p.Values[rng.Intn(len(p.Values))]
	}
	var v float64
	if p.Log {
		lo, hi := math.Log(p.Min), math.Log(p.Max)
		v = math.Exp(lo + rng.Float64()*(hi-lo))
	} else {
		v = p.Min + rng.Float64()*(p.Max-p.Min)
	}
	if p.Int {
		return int(math.Round(v))
	}
	return v
}

// SearchSpace returns the tunable parameters of a model. Models without
// parameters, and unknown names, return nil.
func SearchSpace(name string) []Param {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "seasonal_naive":
		return []Param{{Name: "period", Values: []any{7, 14, 28}}}
	case "moving_average":
		return []Param{{Name: "window", Min: 7, Max: 56, Int: true}}
	case "weekly_profile":
		return []Param{
			{Name: "window", Min: 7, Max: 56, Int: true},
			{Name: "weeks", Min: 2, Max: 12, Int: true},
		}
	case "ses":
		return []Param{{Name: "alpha", Min: 0.01, Max: 0.5}}
	case "croston":
		return []Param{
			{Name: "alpha", Min: 0.01, Max: 0.5},
			{Name: "beta", Min: 0.01, Max: 0.5},
			{Name: "variant", Values: []any{string(CrostonClassic), string(CrostonSBA), string(CrostonTSB)}},
		}
	case "regression":
		return []Param{
			{Name: "lambda", Min: 0.01, Max: 100, Log: true},
			{Name: "train_days", Min: 90, Max: 730, Int: true},
		}
	case "auto":
		return []Param{
			{Name: "alpha", Min: 0.01, Max: 0.5},
			{Name: "beta", Min: 0.01, Max: 0.5},
			{Name: "window", Min: 7, Max: 56, Int: true},
		}
	}
	return nil
}

// SampleParams draws one parameter set from space.
func SampleParams(space []Param, rng *rand.Rand) map[string]any {
	out := make(map[string]any, len(space))
	for _, p := range space {
		out[p.Name] = p.Sample(rng)
	}
	return out
}
