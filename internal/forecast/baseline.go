package forecast

// Zero always predicts no sales.
type Zero struct{}

func (Zero) Name() string { return "zero" }

func (Zero) Forecast(_ Context, h int) ([]float64, error) {
	return make([]float64, h), nil
}

// Naive repeats the last observation.
type Naive struct{}

func (Naive) Name() string { return "naive" }

func (Naive) Forecast(ctx Context, h int) ([]float64, error) {
	if len(ctx.History) == 0 {
		return make([]float64, h), nil
	}
	return constant(ctx.History[len(ctx.History)-1], h), nil
}

// SeasonalNaive repeats the last full season.
type SeasonalNaive struct {
	Period int
}

func (s SeasonalNaive) Name() string { return "seasonal_naive" }

func (s SeasonalNaive) Forecast(ctx Context, h int) ([]float64, error) {
	n := len(ctx.History)
	if n < s.Period {
		return Naive{}.Forecast(ctx, h)
	}
	season := ctx.History[n-s.Period:]
	out := make([]float64, h)
	for k := range out {
		out[k] = season[k%s.Period]
	}
	return out, nil
}

// MovingAverage predicts the mean of the last Window days.
type MovingAverage struct {
	Window int
}

func (m MovingAverage) Name() string { return "moving_average" }

func (m MovingAverage) Forecast(ctx Context, h int) ([]float64, error) {
	return constant(mean(tail(ctx.History, m.Window)), h), nil
}

// WeeklyProfile scales a recent level by day-of-week factors estimated over the last Weeks weeks.
// Weekdays are taken from position modulo 7, so no calendar is needed.
type WeeklyProfile struct {
	Window int
	Weeks  int
}

func (w WeeklyProfile) Name() string { return "weekly_profile" }

func (w WeeklyProfile) Forecast(ctx Context, h int) ([]float64, error) {
	n := len(ctx.History)
	level := mean(tail(ctx.History, w.Window))
	if n == 0 || level == 0 {
		return constant(level, h), nil
	}

	span := w.Weeks * 7
	if span > n {
		span = n - n%7
	}
	factors := [7]float64{1, 1, 1, 1, 1, 1, 1}
	if span >= 7 {
		var sums [7]float64
		var counts [7]int
		total := 0.0
		for t := n - span; t < n; t++ {
			sums[t%7] += ctx.History[t]
			counts[t%7]++
			total += ctx.History[t]
		}
		overall := total / float64(span)
		if overall > 0 {
			for d := 0; d < 7; d++ {
				if counts[d] > 0 {
					factors[d] = (sums[d] / float64(counts[d])) / overall
				}
			}
		}
	}

	out := make([]float64, h)
	for k := range out {
		out[k] = level * factors[(n+k)%7]
	}
	return out, nil
}
