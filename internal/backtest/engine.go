package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"m5-forecast/internal/forecast"
	"m5-forecast/internal/model"
)

// Env is the shared, read-only data every forecast may consult.
type Env struct {
	Calendar *model.Calendar
	Prices   *model.Prices
}

type Engine struct {
	Workers int
}

// New returns an engine with the given worker count (<= 0 means GOMAXPROCS).
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{Workers: workers}
}

type job struct {
	index int
}

type outcome struct {
	index  int
	values []float64
	err    error
}

// Run forecasts every series over horizon h. Each model only sees days before
// h.FirstDay. Rows come back in input order; forecasts are clipped to be
// finite and non-negative.
func (e *Engine) Run(ctx context.Context, series []model.SalesSeries, env Env, f forecast.Forecaster, h model.Horizon) (*Result, error) {
	if f == nil {
		return nil, errors.New("forecaster is nil")
	}
	if len(series) == 0 {
		return nil, errors.New("no series")
	}
	if h.Days() <= 0 {
		return nil, fmt.Errorf("horizon %s is empty", h.Name)
	}
	for _, s := range series {
		if s.LastDay() < h.FirstDay-1 {
			return nil, fmt.Errorf("series %s ends at day %d, horizon %s needs history through day %d",
				s.ID, s.LastDay(), h.Name, h.FirstDay-1)
		}
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(series) {
		workers = len(series)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, workers)
	done := make(chan outcome, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				s := series[j.index]
				values, err := f.Forecast(forecast.Context{
					Series:   s,
					History:  s.History(h.FirstDay),
					FirstDay: h.FirstDay,
					Calendar: env.Calendar,
					Prices:   env.Prices,
				}, h.Days())
				if err == nil && len(values) != h.Days() {
					err = fmt.Errorf("%s returned %d values, want %d", f.Name(), len(values), h.Days())
				}
				if err != nil {
					err = fmt.Errorf("series %s: %w", s.ID, err)
				}
				select {
				case done <- outcome{index: j.index, values: values, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range series {
			select {
			case jobs <- job{index: i}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	rows := make([]ForecastRow, len(series))
	received := 0
	var firstErr error
	for o := range done {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
				cancel()
			}
			continue
		}
		s := series[o.index]
		rows[o.index] = ForecastRow{
			Index:    o.index,
			ID:       s.ID,
			Key:      s.Key(),
			Horizon:  h.Name,
			FirstDay: h.FirstDay,
			Values:   clip(o.values),
		}
		received++
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && received < len(series) {
		return nil, err
	}

	slog.Debug("forecast run finished", "model", f.Name(), "horizon", h.Name, "series", len(rows), "workers", workers)
	return &Result{Model: f.Name(), Horizon: h, Rows: rows}, nil
}

func clip(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v > 0 && !math.IsInf(v, 1) {
			out[i] = v
		}
	}
	return out
}
