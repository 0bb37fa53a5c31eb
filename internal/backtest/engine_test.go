package backtest

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"m5-forecast/internal/data"
	"m5-forecast/internal/forecast"
	"m5-forecast/internal/model"
)

func makeSeries(n int, days int) []model.SalesSeries {
	out := make([]model.SalesSeries, n)
	for i := range out {
		sales := make([]float64, days)
		for d := range sales {
			sales[d] = float64(i + d%7)
		}
		item := "FOODS_1_00" + string(rune('1'+i))
		out[i] = model.SalesSeries{
			ID:      model.SubmissionID(model.SeriesKey(item, "CA_1"), model.ValidationHorizon),
			ItemID:  item,
			DeptID:  "FOODS_1",
			CatID:   "FOODS",
			StoreID: "CA_1",
			StateID: "CA",
			Sales:   sales,
		}
	}
	return out
}

// fixed returns the same values for every series and records the history lengths it saw.
type fixed struct {
	values  []float64
	maxSeen atomic.Int64
}

func (f *fixed) Name() string { return "fixed" }

func (f *fixed) Forecast(ctx forecast.Context, h int) ([]float64, error) {
	if n := int64(len(ctx.History)); n > f.maxSeen.Load() {
		f.maxSeen.Store(n)
	}
	out := make([]float64, h)
	copy(out, f.values)
	return out, nil
}

type failing struct{ id string }

func (f failing) Name() string { return "failing" }

func (f failing) Forecast(ctx forecast.Context, h int) ([]float64, error) {
	if ctx.Series.ID == f.id {
		return nil, errors.New("boom")
	}
	return make([]float64, h), nil
}

type short struct{}

func (short) Name() string { return "short" }

func (short) Forecast(_ forecast.Context, h int) ([]float64, error) {
	return make([]float64, h-1), nil
}

func TestRunKeepsInputOrder(t *testing.T) {
	series := makeSeries(9, 60)
	h := model.HorizonAfter("validation", 60)
	res, err := New(4).Run(context.Background(), series, Env{}, forecast.Naive{}, h)
	if err != nil {
		t.Fatal(err)
	}
	if res.Model != "naive" || len(res.Rows) != len(series) {
		t.Fatalf("result = %s with %d rows", res.Model, len(res.Rows))
	}
	for i, row := range res.Rows {
		if row.ID != series[i].ID || row.Index != i {
			t.Fatalf("row %d = %s, want %s", i, row.ID, series[i].ID)
		}
		if len(row.Values) != model.HorizonDays {
			t.Fatalf("row %d has %d values", i, len(row.Values))
		}
		if want := series[i].Sales[59]; row.Values[0] != want {
			t.Errorf("row %d first value = %v, want %v", i, row.Values[0], want)
		}
	}

	sub := res.Submission()
	if sub[0].ID != series[0].ID {
		t.Errorf("submission id = %q, want %q", sub[0].ID, series[0].ID)
	}
}

func TestRunHidesFutureDays(t *testing.T) {
	series := makeSeries(3, 100)
	f := &fixed{}
	h := model.Horizon{Name: "past", Suffix: "past", FirstDay: 51, LastDay: 60}
	if _, err := New(2).Run(context.Background(), series, Env{}, f, h); err != nil {
		t.Fatal(err)
	}
	if got := f.maxSeen.Load(); got != 50 {
		t.Errorf("model saw %d days of history, want 50", got)
	}
}

func TestRunClipsForecasts(t *testing.T) {
	f := &fixed{values: []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1), 2.5}}
	h := model.Horizon{Name: "h", Suffix: "h", FirstDay: 11, LastDay: 15}
	res, err := New(1).Run(context.Background(), makeSeries(1, 10), Env{}, f, h)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 0, 0, 2.5}
	for i, v := range res.Rows[0].Values {
		if v != want[i] {
			t.Fatalf("clipped = %v, want %v", res.Rows[0].Values, want)
		}
	}
}

func TestRunErrors(t *testing.T) {
	series := makeSeries(5, 30)
	h := model.HorizonAfter("validation", 30)
	e := New(3)

	tests := []struct {
		name string
		f    forecast.Forecaster
		s    []model.SalesSeries
		h    model.Horizon
		want string
	}{
		{"nil model", nil, series, h, "nil"},
		{"no series", forecast.Zero{}, nil, h, "no series"},
		{"empty horizon", forecast.Zero{}, series, model.Horizon{Name: "empty", FirstDay: 31, LastDay: 30}, "empty"},
		{"history too short", forecast.Zero{}, series, model.HorizonAfter("late", 40), "needs history"},
		{"model error", failing{id: series[3].ID}, series, h, "boom"},
		{"wrong length", short{}, series, h, "returned 27 values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Run(context.Background(), tt.s, Env{}, tt.f, tt.h)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(2).Run(ctx, makeSeries(50, 30), Env{}, forecast.Zero{}, model.HorizonAfter("validation", 30))
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestFolds(t *testing.T) {
	folds, err := Folds(100, 3, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []Fold{
		{Index: 0, TrainEnd: 68, TestStart: 71, TestEnd: 80},
		{Index: 1, TrainEnd: 78, TestStart: 81, TestEnd: 90},
		{Index: 2, TrainEnd: 88, TestStart: 91, TestEnd: 100},
	}
	for i := range want {
		if folds[i] != want[i] {
			t.Errorf("fold %d = %+v, want %+v", i, folds[i], want[i])
		}
	}

	for _, bad := range [][4]int{{100, 0, 0, 10}, {100, 1, -1, 10}, {100, 1, 0, 0}, {30, 3, 0, 10}} {
		if _, err := Folds(bad[0], bad[1], bad[2], bad[3]); err == nil {
			t.Errorf("Folds%v succeeded, want error", bad)
		}
	}
}

func TestCrossValidate(t *testing.T) {
	ds := data.Synthetic(data.SyntheticOptions{Seed: 3, EvaluationDays: 140})
	env := Env{Calendar: ds.Calendar, Prices: model.NewPrices(ds.Prices)}
	opts := CVOptions{
		Splits:  2,
		Gap:     7,
		Horizon: 28,
		Metrics: []string{"mae", "rmse", "rmsse", "wrmsse"},
		Ledger:  true,
	}
	res, err := New(4).CrossValidate(context.Background(), ds.Validation, env, forecast.MovingAverage{Window: 28}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Folds) != 2 {
		t.Fatalf("got %d folds, want 2", len(res.Folds))
	}
	last := res.Folds[1]
	if last.TestEnd != 112 || last.TrainEnd != 112-28-7 {
		t.Errorf("last fold = %+v", last.Fold)
	}
	for _, m := range []string{"mae", "rmse", "wrmsse"} {
		v, ok := res.Scores[m]
		if !ok || math.IsNaN(v) || v < 0 {
			t.Errorf("score %s = %v (present %v)", m, v, ok)
		}
	}
	if res.Folds[0].WRMSSE == nil {
		t.Error("fold WRMSSE breakdown missing")
	}
	if want := 2 * len(ds.Validation) * 28; len(res.Ledger) != want {
		t.Errorf("ledger has %d rows, want %d", len(res.Ledger), want)
	}
	if s := res.Score(); s.Model != "moving_average" || s.Scores["mae"] != res.Scores["mae"] {
		t.Errorf("Score() = %+v", s)
	}

	// Without prices the weighted score is not computed.
	res, err = New(1).CrossValidate(context.Background(), ds.Validation, Env{}, forecast.Zero{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Scores["wrmsse"]; ok {
		t.Error("wrmsse computed without prices")
	}
}

func TestCrossValidateRejectsRaggedSeries(t *testing.T) {
	series := append(makeSeries(2, 100), makeSeries(1, 90)...)
	_, err := New(1).CrossValidate(context.Background(), series, Env{}, forecast.Zero{}, CVOptions{Splits: 1, Horizon: 10})
	if err == nil {
		t.Fatal("ragged series accepted")
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ledger.csv")
	ledger := []LedgerRow{
		{Fold: 0, SeriesID: "A_CA_1_validation", Day: 1900, Actual: 2, Forecast: 1.5},
		{Fold: 1, SeriesID: "A_CA_1_validation", Day: 1913, Actual: 0, Forecast: 0.25},
	}
	if err := WriteLedgerCSV(path, ledger); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "fold,id,d,actual,forecast,error\n" +
		"0,A_CA_1_validation,d_1900,2.000000,1.500000,-0.500000\n" +
		"1,A_CA_1_validation,d_1913,0.000000,0.250000,0.250000\n"
	if string(raw) != want {
		t.Errorf("ledger =\n%s\nwant\n%s", raw, want)
	}
}
