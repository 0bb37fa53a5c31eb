package forecast

import (
	"math"
	"strings"
	"testing"

	"m5-forecast/internal/model"
)

func ctxOf(history ...float64) Context {
	return Context{
		Series:   model.SalesSeries{ID: "X_CA_1_validation", ItemID: "X", StoreID: "CA_1", StateID: "CA", Sales: history},
		History:  history,
		FirstDay: len(history) + 1,
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func allEqual(t *testing.T, name string, got []float64, want float64) {
	t.Helper()
	for i, v := range got {
		if !near(v, want) {
			t.Fatalf("%s[%d] = %v, want %v", name, i, v, want)
		}
	}
}

func TestBaselines(t *testing.T) {
	ctx := ctxOf(1, 2, 3, 4, 5, 6, 7, 8)

	got, _ := Zero{}.Forecast(ctx, 3)
	allEqual(t, "zero", got, 0)

	got, _ = Naive{}.Forecast(ctx, 3)
	allEqual(t, "naive", got, 8)

	got, _ = MovingAverage{Window: 4}.Forecast(ctx, 3)
	allEqual(t, "moving_average", got, 6.5)

	got, _ = SeasonalNaive{Period: 7}.Forecast(ctx, 9)
	want := []float64{2, 3, 4, 5, 6, 7, 8, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("seasonal_naive = %v, want %v", got, want)
		}
	}

	got, _ = SeasonalNaive{Period: 7}.Forecast(ctxOf(4, 5), 2)
	allEqual(t, "seasonal_naive short history", got, 5)
}

func TestEmptyHistoryGivesZeros(t *testing.T) {
	models := []Forecaster{
		Naive{}, SeasonalNaive{Period: 7}, MovingAverage{Window: 7}, WeeklyProfile{Window: 28, Weeks: 4},
		SES{Alpha: 0.1}, Croston{Alpha: 0.1}, Croston{Alpha: 0.1, Beta: 0.1, Variant: CrostonTSB},
		NewAuto(0.1, 0.1, 28),
	}
	for _, m := range models {
		got, err := m.Forecast(ctxOf(), 5)
		if err != nil {
			t.Fatalf("%s: %v", m.Name(), err)
		}
		if len(got) != 5 {
			t.Fatalf("%s returned %d values", m.Name(), len(got))
		}
		allEqual(t, m.Name(), got, 0)
	}
}

func TestWeeklyProfileFollowsWeekday(t *testing.T) {
	// Two identical weeks: one day of the week sells 8, the others 1.
	week := []float64{1, 1, 1, 8, 1, 1, 1}
	history := append(append([]float64{}, week...), week...)
	got, err := WeeklyProfile{Window: 14, Weeks: 2}.Forecast(ctxOf(history...), 7)
	if err != nil {
		t.Fatal(err)
	}
	// The level is the 14-day mean (2), so the forecast reproduces the week.
	for i, w := range week {
		if !near(got[i], w) {
			t.Fatalf("weekly_profile = %v, want %v", got, week)
		}
	}
}

func TestSES(t *testing.T) {
	got, _ := SES{Alpha: 0.5}.Forecast(ctxOf(0, 0, 4, 2), 2)
	// Starts at the first sale: 4, then 0.5*2 + 0.5*4.
	allEqual(t, "ses", got, 3)
}

func TestCrostonVariants(t *testing.T) {
	// Active history 2,0,0,2,0,4: sizes 2,2,4 at intervals 1,3,2.
	history := []float64{0, 2, 0, 0, 2, 0, 4}
	alpha := 0.5

	size, interval := 2.0, 1.0
	size += alpha * (2 - size)
	interval += alpha * (3 - interval)
	size += alpha * (4 - size)
	interval += alpha * (2 - interval)
	classic := size / interval

	got, _ := Croston{Alpha: alpha}.Forecast(ctxOf(history...), 2)
	allEqual(t, "croston", got, classic)

	got, _ = Croston{Alpha: alpha, Variant: CrostonSBA}.Forecast(ctxOf(history...), 2)
	allEqual(t, "croston_sba", got, classic*(1-alpha/2))

	beta := 0.5
	p, z := 1.0, 2.0
	for _, y := range []float64{0, 0, 2, 0, 4} {
		if y > 0 {
			p += beta * (1 - p)
			z += alpha * (y - z)
		} else {
			p -= beta * p
		}
	}
	got, _ = Croston{Alpha: alpha, Beta: beta, Variant: CrostonTSB}.Forecast(ctxOf(history...), 2)
	allEqual(t, "croston_tsb", got, p*z)

	if (Croston{Variant: CrostonSBA}).Name() != "croston_sba" || (Croston{}).Name() != "croston" {
		t.Error("unexpected croston names")
	}
	if _, err := ParseCrostonVariant("ets"); err == nil {
		t.Error("unknown variant accepted")
	}
}

func TestAutoPicksByDemandClass(t *testing.T) {
	a := NewAuto(0.1, 0.1, 7)

	smooth := []float64{5, 6, 5, 4, 5, 6, 5, 5, 6, 5, 4, 5, 6, 5}
	got, _ := a.Forecast(ctxOf(smooth...), 7)
	want, _ := WeeklyProfile{Window: 7, Weeks: 8}.Forecast(ctxOf(smooth...), 7)
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("auto on smooth demand = %v, want weekly profile %v", got, want)
		}
	}

	intermittent := []float64{3, 0, 0, 3, 0, 0, 4, 0, 0, 3}
	got, _ = a.Forecast(ctxOf(intermittent...), 3)
	want, _ = Croston{Alpha: 0.1, Variant: CrostonSBA}.Forecast(ctxOf(intermittent...), 3)
	allEqual(t, "auto intermittent", got, want[0])
}

func TestEnsembleAveragesMembers(t *testing.T) {
	e := &Ensemble{Members: []Forecaster{Zero{}, Naive{}}}
	got, err := e.Forecast(ctxOf(1, 4), 3)
	if err != nil {
		t.Fatal(err)
	}
	allEqual(t, "ensemble", got, 2)

	if _, err := (&Ensemble{}).Forecast(ctxOf(1), 1); err == nil {
		t.Error("empty ensemble succeeded")
	}
}

func TestRegressionLearnsTrend(t *testing.T) {
	history := make([]float64, 200)
	for i := range history {
		history[i] = 10 + float64(i%7)
	}
	r := Regression{
		Lambda:    0.01,
		TrainDays: 0,
		Lags:      []int{7},
		Fallback:  Zero{},
	}
	got, err := r.Forecast(ctxOf(history...), 14)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range got {
		want := 10 + float64((200+k)%7)
		if math.Abs(v-want) > 0.1 {
			t.Fatalf("step %d = %v, want about %v (all: %v)", k, v, want, got)
		}
	}
}

func TestRegressionFallsBackOnShortHistory(t *testing.T) {
	r := Regression{Lambda: 1, Lags: []int{1, 7, 28}, Windows: []int{28}, Fallback: Naive{}}
	got, err := r.Forecast(ctxOf(1, 2, 3), 4)
	if err != nil {
		t.Fatal(err)
	}
	allEqual(t, "regression fallback", got, 3)
}

func TestNewZeroOptionsUsesDefaultFeatures(t *testing.T) {
	f, err := New("regression", nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := f.(Regression)
	if len(r.Lags) != 7 || len(r.Windows) != 3 || len(r.Stats) != 4 {
		t.Errorf("regression features = %v %v %v, want the defaults", r.Lags, r.Windows, r.Stats)
	}
}

func TestNewValidatesParams(t *testing.T) {
	opts := defaultOptions()
	for _, name := range Names() {
		f, err := New(name, nil, opts)
		if err != nil {
			t.Errorf("New(%q) with defaults: %v", name, err)
			continue
		}
		if !strings.HasPrefix(f.Name(), name) {
			t.Errorf("New(%q).Name() = %q", name, f.Name())
		}
	}

	bad := []struct {
		name   string
		params map[string]any
	}{
		{"moving_average", map[string]any{"window": 0}},
		{"ses", map[string]any{"alpha": 1.5}},
		{"croston", map[string]any{"variant": "holt"}},
		{"croston", map[string]any{"beta": 0.0}},
		{"regression", map[string]any{"lambda": -1}},
		{"ensemble", map[string]any{"members": []any{"naive", "ensemble"}}},
		{"ensemble", map[string]any{"members": []any{"naive", "prophet"}}},
		{"arima", nil},
	}
	for _, tt := range bad {
		if _, err := New(tt.name, tt.params, opts); err == nil {
			t.Errorf("New(%q, %v) succeeded, want error", tt.name, tt.params)
		}
	}

	f, err := New("Croston", map[string]any{"alpha": 0.2, "variant": "tsb"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := f.(Croston); !ok || c.Variant != CrostonTSB || c.Alpha != 0.2 {
		t.Errorf("New(croston) = %#v", f)
	}

	e, err := New("ensemble", map[string]any{"members": "naive, zero"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(e.(*Ensemble).Members); n != 2 {
		t.Errorf("ensemble members = %d, want 2", n)
	}
}

func TestDescribeCoversNames(t *testing.T) {
	if len(Describe()) != len(Names()) {
		t.Fatal("Describe and Names disagree")
	}
	for _, in := range Describe() {
		if in.Description == "" {
			t.Errorf("%s has no description", in.Name)
		}
	}
}
