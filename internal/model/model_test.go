package model

import (
	"testing"
	"time"
)

func TestDayLabelRoundTrip(t *testing.T) {
	for _, n := range []int{1, 28, 1913, 1969} {
		got, err := ParseDayLabel(DayLabel(n))
		if err != nil {
			t.Fatalf("ParseDayLabel(%q): %v", DayLabel(n), err)
		}
		if got != n {
			t.Errorf("ParseDayLabel(DayLabel(%d)) = %d", n, got)
		}
	}
}

func TestParseDayLabelRejects(t *testing.T) {
	for _, label := range []string{"", "d_", "d_0", "d_-3", "day_1", "1", "d_x"} {
		if _, err := ParseDayLabel(label); err == nil {
			t.Errorf("ParseDayLabel(%q) succeeded, want error", label)
		}
	}
}

func TestCalendarDayDerive(t *testing.T) {
	tests := []struct {
		date      string
		dayOfWeek int
		quarter   int
		weekend   bool
	}{
		{"2011-01-29", 5, 1, true},  // Saturday
		{"2011-01-30", 6, 1, true},  // Sunday
		{"2011-01-31", 0, 1, false}, // Monday
		{"2016-05-22", 6, 2, true},
		{"2015-10-02", 4, 4, false},
	}
	for _, tt := range tests {
		d, err := time.Parse(DateLayout, tt.date)
		if err != nil {
			t.Fatal(err)
		}
		c := CalendarDay{Date: d}
		c.Derive()
		if c.DayOfWeek != tt.dayOfWeek || c.Quarter != tt.quarter || c.IsWeekend != tt.weekend {
			t.Errorf("%s: got dow=%d q=%d weekend=%v, want dow=%d q=%d weekend=%v",
				tt.date, c.DayOfWeek, c.Quarter, c.IsWeekend, tt.dayOfWeek, tt.quarter, tt.weekend)
		}
		if c.Day != d.Day() {
			t.Errorf("%s: Day = %d, want %d", tt.date, c.Day, d.Day())
		}
	}
}

func TestCalendarByIndex(t *testing.T) {
	cal := NewCalendar([]CalendarDay{
		{D: "d_1", DayIndex: 1, SnapCA: true},
		{D: "d_2", DayIndex: 2, SnapTX: true, Events: []Event{{Name: "SuperBowl", Type: "Sporting"}}},
	})
	d, ok := cal.ByIndex(2)
	if !ok {
		t.Fatal("d_2 not found")
	}
	if !d.HasEvent() || !d.Snap("tx") || d.Snap("CA") {
		t.Errorf("unexpected flags for d_2: %+v", d)
	}
	if _, ok := cal.ByIndex(3); ok {
		t.Error("ByIndex(3) found a day in a 2-day calendar")
	}
	if cal.LastDay() != 2 {
		t.Errorf("LastDay = %d, want 2", cal.LastDay())
	}

	var nilCal *Calendar
	if _, ok := nilCal.ByIndex(1); ok {
		t.Error("nil calendar returned a day")
	}
}

func TestSalesSeriesHistoryAndWindow(t *testing.T) {
	s := SalesSeries{ItemID: "FOODS_1_001", StoreID: "CA_1", Sales: []float64{0, 0, 3, 1, 0, 2}}
	if s.Key() != "FOODS_1_001_CA_1" {
		t.Errorf("Key = %q", s.Key())
	}
	if s.FirstSaleDay() != 3 {
		t.Errorf("FirstSaleDay = %d, want 3", s.FirstSaleDay())
	}
	if got := s.History(4); len(got) != 3 || got[2] != 3 {
		t.Errorf("History(4) = %v, want first 3 days", got)
	}
	if got := s.History(100); len(got) != 6 {
		t.Errorf("History past the end = %d days, want 6", len(got))
	}
	if got := s.History(0); len(got) != 0 {
		t.Errorf("History(0) = %v, want empty", got)
	}
	if got := s.Window(4, 5); len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("Window(4, 5) = %v", got)
	}
	if got := s.Window(5, 2); got != nil {
		t.Errorf("Window(5, 2) = %v, want nil", got)
	}
	if (SalesSeries{Sales: []float64{0, 0}}).FirstSaleDay() != 0 {
		t.Error("FirstSaleDay of an all-zero series should be 0")
	}
}

func TestHorizonsAreContiguous(t *testing.T) {
	if ValidationHorizon.Days() != HorizonDays || EvaluationHorizon.Days() != HorizonDays {
		t.Fatalf("horizon lengths %d and %d, want %d", ValidationHorizon.Days(), EvaluationHorizon.Days(), HorizonDays)
	}
	if EvaluationHorizon.FirstDay != ValidationHorizon.LastDay+1 {
		t.Errorf("evaluation starts at %d, want %d", EvaluationHorizon.FirstDay, ValidationHorizon.LastDay+1)
	}
	if h := HorizonAfter("validation", 1913); h != ValidationHorizon {
		t.Errorf("HorizonAfter(1913) = %+v, want %+v", h, ValidationHorizon)
	}
	if id := SubmissionID("HOBBIES_1_001_CA_1", EvaluationHorizon); id != "HOBBIES_1_001_CA_1_evaluation" {
		t.Errorf("SubmissionID = %q", id)
	}
}

func TestPrices(t *testing.T) {
	p := NewPrices([]PriceRecord{
		{StoreID: "CA_1", ItemID: "A", WmYrWk: 11101, SellPrice: 2.5},
		{StoreID: "CA_1", ItemID: "A", WmYrWk: 11102, SellPrice: 3.0},
		{StoreID: "CA_1", ItemID: "A", WmYrWk: 11102, SellPrice: 2.0},
	})
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
	if v, ok := p.Lookup("CA_1", "A", 11102); !ok || v != 2.0 {
		t.Errorf("Lookup = %v, %v; want 2.0 (replaced)", v, ok)
	}
	if _, ok := p.Lookup("TX_1", "A", 11102); ok {
		t.Error("found a price for an unknown store")
	}
	if p.Max("CA_1", "A") != 3.0 {
		t.Errorf("Max = %v, want 3.0", p.Max("CA_1", "A"))
	}
	var nilPrices *Prices
	if _, ok := nilPrices.Lookup("CA_1", "A", 11101); ok || nilPrices.Len() != 0 {
		t.Error("nil prices should be empty")
	}
}

func TestAggregationLevelGroup(t *testing.T) {
	series := []SalesSeries{
		{ItemID: "A", DeptID: "FOODS_1", CatID: "FOODS", StoreID: "CA_1", StateID: "CA"},
		{ItemID: "B", DeptID: "FOODS_1", CatID: "FOODS", StoreID: "TX_1", StateID: "TX"},
		{ItemID: "A", DeptID: "FOODS_1", CatID: "FOODS", StoreID: "TX_1", StateID: "TX"},
	}
	wantGroups := map[int]int{1: 1, 2: 2, 3: 2, 4: 1, 5: 1, 10: 2, 11: 3, 12: 3}
	for id, want := range wantGroups {
		lvl, err := Level(id)
		if err != nil {
			t.Fatal(err)
		}
		keys, members := lvl.Group(series)
		if len(keys) != want || len(members) != want {
			t.Errorf("level %d (%s): %d groups, want %d", id, lvl.Name, len(keys), want)
		}
	}
	lvl, _ := Level(10)
	keys, members := lvl.Group(series)
	if keys[0] != "A" || len(members[0]) != 2 || members[0][1] != 2 {
		t.Errorf("item grouping = %v %v", keys, members)
	}
	if _, err := Level(13); err == nil {
		t.Error("Level(13) succeeded")
	}
	if len(AggregationLevels) != 12 {
		t.Errorf("%d aggregation levels, want 12", len(AggregationLevels))
	}
}

func TestSumRows(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {10, 20}, {100, 200, 300}}
	got := SumRows(rows, []int{0, 1})
	want := []float64{11, 22, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SumRows = %v, want %v", got, want)
		}
	}
}
