package data

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"m5-forecast/internal/model"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticOptions controls the generated dataset.
type SyntheticOptions struct {
	Seed           int64
	StoresPerState int
	ItemsPerDept   int
	// EvaluationDays is the length of the evaluation sales table (validation is 28 days shorter).
	EvaluationDays int
}

// SyntheticDataset is a small, internally consistent stand-in for the competition files.
type SyntheticDataset struct {
	Calendar   *model.Calendar
	Validation []model.SalesSeries
	Evaluation []model.SalesSeries
	Prices     []model.PriceRecord
	Sample     []model.SubmissionRow
}

var (
	syntheticStart  = time.Date(2011, time.January, 29, 0, 0, 0, 0, time.UTC)
	syntheticStates = []string{"CA", "TX", "WI"}
	syntheticDepts  = []struct{ cat, dept string }{
		{"FOODS", "FOODS_1"},
		{"HOBBIES", "HOBBIES_1"},
		{"HOUSEHOLD", "HOUSEHOLD_1"},
	}
	// M5 wday numbering: Saturday=1 .. Friday=7.
	wdayOf = map[time.Weekday]int{
		time.Saturday: 1, time.Sunday: 2, time.Monday: 3, time.Tuesday: 4,
		time.Wednesday: 5, time.Thursday: 6, time.Friday: 7,
	}
)

// Synthetic generates a dataset whose layout matches the competition files.
// The calendar covers the evaluation horizon as well.
func Synthetic(opts SyntheticOptions) *SyntheticDataset {
	if opts.StoresPerState <= 0 {
		opts.StoresPerState = 1
	}
	if opts.ItemsPerDept <= 0 {
		opts.ItemsPerDept = 2
	}
	if opts.EvaluationDays <= 0 {
		opts.EvaluationDays = model.EvaluationHorizon.FirstDay - 1
	}
	rng := rand.New(rand.NewSource(uint64(opts.Seed)))

	calDays := opts.EvaluationDays + model.HorizonDays
	days := make([]model.CalendarDay, calDays)
	for i := range days {
		date := syntheticStart.AddDate(0, 0, i)
		week := i / 7
		d := model.CalendarDay{
			Date:     date,
			WmYrWk:   10000 + (11+week/52)*100 + week%52 + 1,
			Weekday:  date.Weekday().String(),
			Wday:     wdayOf[date.Weekday()],
			Month:    int(date.Month()),
			Year:     date.Year(),
			D:        model.DayLabel(i + 1),
			DayIndex: i + 1,
			SnapCA:   date.Day() <= 10,
			SnapTX:   date.Day() <= 15 && date.Day()%2 == 1,
			SnapWI:   date.Day() <= 15 && date.Day()%2 == 0,
		}
		switch {
		case date.Month() == time.December && date.Day() == 25:
			d.Events = []model.Event{{Name: "Christmas", Type: "National"}}
		case date.Month() == time.January && date.Day() == 1:
			d.Events = []model.Event{{Name: "NewYear", Type: "National"}}
		case date.Month() == time.July && date.Day() == 4:
			d.Events = []model.Event{{Name: "IndependenceDay", Type: "National"}}
		}
		d.Derive()
		days[i] = d
	}
	cal := model.NewCalendar(days)

	ds := &SyntheticDataset{Calendar: cal}
	for _, state := range syntheticStates {
		for st := 1; st <= opts.StoresPerState; st++ {
			store := fmt.Sprintf("%s_%d", state, st)
			for _, dp := range syntheticDepts {
				for it := 1; it <= opts.ItemsPerDept; it++ {
					item := fmt.Sprintf("%s_%03d", dp.dept, it)
					s, prices := syntheticSeries(rng, cal, opts.EvaluationDays, item, dp.dept, dp.cat, store, state)
					ds.Evaluation = append(ds.Evaluation, s)
					ds.Prices = append(ds.Prices, prices...)
				}
			}
		}
	}

	valDays := opts.EvaluationDays - model.HorizonDays
	for _, s := range ds.Evaluation {
		v := s
		v.ID = model.SubmissionID(s.Key(), model.ValidationHorizon)
		v.Sales = append([]float64(nil), s.Sales[:valDays]...)
		ds.Validation = append(ds.Validation, v)
	}
	for _, h := range []model.Horizon{model.ValidationHorizon, model.EvaluationHorizon} {
		for _, s := range ds.Evaluation {
			ds.Sample = append(ds.Sample, model.SubmissionRow{
				ID:     model.SubmissionID(s.Key(), h),
				Values: make([]float64, model.HorizonDays),
			})
		}
	}
	return ds
}

func syntheticSeries(rng *rand.Rand, cal *model.Calendar, n int, item, dept, cat, store, state string) (model.SalesSeries, []model.PriceRecord) {
	s := model.SalesSeries{
		ID:      model.SubmissionID(model.SeriesKey(item, store), model.EvaluationHorizon),
		ItemID:  item,
		DeptID:  dept,
		CatID:   cat,
		StoreID: store,
		StateID: state,
		Sales:   make([]float64, n),
	}
	base := 0.1 + rng.Float64()*4
	launch := 1 + rng.Intn(n/4+1)
	basePrice := math.Round((1+rng.Float64()*19)*100) / 100

	var prices []model.PriceRecord
	lastWeek := -1
	price := basePrice
	for i := 0; i < n; i++ {
		day := cal.Days[i]
		if i+1 >= launch && day.WmYrWk != lastWeek {
			lastWeek = day.WmYrWk
			// Occasional promotions lower the weekly price.
			price = basePrice
			if rng.Float64() < 0.1 {
				price = math.Round(basePrice*0.8*100) / 100
			}
			prices = append(prices, model.PriceRecord{StoreID: store, ItemID: item, WmYrWk: day.WmYrWk, SellPrice: price})
		}
		if i+1 < launch {
			continue
		}
		rate := base
		if day.IsWeekend {
			rate *= 1.3
		}
		if day.Snap(state) && cat == "FOODS" {
			rate *= 1.2
		}
		if price < basePrice {
			rate *= 1.25
		}
		if day.HasEvent() {
			rate *= 0.5
		}
		s.Sales[i] = distuv.Poisson{Lambda: rate, Src: rng}.Rand()
	}

	// Prices continue through the forecast horizons.
	for i := n; i < len(cal.Days); i++ {
		day := cal.Days[i]
		if day.WmYrWk != lastWeek {
			lastWeek = day.WmYrWk
			prices = append(prices, model.PriceRecord{StoreID: store, ItemID: item, WmYrWk: day.WmYrWk, SellPrice: basePrice})
		}
	}
	return s, prices
}

// WriteDataset writes the synthetic dataset as the five competition CSV files.
func WriteDataset(dir string, ds *SyntheticDataset, files Files) error {
	if err := WriteCalendarFile(filepath.Join(dir, files.Calendar), ds.Calendar); err != nil {
		return err
	}
	if err := WriteSalesFile(filepath.Join(dir, files.SalesTrainValidation), ds.Validation); err != nil {
		return err
	}
	if err := WriteSalesFile(filepath.Join(dir, files.SalesTrainEvaluation), ds.Evaluation); err != nil {
		return err
	}
	if err := WritePricesFile(filepath.Join(dir, files.SellPrices), ds.Prices); err != nil {
		return err
	}
	return WriteSubmissionFile(filepath.Join(dir, files.SampleSubmission), ds.Sample, nil)
}
