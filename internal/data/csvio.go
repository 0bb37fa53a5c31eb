package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"m5-forecast/internal/model"
)

var (
	calendarColumns = []string{
		"date", "wm_yr_wk", "weekday", "wday", "month", "year", "d",
		"event_name_1", "event_type_1", "event_name_2", "event_type_2",
		"snap_CA", "snap_TX", "snap_WI",
	}
	salesIDColumns = []string{"id", "item_id", "dept_id", "cat_id", "store_id", "state_id"}
	priceColumns   = []string{"store_id", "item_id", "wm_yr_wk", "sell_price"}
)

// header maps column names to positions and checks that required ones are present.
func header(file string, rec []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(rec))
	for i, name := range rec {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, &SchemaError{File: file, Line: 1, Column: name, Msg: "missing column"}
		}
	}
	return idx, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	return cr
}

func parseInt(file string, line int, col, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &SchemaError{File: file, Line: line, Column: col, Msg: fmt.Sprintf("invalid integer %q", s)}
	}
	return v, nil
}

func parseFloat(file string, line int, col, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &SchemaError{File: file, Line: line, Column: col, Msg: fmt.Sprintf("invalid number %q", s)}
	}
	return v, nil
}

// ParseCalendar reads calendar.csv and derives year/month/day/dayofweek/quarter/is_weekend.
func ParseCalendar(r io.Reader, file string) (*model.Calendar, error) {
	cr := newReader(r)
	rec, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{File: file, Msg: fmt.Sprintf("read header: %v", err)}
	}
	col, err := header(file, rec, calendarColumns)
	if err != nil {
		return nil, err
	}

	var days []model.CalendarDay
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &SchemaError{File: file, Line: line, Msg: err.Error()}
		}
		var d model.CalendarDay
		d.Date, err = time.Parse(model.DateLayout, rec[col["date"]])
		if err != nil {
			return nil, &SchemaError{File: file, Line: line, Column: "date", Msg: fmt.Sprintf("invalid date %q", rec[col["date"]])}
		}
		if d.WmYrWk, err = parseInt(file, line, "wm_yr_wk", rec[col["wm_yr_wk"]]); err != nil {
			return nil, err
		}
		if d.Wday, err = parseInt(file, line, "wday", rec[col["wday"]]); err != nil {
			return nil, err
		}
		if d.Month, err = parseInt(file, line, "month", rec[col["month"]]); err != nil {
			return nil, err
		}
		if d.Year, err = parseInt(file, line, "year", rec[col["year"]]); err != nil {
			return nil, err
		}
		d.Weekday = rec[col["weekday"]]
		d.D = rec[col["d"]]
		if d.DayIndex, err = model.ParseDayLabel(d.D); err != nil {
			return nil, &SchemaError{File: file, Line: line, Column: "d", Msg: err.Error()}
		}
		for _, n := range []string{"1", "2"} {
			name := strings.TrimSpace(rec[col["event_name_"+n]])
			if name == "" {
				continue
			}
			d.Events = append(d.Events, model.Event{Name: name, Type: strings.TrimSpace(rec[col["event_type_"+n]])})
		}
		d.SnapCA = rec[col["snap_CA"]] == "1"
		d.SnapTX = rec[col["snap_TX"]] == "1"
		d.SnapWI = rec[col["snap_WI"]] == "1"
		d.Derive()
		days = append(days, d)
	}
	return model.NewCalendar(days), nil
}

// ParseSales reads a sales_train_* file. Day columns must run d_1..d_N without gaps.
func ParseSales(r io.Reader, file string) ([]model.SalesSeries, error) {
	cr := newReader(r)
	rec, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{File: file, Msg: fmt.Sprintf("read header: %v", err)}
	}
	col, err := header(file, rec, salesIDColumns)
	if err != nil {
		return nil, err
	}
	// day position -> column index
	var dayCols []int
	for i, name := range rec {
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, "d_") {
			continue
		}
		n, err := model.ParseDayLabel(name)
		if err != nil {
			return nil, &SchemaError{File: file, Line: 1, Column: name, Msg: err.Error()}
		}
		if n != len(dayCols)+1 {
			return nil, &SchemaError{File: file, Line: 1, Column: name, Msg: fmt.Sprintf("day columns must be contiguous from d_1, expected %s", model.DayLabel(len(dayCols)+1))}
		}
		dayCols = append(dayCols, i)
	}
	if len(dayCols) == 0 {
		return nil, &SchemaError{File: file, Line: 1, Msg: "no d_<n> columns"}
	}

	var out []model.SalesSeries
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &SchemaError{File: file, Line: line, Msg: err.Error()}
		}
		s := model.SalesSeries{
			ID:      rec[col["id"]],
			ItemID:  rec[col["item_id"]],
			DeptID:  rec[col["dept_id"]],
			CatID:   rec[col["cat_id"]],
			StoreID: rec[col["store_id"]],
			StateID: rec[col["state_id"]],
			Sales:   make([]float64, len(dayCols)),
		}
		for t, ci := range dayCols {
			v, err := parseFloat(file, line, model.DayLabel(t+1), rec[ci])
			if err != nil {
				return nil, err
			}
			s.Sales[t] = v
		}
		out = append(out, s)
	}
	return out, nil
}

// ParsePrices reads sell_prices.csv.
func ParsePrices(r io.Reader, file string) ([]model.PriceRecord, error) {
	cr := newReader(r)
	rec, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{File: file, Msg: fmt.Sprintf("read header: %v", err)}
	}
	col, err := header(file, rec, priceColumns)
	if err != nil {
		return nil, err
	}
	var out []model.PriceRecord
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &SchemaError{File: file, Line: line, Msg: err.Error()}
		}
		wk, err := parseInt(file, line, "wm_yr_wk", rec[col["wm_yr_wk"]])
		if err != nil {
			return nil, err
		}
		price, err := parseFloat(file, line, "sell_price", rec[col["sell_price"]])
		if err != nil {
			return nil, err
		}
		out = append(out, model.PriceRecord{
			StoreID:   rec[col["store_id"]],
			ItemID:    rec[col["item_id"]],
			WmYrWk:    wk,
			SellPrice: price,
		})
	}
	return out, nil
}

// ParseSubmission reads a submission-shaped file (id,F1..F28).
func ParseSubmission(r io.Reader, file string) ([]model.SubmissionRow, error) {
	cr := newReader(r)
	rec, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{File: file, Msg: fmt.Sprintf("read header: %v", err)}
	}
	if len(rec) != model.HorizonDays+1 || strings.TrimSpace(rec[0]) != "id" {
		return nil, &SchemaError{File: file, Line: 1, Msg: fmt.Sprintf("expected header id,F1..F%d", model.HorizonDays)}
	}
	for i := 1; i <= model.HorizonDays; i++ {
		if strings.TrimSpace(rec[i]) != "F"+strconv.Itoa(i) {
			return nil, &SchemaError{File: file, Line: 1, Column: rec[i], Msg: fmt.Sprintf("expected F%d", i)}
		}
	}
	var out []model.SubmissionRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &SchemaError{File: file, Line: line, Msg: err.Error()}
		}
		row := model.SubmissionRow{ID: rec[0], Values: make([]float64, model.HorizonDays)}
		for i := 0; i < model.HorizonDays; i++ {
			v, err := parseFloat(file, line, "F"+strconv.Itoa(i+1), rec[i+1])
			if err != nil {
				return nil, err
			}
			row.Values[i] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func readFile[T any](path string, parse func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return parse(f, filepath.Base(path))
}

// ReadSubmissionFile reads a submission CSV from disk.
func ReadSubmissionFile(path string) ([]model.SubmissionRow, error) {
	return readFile(path, ParseSubmission)
}

func createCSV(path string, write func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// WriteSubmissionFile writes rows as id,F1..F28 with the given float formatter.
func WriteSubmissionFile(path string, rows []model.SubmissionRow, format func(float64) string) error {
	if format == nil {
		format = fmtFloat
	}
	return createCSV(path, func(w *csv.Writer) error {
		head := make([]string, 0, model.HorizonDays+1)
		head = append(head, "id")
		for i := 1; i <= model.HorizonDays; i++ {
			head = append(head, "F"+strconv.Itoa(i))
		}
		if err := w.Write(head); err != nil {
			return err
		}
		rec := make([]string, model.HorizonDays+1)
		for _, r := range rows {
			if len(r.Values) != model.HorizonDays {
				return fmt.Errorf("row %s has %d values, want %d", r.ID, len(r.Values), model.HorizonDays)
			}
			rec[0] = r.ID
			for i, v := range r.Values {
				rec[i+1] = format(v)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCalendarFile writes calendar days in calendar.csv layout.
func WriteCalendarFile(path string, cal *model.Calendar) error {
	return createCSV(path, func(w *csv.Writer) error {
		if err := w.Write(calendarColumns); err != nil {
			return err
		}
		for _, d := range cal.Days {
			var en1, et1, en2, et2 string
			if len(d.Events) > 0 {
				en1, et1 = d.Events[0].Name, d.Events[0].Type
			}
			if len(d.Events) > 1 {
				en2, et2 = d.Events[1].Name, d.Events[1].Type
			}
			rec := []string{
				d.Date.Format(model.DateLayout),
				strconv.Itoa(d.WmYrWk),
				d.Weekday,
				strconv.Itoa(d.Wday),
				strconv.Itoa(d.Month),
				strconv.Itoa(d.Year),
				d.D,
				en1, et1, en2, et2,
				fmtBool(d.SnapCA), fmtBool(d.SnapTX), fmtBool(d.SnapWI),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSalesFile writes series in the wide sales_train_* layout. All series must have equal length.
func WriteSalesFile(path string, series []model.SalesSeries) error {
	days := 0
	if len(series) > 0 {
		days = len(series[0].Sales)
	}
	return createCSV(path, func(w *csv.Writer) error {
		head := append([]string{}, salesIDColumns...)
		for d := 1; d <= days; d++ {
			head = append(head, model.DayLabel(d))
		}
		if err := w.Write(head); err != nil {
			return err
		}
		for _, s := range series {
			if len(s.Sales) != days {
				return fmt.Errorf("series %s has %d days, want %d", s.ID, len(s.Sales), days)
			}
			rec := []string{s.ID, s.ItemID, s.DeptID, s.CatID, s.StoreID, s.StateID}
			for _, v := range s.Sales {
				rec = append(rec, fmtFloat(v))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePricesFile writes sell_prices.csv.
func WritePricesFile(path string, prices []model.PriceRecord) error {
	return createCSV(path, func(w *csv.Writer) error {
		if err := w.Write(priceColumns); err != nil {
			return err
		}
		for _, p := range prices {
			if err := w.Write([]string{p.StoreID, p.ItemID, strconv.Itoa(p.WmYrWk), fmtFloat(p.SellPrice)}); err != nil {
				return err
			}
		}
		return nil
	})
}
