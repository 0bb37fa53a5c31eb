package data

import (
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	"m5-forecast/internal/model"
)

// LongRow is one (series, day) observation of melted sales.
type LongRow struct {
	ID      string
	ItemID  string
	DeptID  string
	CatID   string
	StoreID string
	StateID string

	D        string
	DayIndex int
	Date     time.Time // zero when the calendar has no such day
	Sales    float64
}

// Melt converts wide sales rows to long format joined with calendar dates.
// Rows are ordered by item id then date; ties keep the input series order.
func Melt(sales []model.SalesSeries, cal *model.Calendar) []LongRow {
	order := make([]int, len(sales))
	total := 0
	for i := range sales {
		order[i] = i
		total += len(sales[i].Sales)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sales[order[a]].ItemID < sales[order[b]].ItemID
	})

	out := make([]LongRow, 0, total)
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && sales[order[end]].ItemID == sales[order[start]].ItemID {
			end++
		}
		group := order[start:end]
		days := 0
		for _, i := range group {
			if n := len(sales[i].Sales); n > days {
				days = n
			}
		}
		for d := 1; d <= days; d++ {
			var date time.Time
			if cd, ok := cal.ByIndex(d); ok {
				date = cd.Date
			}
			for _, i := range group {
				s := sales[i]
				if d > len(s.Sales) {
					continue
				}
				out = append(out, LongRow{
					ID:       s.ID,
					ItemID:   s.ItemID,
					DeptID:   s.DeptID,
					CatID:    s.CatID,
					StoreID:  s.StoreID,
					StateID:  s.StateID,
					D:        model.DayLabel(d),
					DayIndex: d,
					Date:     date,
					Sales:    s.Sales[d-1],
				})
			}
		}
		start = end
	}
	return out
}

// WriteMeltedCSV writes melted rows.
func WriteMeltedCSV(path string, rows []LongRow) error {
	return createCSV(path, func(w *csv.Writer) error {
		head := []string{"id", "item_id", "dept_id", "cat_id", "store_id", "state_id", "d", "sales", "date"}
		if err := w.Write(head); err != nil {
			return err
		}
		for _, r := range rows {
			date := ""
			if !r.Date.IsZero() {
				date = r.Date.Format(model.DateLayout)
			}
			rec := []string{r.ID, r.ItemID, r.DeptID, r.CatID, r.StoreID, r.StateID, r.D, strconv.FormatFloat(r.Sales, 'f', -1, 64), date}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
