package backtest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"m5-forecast/internal/model"
)

// ForecastRow is one series' forecast for one horizon.
type ForecastRow struct {
	Index    int       `json:"index"`
	ID       string    `json:"id"`
	Key      string    `json:"key"`
	Horizon  string    `json:"horizon"`
	FirstDay int       `json:"first_day"`
	Values   []float64 `json:"values"`
}

type Result struct {
	Model   string        `json:"model"`
	Horizon model.Horizon `json:"horizon"`
	Rows    []ForecastRow `json:"rows"`
}

// Submission converts the result into submission rows for its horizon.
func (r *Result) Submission() []model.SubmissionRow {
	out := make([]model.SubmissionRow, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = model.SubmissionRow{ID: model.SubmissionID(row.Key, r.Horizon), Values: row.Values}
	}
	return out
}

// LedgerRow is one series-day of a cross-validation fold.
// This is the primary artifact for inspecting where a model goes wrong.
type LedgerRow struct {
	Fold     int
	SeriesID string
	Day      int
	Actual   float64
	Forecast float64
}

func (r LedgerRow) Error() float64 { return r.Forecast - r.Actual }

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"fold",
		"id",
		"d",
		"actual",
		"forecast",
		"error",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Fold),
			r.SeriesID,
			model.DayLabel(r.Day),
			fmtFloat(r.Actual),
			fmtFloat(r.Forecast),
			fmtFloat(r.Error()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
