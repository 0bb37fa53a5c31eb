package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"m5-forecast/internal/config"
	"m5-forecast/internal/model"
)

// Files names the five competition files inside the data directory.
type Files struct {
	Calendar             string
	SalesTrainValidation string
	SalesTrainEvaluation string
	SampleSubmission     string
	SellPrices           string
}

func DefaultFiles() Files {
	return FilesFromConfig(config.Default().Files)
}

func FilesFromConfig(f config.FilesConfig) Files {
	return Files{
		Calendar:             f.Calendar,
		SalesTrainValidation: f.SalesTrainValidation,
		SalesTrainEvaluation: f.SalesTrainEvaluation,
		SampleSubmission:     f.SampleSubmission,
		SellPrices:           f.SellPrices,
	}
}

// Dataset bundles everything a forecasting run consumes.
type Dataset struct {
	Calendar         *model.Calendar
	Sales            []model.SalesSeries
	Prices           *model.Prices
	SampleSubmission []model.SubmissionRow

	// Validation is true when Sales came from sales_train_validation.csv.
	Validation bool
}

// LastDay is the last observed day shared by all series (0 if there are none).
func (d *Dataset) LastDay() int {
	if len(d.Sales) == 0 {
		return 0
	}
	return d.Sales[0].LastDay()
}

// Loader reads the competition files from a data directory.
type Loader struct {
	DataDir string
	Files   Files
	Cache   *Cache
}

// NewLoader returns a loader with its own cache.
func NewLoader(dataDir string) *Loader {
	return &Loader{DataDir: dataDir, Files: DefaultFiles(), Cache: NewCache()}
}

// NewLoaderFromConfig returns a loader backed by the shared cache.
func NewLoaderFromConfig(cfg *config.Config) *Loader {
	return &Loader{DataDir: cfg.DataDir, Files: FilesFromConfig(cfg.Files), Cache: GetCache()}
}

func (l *Loader) path(name string) string {
	return filepath.Join(l.DataDir, name)
}

// HasEvaluation reports whether sales_train_evaluation.csv is present.
func (l *Loader) HasEvaluation() bool {
	_, err := os.Stat(l.path(l.Files.SalesTrainEvaluation))
	return err == nil
}

func (l *Loader) LoadCalendar() (*model.Calendar, error) {
	p := l.path(l.Files.Calendar)
	cal, err := cached(l.Cache, "calendar", p, func() (*model.Calendar, error) {
		slog.Info("loading calendar", "path", p)
		return readFile(p, ParseCalendar)
	})
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	slog.Info("calendar loaded", "days", len(cal.Days))
	return cal, nil
}

// LoadSales loads sales_train_validation.csv when validation is true, else sales_train_evaluation.csv.
func (l *Loader) LoadSales(validation bool) ([]model.SalesSeries, error) {
	name, kind := l.Files.SalesTrainValidation, "sales_validation"
	if !validation {
		name, kind = l.Files.SalesTrainEvaluation, "sales_evaluation"
	}
	p := l.path(name)
	sales, err := cached(l.Cache, kind, p, func() ([]model.SalesSeries, error) {
		slog.Info("loading sales", "path", p)
		return readFile(p, ParseSales)
	})
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	days := 0
	if len(sales) > 0 {
		days = sales[0].LastDay()
	}
	slog.Info("sales loaded", "series", len(sales), "days", days)
	return sales, nil
}

func (l *Loader) LoadPrices() (*model.Prices, error) {
	p := l.path(l.Files.SellPrices)
	prices, err := cached(l.Cache, "prices", p, func() (*model.Prices, error) {
		slog.Info("loading prices", "path", p)
		recs, err := readFile(p, ParsePrices)
		if err != nil {
			return nil, err
		}
		return model.NewPrices(recs), nil
	})
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	slog.Info("prices loaded", "rows", prices.Len())
	return prices, nil
}

func (l *Loader) LoadSampleSubmission() ([]model.SubmissionRow, error) {
	p := l.path(l.Files.SampleSubmission)
	rows, err := cached(l.Cache, "sample_submission", p, func() ([]model.SubmissionRow, error) {
		slog.Info("loading sample submission", "path", p)
		return readFile(p, ParseSubmission)
	})
	if err != nil {
		return nil, fmt.Errorf("load sample submission: %w", err)
	}
	slog.Info("sample submission loaded", "rows", len(rows))
	return rows, nil
}

// LoadAll loads calendar, sales, prices and the sample submission.
func (l *Loader) LoadAll(validation bool) (*Dataset, error) {
	slog.Info("loading all competition data", "dir", l.DataDir, "validation", validation)
	cal, err := l.LoadCalendar()
	if err != nil {
		return nil, err
	}
	sales, err := l.LoadSales(validation)
	if err != nil {
		return nil, err
	}
	prices, err := l.LoadPrices()
	if err != nil {
		return nil, err
	}
	sample, err := l.LoadSampleSubmission()
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Calendar:         cal,
		Sales:            sales,
		Prices:           prices,
		SampleSubmission: sample,
		Validation:       validation,
	}, nil
}

// TableInfo summarizes one file.
type TableInfo struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Rows       int            `json:"rows"`
	Columns    []string       `json:"columns"`
	NullCounts map[string]int `json:"null_counts"`
	SizeMB     float64        `json:"size_mb"`
}

// Info scans every present file and reports rows, columns, empty-cell counts and on-disk size.
// Missing files are skipped.
func (l *Loader) Info() ([]TableInfo, error) {
	tables := []struct{ name, file string }{
		{"calendar", l.Files.Calendar},
		{"sales_train_validation", l.Files.SalesTrainValidation},
		{"sales_train_evaluation", l.Files.SalesTrainEvaluation},
		{"sell_prices", l.Files.SellPrices},
		{"sample_submission", l.Files.SampleSubmission},
	}
	var out []TableInfo
	for _, t := range tables {
		info, err := scanTable(t.name, l.path(t.file))
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("skipping missing file", "name", t.name, "path", l.path(t.file))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func scanTable(name, path string) (TableInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TableInfo{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return TableInfo{}, err
	}
	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	head, err := cr.Read()
	if err != nil {
		return TableInfo{}, &SchemaError{File: filepath.Base(path), Msg: fmt.Sprintf("read header: %v", err)}
	}
	info := TableInfo{
		Name:       name,
		Path:       path,
		Columns:    append([]string(nil), head...),
		NullCounts: make(map[string]int),
		SizeMB:     float64(st.Size()) / (1024 * 1024),
	}
	nulls := make([]int, len(info.Columns))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return TableInfo{}, &SchemaError{File: filepath.Base(path), Line: info.Rows + 2, Msg: err.Error()}
		}
		info.Rows++
		for i, v := range rec {
			if strings.TrimSpace(v) == "" {
				nulls[i]++
			}
		}
	}
	for i, c := range info.Columns {
		info.NullCounts[c] = nulls[i]
	}
	return info, nil
}
