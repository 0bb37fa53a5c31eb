package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"m5-forecast/internal/model"
)

// LoadJSON reads a JSON document into v.
func LoadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// SaveJSON writes v as indented JSON, creating the parent directory.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// GroupByStore splits series into store-keyed slices, preserving order.
func GroupByStore(series []model.SalesSeries) map[string][]model.SalesSeries {
	out := map[string][]model.SalesSeries{}
	for _, s := range series {
		out[s.StoreID] = append(out[s.StoreID], s)
	}
	return out
}

// Limit returns the first n series (all when n <= 0).
func Limit(series []model.SalesSeries, n int) []model.SalesSeries {
	if n > 0 && n < len(series) {
		return series[:n]
	}
	return series
}
