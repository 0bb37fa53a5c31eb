// Package submission assembles, checks and writes competition submission files.
package submission

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"m5-forecast/internal/data"
	"m5-forecast/internal/model"
)

// Build concatenates per-horizon rows in the order given.
func Build(horizons ...[]model.SubmissionRow) []model.SubmissionRow {
	n := 0
	for _, h := range horizons {
		n += len(h)
	}
	out := make([]model.SubmissionRow, 0, n)
	for _, h := range horizons {
		out = append(out, h...)
	}
	return out
}

// Order arranges rows in the sample's id order. Ids missing from rows are an
// error; rows not in the sample are dropped.
func Order(rows, sample []model.SubmissionRow) ([]model.SubmissionRow, error) {
	byID := make(map[string]model.SubmissionRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]model.SubmissionRow, 0, len(sample))
	var missing []string
	for _, s := range sample {
		r, ok := byID[s.ID]
		if !ok {
			missing = append(missing, s.ID)
			continue
		}
		out = append(out, r)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%d sample ids have no forecast (first: %s)", len(missing), missing[0])
	}
	return out, nil
}

// ValidationError lists every problem found in a submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	const show = 5
	if len(e.Problems) <= show {
		return "invalid submission: " + strings.Join(e.Problems, "; ")
	}
	return fmt.Sprintf("invalid submission: %s; and %d more", strings.Join(e.Problems[:show], "; "), len(e.Problems)-show)
}

// Validate checks rows against the sample: same row count, same id set, no
// duplicates, and HorizonDays finite non-negative values per row.
func Validate(rows, sample []model.SubmissionRow) error {
	var problems []string
	if len(rows) != len(sample) {
		problems = append(problems, fmt.Sprintf("row count %d, sample has %d", len(rows), len(sample)))
	}
	want := make(map[string]bool, len(sample))
	for _, s := range sample {
		want[s.ID] = true
	}
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("duplicate id %s", r.ID))
		}
		seen[r.ID] = true
		if !want[r.ID] {
			problems = append(problems, fmt.Sprintf("unexpected id %s", r.ID))
		}
		if len(r.Values) != model.HorizonDays {
			problems = append(problems, fmt.Sprintf("row %d (%s) has %d values, want %d", i+1, r.ID, len(r.Values), model.HorizonDays))
			continue
		}
		for k, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				problems = append(problems, fmt.Sprintf("%s F%d is not finite", r.ID, k+1))
			} else if v < 0 {
				problems = append(problems, fmt.Sprintf("%s F%d is negative (%v)", r.ID, k+1, v))
			}
		}
	}
	for _, s := range sample {
		if !seen[s.ID] {
			problems = append(problems, fmt.Sprintf("missing id %s", s.ID))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// CheckHorizons verifies that horizons are HorizonDays long, that the first
// starts the day after lastObserved, and that each next one follows without overlap.
func CheckHorizons(lastObserved int, horizons ...model.Horizon) error {
	if len(horizons) == 0 {
		return errors.New("no horizons")
	}
	next := lastObserved + 1
	for _, h := range horizons {
		if h.Days() != model.HorizonDays {
			return fmt.Errorf("horizon %s spans %d days, want %d", h.Name, h.Days(), model.HorizonDays)
		}
		if h.FirstDay != next {
			return fmt.Errorf("horizon %s starts at day %d, want %d", h.Name, h.FirstDay, next)
		}
		next = h.LastDay + 1
	}
	return nil
}

// WriteCSV writes rows as id,F1..F28.
func WriteCSV(path string, rows []model.SubmissionRow) error {
	return data.WriteSubmissionFile(path, rows, nil)
}

func ReadCSV(path string) ([]model.SubmissionRow, error) {
	return data.ReadSubmissionFile(path)
}
