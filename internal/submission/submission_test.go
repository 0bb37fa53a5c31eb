package submission

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"m5-forecast/internal/model"
)

func row(id string, v float64) model.SubmissionRow {
	values := make([]float64, model.HorizonDays)
	for i := range values {
		values[i] = v
	}
	return model.SubmissionRow{ID: id, Values: values}
}

func sampleOf(ids ...string) []model.SubmissionRow {
	out := make([]model.SubmissionRow, len(ids))
	for i, id := range ids {
		out[i] = row(id, 0)
	}
	return out
}

func TestBuildAndOrder(t *testing.T) {
	val := []model.SubmissionRow{row("B_validation", 1), row("A_validation", 2)}
	eval := []model.SubmissionRow{row("A_evaluation", 3), row("B_evaluation", 4), row("C_evaluation", 5)}
	all := Build(val, eval)
	if len(all) != 5 || all[0].ID != "B_validation" || all[4].ID != "C_evaluation" {
		t.Fatalf("Build() = %v", all)
	}

	sample := sampleOf("A_validation", "B_validation", "A_evaluation", "B_evaluation")
	ordered, err := Order(all, sample)
	if err != nil {
		t.Fatal(err)
	}
	if len(ordered) != len(sample) {
		t.Fatalf("Order() returned %d rows, want %d", len(ordered), len(sample))
	}
	for i, s := range sample {
		if ordered[i].ID != s.ID {
			t.Errorf("row %d = %q, want %q", i, ordered[i].ID, s.ID)
		}
	}
	if ordered[0].Values[0] != 2 {
		t.Errorf("A_validation F1 = %v, want 2", ordered[0].Values[0])
	}

	if _, err := Order(val, sample); err == nil {
		t.Error("Order() with missing ids succeeded")
	}
}

func TestValidate(t *testing.T) {
	sample := sampleOf("A_validation", "B_validation")
	if err := Validate([]model.SubmissionRow{row("A_validation", 1), row("B_validation", 0)}, sample); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	bad := row("B_validation", 1)
	bad.Values[3] = math.NaN()
	bad.Values[4] = -2
	rows := []model.SubmissionRow{
		row("A_validation", 1),
		row("A_validation", 1),
		bad,
		{ID: "Z_validation", Values: []float64{1}},
	}
	err := Validate(rows, sample)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	wantFragments := []string{
		"row count 4, sample has 2",
		"duplicate id A_validation",
		"B_validation F4 is not finite",
		"B_validation F5 is negative",
		"unexpected id Z_validation",
		"has 1 values",
	}
	joined := strings.Join(verr.Problems, "\n")
	for _, w := range wantFragments {
		if !strings.Contains(joined, w) {
			t.Errorf("problems missing %q:\n%s", w, joined)
		}
	}

	err = Validate(sampleOf("A_validation"), sample)
	if err == nil || !strings.Contains(err.Error(), "missing id B_validation") {
		t.Errorf("Validate() error = %v, want missing id", err)
	}
}

func TestValidationErrorTruncates(t *testing.T) {
	e := &ValidationError{Problems: []string{"a", "b", "c", "d", "e", "f", "g"}}
	if got, want := e.Error(), "invalid submission: a; b; c; d; e; and 2 more"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCheckHorizons(t *testing.T) {
	if err := CheckHorizons(1913, model.ValidationHorizon, model.EvaluationHorizon); err != nil {
		t.Errorf("standard horizons rejected: %v", err)
	}
	tests := []struct {
		name string
		last int
		hs   []model.Horizon
	}{
		{"none", 1913, nil},
		{"gap after history", 1900, []model.Horizon{model.ValidationHorizon}},
		{"overlap", 1913, []model.Horizon{model.ValidationHorizon, model.ValidationHorizon}},
		{"too short", 10, []model.Horizon{{Name: "short", FirstDay: 11, LastDay: 20}}},
	}
	for _, tt := range tests {
		if err := CheckHorizons(tt.last, tt.hs...); err == nil {
			t.Errorf("%s: CheckHorizons succeeded", tt.name)
		}
	}
}

func TestWriteReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.csv")
	rows := []model.SubmissionRow{row("A_validation", 1.25), row("A_evaluation", 0)}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "A_validation" || got[0].Values[27] != 1.25 || got[1].Values[0] != 0 {
		t.Errorf("ReadCSV() = %v", got)
	}
	if err := Validate(got, rows); err != nil {
		t.Errorf("round trip is invalid: %v", err)
	}
}
