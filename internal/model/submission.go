package model

// SubmissionRow is one row of a submission: an id and HorizonDays forecasts (F1..F28).
type SubmissionRow struct {
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
}

// SubmissionID builds "<item>_<store>_<suffix>".
func SubmissionID(key string, h Horizon) string {
	return key + "_" + h.Suffix
}
