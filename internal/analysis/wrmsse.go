package analysis

import (
	"errors"
	"math"

	"m5-forecast/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LevelScore is the weighted RMSSE of one aggregation level.
type LevelScore struct {
	Level  int     `json:"level"`
	Name   string  `json:"name"`
	Series int     `json:"series"`
	Score  float64 `json:"score"`
}

// WRMSSEResult is the 12-level weighted RMSSE.
type WRMSSEResult struct {
	Total  float64      `json:"total"`
	Levels []LevelScore `json:"levels"`
}

// WRMSSEInput holds aligned bottom-level data. Train[i], Actual[i] and Forecast[i]
// belong to Series[i]; Dollars[i] is its recent dollar sales used for weighting.
type WRMSSEInput struct {
	Series   []model.SalesSeries
	Train    [][]float64
	Actual   [][]float64
	Forecast [][]float64
	Dollars  []float64
}

// WRMSSE aggregates the bottom level to every M5 level, weights each group by its
// share of the level's dollar sales, and averages the 12 level scores.
// Groups with a zero scale are dropped and the remaining weights renormalized;
// with no dollar sales among them they are weighted equally. Levels whose
// groups all have a zero scale are left out.
func WRMSSE(in WRMSSEInput) (WRMSSEResult, error) {
	n := len(in.Series)
	if n == 0 {
		return WRMSSEResult{}, errors.New("no series")
	}
	if len(in.Train) != n || len(in.Actual) != n || len(in.Forecast) != n || len(in.Dollars) != n {
		return WRMSSEResult{}, errors.New("series, train, actual, forecast and dollars must have equal length")
	}
	dollarRows := make([][]float64, n)
	for i, d := range in.Dollars {
		dollarRows[i] = []float64{d}
	}

	var res WRMSSEResult
	var levelScores []float64
	for _, lvl := range model.AggregationLevels {
		keys, members := lvl.Group(in.Series)
		score, ok := levelScore(in, members, dollarRows)
		if !ok {
			// Every group had a zero scale; the level cannot be scored.
			continue
		}
		res.Levels = append(res.Levels, LevelScore{Level: lvl.ID, Name: lvl.Name, Series: len(keys), Score: score})
		levelScores = append(levelScores, score)
	}
	if len(levelScores) == 0 {
		return WRMSSEResult{}, errors.New("no level could be scored")
	}
	res.Total = NanMean(levelScores)
	return res, nil
}

// levelScore is the dollar-weighted RMSSE over the groups of one level that
// have a usable scale. ok is false when no group does.
func levelScore(in WRMSSEInput, members [][]int, dollarRows [][]float64) (score float64, ok bool) {
	var weights, scores []float64
	for _, idx := range members {
		r := RMSSE(model.SumRows(in.Train, idx), model.SumRows(in.Actual, idx), model.SumRows(in.Forecast, idx))
		if math.IsNaN(r) {
			continue
		}
		weights = append(weights, model.SumRows(dollarRows, idx)[0])
		scores = append(scores, r)
	}
	if len(scores) == 0 {
		return 0, false
	}
	if floats.Sum(weights) <= 0 {
		return stat.Mean(scores, nil), true
	}
	return stat.Mean(scores, weights), true
}

// DollarSales sums units x sell price over the last window days of each train slice.
// Train slices start at d_1. Days without a price contribute nothing.
func DollarSales(series []model.SalesSeries, train [][]float64, cal *model.Calendar, prices *model.Prices, window int) []float64 {
	out := make([]float64, len(series))
	for i, s := range series {
		tr := train[i]
		from := len(tr) - window
		if from < 0 {
			from = 0
		}
		for t := from; t < len(tr); t++ {
			if tr[t] == 0 {
				continue
			}
			day, ok := cal.ByIndex(t + 1)
			if !ok {
				continue
			}
			if p, ok := prices.Lookup(s.StoreID, s.ItemID, day.WmYrWk); ok {
				out[i] += tr[t] * p
			}
		}
	}
	return out
}
