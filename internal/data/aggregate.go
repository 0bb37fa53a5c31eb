package data

import (
	"m5-forecast/internal/model"
)

// AggregateSeries is the summed sales of a group of bottom-level series.
type AggregateSeries struct {
	Level   int       `json:"level"`
	Key     string    `json:"key"`
	Members int       `json:"members"`
	Sales   []float64 `json:"sales"`
}

// Aggregate sums sales to one of the 12 M5 aggregation levels.
func Aggregate(series []model.SalesSeries, level int) ([]AggregateSeries, error) {
	lvl, err := model.Level(level)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(series))
	for i, s := range series {
		rows[i] = s.Sales
	}
	keys, members := lvl.Group(series)
	out := make([]AggregateSeries, len(keys))
	for i, k := range keys {
		out[i] = AggregateSeries{
			Level:   level,
			Key:     k,
			Members: len(members[i]),
			Sales:   model.SumRows(rows, members[i]),
		}
	}
	return out, nil
}
