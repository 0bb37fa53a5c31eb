package analysis

import (
	"math"
	"sort"
	"strings"
)

// ModelScore is the cross-validated score of one model per metric.
type ModelScore struct {
	Model  string             `json:"model"`
	Scores map[string]float64 `json:"scores"`
}

type RankedModel struct {
	Rank int `json:"rank"`
	ModelScore
}

// RankModels sorts ascending by metric (lower is better). Missing or NaN scores rank last;
// ties keep the input order.
func RankModels(scores []ModelScore, metric string) []RankedModel {
	metric = strings.ToLower(metric)
	out := make([]RankedModel, len(scores))
	for i, s := range scores {
		out[i] = RankedModel{ModelScore: s}
	}
	key := func(r RankedModel) float64 {
		v, ok := r.Scores[metric]
		if !ok || math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) < key(out[j])
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// RankProfilesByVolume sorts profiles by mean active sales, highest first.
func RankProfilesByVolume(profiles []SeriesProfile) []SeriesProfile {
	out := append([]SeriesProfile(nil), profiles...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanSales > out[j].MeanSales
	})
	return out
}
