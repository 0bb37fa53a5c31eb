package model

import "fmt"

// AggregationLevel is one of the 12 M5 aggregation levels.
type AggregationLevel struct {
	ID   int
	Name string
	key  func(s SalesSeries) string
}

// Key returns the group a bottom-level series belongs to at this level.
func (l AggregationLevel) Key(s SalesSeries) string { return l.key(s) }

// AggregationLevels lists levels 1 (total) through 12 (item x store).
var AggregationLevels = []AggregationLevel{
	{ID: 1, Name: "total", key: func(SalesSeries) string { return "Total" }},
	{ID: 2, Name: "state", key: func(s SalesSeries) string { return s.StateID }},
	{ID: 3, Name: "store", key: func(s SalesSeries) string { return s.StoreID }},
	{ID: 4, Name: "category", key: func(s SalesSeries) string { return s.CatID }},
	{ID: 5, Name: "department", key: func(s SalesSeries) string { return s.DeptID }},
	{ID: 6, Name: "state_category", key: func(s SalesSeries) string { return s.StateID + "_" + s.CatID }},
	{ID: 7, Name: "state_department", key: func(s SalesSeries) string { return s.StateID + "_" + s.DeptID }},
	{ID: 8, Name: "store_category", key: func(s SalesSeries) string { return s.StoreID + "_" + s.CatID }},
	{ID: 9, Name: "store_department", key: func(s SalesSeries) string { return s.StoreID + "_" + s.DeptID }},
	{ID: 10, Name: "item", key: func(s SalesSeries) string { return s.ItemID }},
	{ID: 11, Name: "item_state", key: func(s SalesSeries) string { return s.ItemID + "_" + s.StateID }},
	{ID: 12, Name: "item_store", key: func(s SalesSeries) string { return s.ItemID + "_" + s.StoreID }},
}

// Level returns the aggregation level with the given id (1..12).
func Level(id int) (AggregationLevel, error) {
	if id < 1 || id > len(AggregationLevels) {
		return AggregationLevel{}, fmt.Errorf("aggregation level must be in [1, %d], got %d", len(AggregationLevels), id)
	}
	return AggregationLevels[id-1], nil
}

// Group partitions series at a level. Keys are in first-seen order and
// members[i] holds the indexes of the series in keys[i].
func (l AggregationLevel) Group(series []SalesSeries) (keys []string, members [][]int) {
	pos := map[string]int{}
	for i, s := range series {
		k := l.Key(s)
		j, ok := pos[k]
		if !ok {
			j = len(keys)
			pos[k] = j
			keys = append(keys, k)
			members = append(members, nil)
		}
		members[j] = append(members[j], i)
	}
	return keys, members
}

// SumRows adds rows[i] for every i in idx. Rows shorter than the longest are treated as zero-padded.
func SumRows(rows [][]float64, idx []int) []float64 {
	n := 0
	for _, i := range idx {
		if len(rows[i]) > n {
			n = len(rows[i])
		}
	}
	out := make([]float64, n)
	for _, i := range idx {
		for t, v := range rows[i] {
			out[t] += v
		}
	}
	return out
}
