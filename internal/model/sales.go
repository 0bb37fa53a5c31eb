package model

// SalesSeries is one row of a sales_train_* file.
// Sales[0] is d_1; the series is contiguous.
type SalesSeries struct {
	ID      string `json:"id"`
	ItemID  string `json:"item_id"`
	DeptID  string `json:"dept_id"`
	CatID   string `json:"cat_id"`
	StoreID string `json:"store_id"`
	StateID string `json:"state_id"`

	Sales []float64 `json:"-"`
}

// Key is the item/store concatenation used to build submission ids.
func (s SalesSeries) Key() string {
	return SeriesKey(s.ItemID, s.StoreID)
}

// LastDay is the 1-based index of the last observed day.
func (s SalesSeries) LastDay() int { return len(s.Sales) }

// FirstSaleDay returns the 1-based index of the first non-zero sale, or 0 if there is none.
func (s SalesSeries) FirstSaleDay() int {
	for i, v := range s.Sales {
		if v != 0 {
			return i + 1
		}
	}
	return 0
}

// History returns the observations strictly before firstDay.
func (s SalesSeries) History(firstDay int) []float64 {
	n := firstDay - 1
	if n > len(s.Sales) {
		n = len(s.Sales)
	}
	if n < 0 {
		n = 0
	}
	return s.Sales[:n]
}

// Window returns the observations for days [from, to] inclusive (1-based).
func (s SalesSeries) Window(from, to int) []float64 {
	if from < 1 {
		from = 1
	}
	if to > len(s.Sales) {
		to = len(s.Sales)
	}
	if from > to {
		return nil
	}
	return s.Sales[from-1 : to]
}

// SeriesKey joins an item id and store id.
func SeriesKey(itemID, storeID string) string {
	return itemID + "_" + storeID
}
