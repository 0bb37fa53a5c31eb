package model

// PriceRecord is one row of sell_prices.csv.
type PriceRecord struct {
	StoreID   string  `json:"store_id"`
	ItemID    string  `json:"item_id"`
	WmYrWk    int     `json:"wm_yr_wk"`
	SellPrice float64 `json:"sell_price"`
}

// Prices indexes sell prices by item/store and Walmart week.
type Prices struct {
	byKey map[string]map[int]float64
	max   map[string]float64
	count int
}

func NewPrices(records []PriceRecord) *Prices {
	p := &Prices{
		byKey: make(map[string]map[int]float64),
		max:   make(map[string]float64),
	}
	for _, r := range records {
		p.Add(r)
	}
	return p
}

// Add inserts or replaces a price.
func (p *Prices) Add(r PriceRecord) {
	k := SeriesKey(r.ItemID, r.StoreID)
	weeks, ok := p.byKey[k]
	if !ok {
		weeks = make(map[int]float64)
		p.byKey[k] = weeks
	}
	if _, exists := weeks[r.WmYrWk]; !exists {
		p.count++
	}
	weeks[r.WmYrWk] = r.SellPrice
	if r.SellPrice > p.max[k] {
		p.max[k] = r.SellPrice
	}
}

// Lookup returns the sell price of an item in a store during a week.
func (p *Prices) Lookup(storeID, itemID string, wmYrWk int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	weeks, ok := p.byKey[SeriesKey(itemID, storeID)]
	if !ok {
		return 0, false
	}
	v, ok := weeks[wmYrWk]
	return v, ok
}

// Max returns the highest recorded price for an item in a store.
func (p *Prices) Max(storeID, itemID string) float64 {
	if p == nil {
		return 0
	}
	return p.max[SeriesKey(itemID, storeID)]
}

// Len is the number of (item, store, week) prices.
func (p *Prices) Len() int {
	if p == nil {
		return 0
	}
	return p.count
}
