package data

import (
	"m5-forecast/internal/model"
)

// ItemInfo places an item in the product hierarchy.
type ItemInfo struct {
	DeptID string `json:"dept_id"`
	CatID  string `json:"cat_id"`
}

// Hierarchy is the product and location structure of a sales table.
// Lists are unique and in first-seen order.
type Hierarchy struct {
	States      []string `json:"states"`
	Stores      []string `json:"stores"`
	Categories  []string `json:"categories"`
	Departments []string `json:"departments"`
	Items       []string `json:"items"`

	StoreState    map[string]string   `json:"store_state_mapping"`
	ItemHierarchy map[string]ItemInfo `json:"item_hierarchy"`
}

type uniq struct {
	seen map[string]bool
	list []string
}

func (u *uniq) add(s string) {
	if u.seen == nil {
		u.seen = map[string]bool{}
	}
	if u.seen[s] {
		return
	}
	u.seen[s] = true
	u.list = append(u.list, s)
}

func (u *uniq) values() []string {
	if u.list == nil {
		return []string{}
	}
	return u.list
}

// BuildHierarchy extracts the hierarchy from sales rows.
func BuildHierarchy(sales []model.SalesSeries) *Hierarchy {
	var states, stores, cats, depts, items uniq
	h := &Hierarchy{
		StoreState:    map[string]string{},
		ItemHierarchy: map[string]ItemInfo{},
	}
	for _, s := range sales {
		states.add(s.StateID)
		stores.add(s.StoreID)
		cats.add(s.CatID)
		depts.add(s.DeptID)
		items.add(s.ItemID)
		if _, ok := h.StoreState[s.StoreID]; !ok {
			h.StoreState[s.StoreID] = s.StateID
		}
		if _, ok := h.ItemHierarchy[s.ItemID]; !ok {
			h.ItemHierarchy[s.ItemID] = ItemInfo{DeptID: s.DeptID, CatID: s.CatID}
		}
	}
	h.States = states.values()
	h.Stores = stores.values()
	h.Categories = cats.values()
	h.Departments = depts.values()
	h.Items = items.values()
	return h
}

// SaveHierarchy writes a hierarchy snapshot as JSON.
func SaveHierarchy(h *Hierarchy, path string) error {
	return SaveJSON(path, h)
}
