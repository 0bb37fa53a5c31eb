package model

// HorizonDays is the number of forecast columns per submission row.
const HorizonDays = 28

// Horizon is a block of consecutive forecast days. Keep Suffix values stable;
// they are part of the submission id format.
type Horizon struct {
	Name     string `json:"name"`
	Suffix   string `json:"suffix"`
	FirstDay int    `json:"first_day"`
	LastDay  int    `json:"last_day"`
}

var (
	ValidationHorizon = Horizon{Name: "validation", Suffix: "validation", FirstDay: 1914, LastDay: 1941}
	EvaluationHorizon = Horizon{Name: "evaluation", Suffix: "evaluation", FirstDay: 1942, LastDay: 1969}
)

// Days is the horizon length.
func (h Horizon) Days() int { return h.LastDay - h.FirstDay + 1 }

// HorizonAfter returns the HorizonDays-long horizon starting the day after lastObserved.
func HorizonAfter(name string, lastObserved int) Horizon {
	return Horizon{Name: name, Suffix: name, FirstDay: lastObserved + 1, LastDay: lastObserved + HorizonDays}
}
