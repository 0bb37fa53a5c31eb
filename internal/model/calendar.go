package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar.csv date format.
const DateLayout = "2006-01-02"

// Event is one named event attached to a calendar day.
type Event struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CalendarDay is one row of calendar.csv plus the derived time features.
type CalendarDay struct {
	Date     time.Time `json:"date"`
	WmYrWk   int       `json:"wm_yr_wk"`
	Weekday  string    `json:"weekday"`
	Wday     int       `json:"wday"`
	Month    int       `json:"month"`
	Year     int       `json:"year"`
	D        string    `json:"d"`
	DayIndex int       `json:"day_index"`

	Events []Event `json:"events,omitempty"`

	SnapCA bool `json:"snap_ca"`
	SnapTX bool `json:"snap_tx"`
	SnapWI bool `json:"snap_wi"`

	// Derived from Date.
	Day       int  `json:"day"`
	DayOfWeek int  `json:"dayofweek"` // Monday=0 .. Sunday=6
	Quarter   int  `json:"quarter"`
	IsWeekend bool `json:"is_weekend"`
}

// Derive fills the date-derived fields.
func (c *CalendarDay) Derive() {
	c.Day = c.Date.Day()
	// time.Weekday has Sunday=0; shift so Monday=0.
	c.DayOfWeek = (int(c.Date.Weekday()) + 6) % 7
	c.Quarter = (int(c.Date.Month())-1)/3 + 1
	c.IsWeekend = c.DayOfWeek >= 5
}

// HasEvent reports whether any event falls on the day.
func (c CalendarDay) HasEvent() bool { return len(c.Events) > 0 }

// Snap returns the SNAP flag for a state id (CA, TX, WI).
func (c CalendarDay) Snap(state string) bool {
	switch strings.ToUpper(state) {
	case "CA":
		return c.SnapCA
	case "TX":
		return c.SnapTX
	case "WI":
		return c.SnapWI
	default:
		return false
	}
}

// DayLabel formats a 1-based day index as "d_<n>".
func DayLabel(index int) string {
	return "d_" + strconv.Itoa(index)
}

// ParseDayLabel parses "d_<n>" into n. n must be >= 1.
func ParseDayLabel(label string) (int, error) {
	if !strings.HasPrefix(label, "d_") {
		return 0, fmt.Errorf("invalid day label %q, expected d_<n>", label)
	}
	n, err := strconv.Atoi(label[2:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid day label %q, expected d_<n> with n >= 1", label)
	}
	return n, nil
}

// Calendar is the ordered set of calendar days with lookups by label and index.
type Calendar struct {
	Days []CalendarDay

	byIndex map[int]int
}

// NewCalendar indexes days by their day index.
func NewCalendar(days []CalendarDay) *Calendar {
	c := &Calendar{Days: days, byIndex: make(map[int]int, len(days))}
	for i, d := range days {
		c.byIndex[d.DayIndex] = i
	}
	return c
}

// ByIndex returns the day with the given 1-based index.
func (c *Calendar) ByIndex(dayIndex int) (CalendarDay, bool) {
	if c == nil {
		return CalendarDay{}, false
	}
	i, ok := c.byIndex[dayIndex]
	if !ok {
		return CalendarDay{}, false
	}
	return c.Days[i], true
}

// LastDay returns the largest day index in the calendar.
func (c *Calendar) LastDay() int {
	last := 0
	if c == nil {
		return last
	}
	for _, d := range c.Days {
		if d.DayIndex > last {
			last = d.DayIndex
		}
	}
	return last
}
