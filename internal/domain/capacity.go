package domain

// DayLayout is the calendar-day format used for capacity override keys,
// query parameters, and mined consumption days.
const DayLayout = "2006-01-02"

// DailyCapacityConfig holds the per-day order caps for one product inside
// one event.
//
// DefaultLimit nil means unlimited. An entry in Overrides always wins over
// DefaultLimit, whatever its value: 0 blocks the day entirely and a nil value
// lifts the limit for that day. A missing key is not the same as a nil value.
type DailyCapacityConfig struct {
	HasLimit     bool            `json:"hasLimit"`
	DefaultLimit *int            `json:"defaultLimit"`
	Overrides    map[string]*int `json:"overrides,omitempty"`
}

// LimitFor returns the effective limit for day ("2006-01-02").
// A nil result means the day is unlimited.
func (c DailyCapacityConfig) LimitFor(day string) *int {
	if v, ok := c.Overrides[day]; ok {
		return v
	}
	return c.DefaultLimit
}
