package benchmark

import (
	"fmt"
	"strings"
	"time"
)

// Period names a retention window used to select which stored records
// participate in a comparison.
type Period int

const (
	// Last selects only the most recent stored record.
	Last Period = iota
	Hour
	Day
	Week
	// Month is four weeks, not a calendar month.
	Month
	Forever
)

var periodNames = map[Period]string{
	Last:    "last",
	Hour:    "hour",
	Day:     "day",
	Week:    "week",
	Month:   "month",
	Forever: "forever",
}

func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// ParsePeriod converts a CLI/config string into a Period.
func ParsePeriod(s string) (Period, error) {
	for p, name := range periodNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return Last, fmt.Errorf("unknown history period %q (want last, hour, day, week, month or forever)", s)
}

// Cutoff returns the oldest instant still inside the window, relative to now.
// Last degenerates to now itself; Forever selects everything.
func (p Period) Cutoff(now time.Time) time.Time {
	switch p {
	case Hour:
		return now.Add(-time.Hour)
	case Day:
		return now.Add(-24 * time.Hour)
	case Week:
		return now.Add(-7 * 24 * time.Hour)
	case Month:
		return now.Add(-28 * 24 * time.Hour)
	case Forever:
		return time.Time{}
	default:
		return now
	}
}
