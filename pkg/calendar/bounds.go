package calendar

import (
	"fmt"
	"strings"
	"time"
)

// BoundSide tells ParseBound which end of a day a bare date stands for
type BoundSide int

const (
	StartBound BoundSide = iota // midnight at the start of the day
	EndBound                    // last instant of the day
)

var datetimeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseBound parses a window bound given as an ISO date (YYYY-MM-DD) or
// datetime. Datetimes without an offset are taken as UTC. A bare date covers
// the whole day: StartBound yields 00:00:00 and EndBound yields the last
// nanosecond before the next midnight, both in UTC. An empty value is an
// open bound and yields the zero time.
func ParseBound(value string, side BoundSide) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	if strings.Contains(value, "T") {
		for _, format := range datetimeFormats {
			if t, err := time.ParseInLocation(format, value, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid datetime value: %s", value)
	}

	day, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value: %s", value)
	}
	if side == EndBound {
		return EndOfDay(day), nil
	}
	return day, nil
}

// EndOfDay returns the last instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(24*time.Hour - time.Nanosecond)
}
