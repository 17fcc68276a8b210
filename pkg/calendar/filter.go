package calendar

import (
	"strings"
	"time"

	"github.com/borgmon/ics-importer/pkg/models"
)

// Window is an inclusive range of start times. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether an event starting at t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Criteria selects the events that survive filtering
type Criteria struct {
	Window           Window
	ExcludedKeywords []string // case-sensitive substrings of the summary
}

// Stats counts filter decisions
type Stats struct {
	Total         int
	Included      int
	OutsideWindow int
	Keyword       int
}

// Filter returns the events, in input order, that start inside the window
// and whose summary contains none of the excluded keywords.
func Filter(events []models.Event, criteria Criteria) []models.Event {
	included, _ := FilterWithStats(events, criteria)
	return included
}

// FilterWithStats is Filter that also reports why events were dropped. An
// event failing both checks is counted as outside the window.
func FilterWithStats(events []models.Event, criteria Criteria) ([]models.Event, Stats) {
	stats := Stats{Total: len(events)}
	included := make([]models.Event, 0, len(events))
	for _, event := range events {
		if !criteria.Window.Contains(event.StartTime) {
			stats.OutsideWindow++
			continue
		}
		if MatchesKeyword(event.Summary, criteria.ExcludedKeywords) {
			stats.Keyword++
			continue
		}
		included = append(included, event)
	}
	stats.Included = len(included)
	return included, stats
}

// MatchesKeyword reports whether summary contains any of the keywords.
// Empty keywords never match.
func MatchesKeyword(summary string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(summary, keyword) {
			return true
		}
	}
	return false
}
