package models

import "time"

// Event represents a calendar event read from an iCal feed
type Event struct {
	ID           string    // iCal event UID
	Summary      string    // Event title/summary, raw as found in the feed
	Description  string    // Event description
	Location     string    // Event location
	URL          string    // Event URL
	StartTime    time.Time // Event start time (UTC)
	EndTime      time.Time // Event end time (UTC)
	Status       string    // Event status (CONFIRMED, CANCELLED, TENTATIVE)
	Transparency string    // TRANSP value (OPAQUE, TRANSPARENT)
	Created      time.Time // zero when absent
	LastModified time.Time // zero when absent
	Stamp        time.Time // DTSTAMP, zero when absent
	SourceID     string    // ID of the iCal source this event came from
	SourceURL    string    // URL of the feed the event was read from
}

// Key identifies an event across sources
func (e Event) Key() string {
	return e.SourceID + "|" + e.ID
}

// StampOrFallback returns the DTSTAMP to publish for the event: its own
// stamp, else last-modified, else created, else now.
func (e Event) StampOrFallback(now time.Time) time.Time {
	for _, t := range []time.Time{e.Stamp, e.LastModified, e.Created} {
		if !t.IsZero() {
			return t
		}
	}
	return now
}
