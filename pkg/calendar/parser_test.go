package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsFixture(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

var sampleCalendar = icsFixture(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//Test//Test//EN",
	"BEGIN:VEVENT",
	"UID:event-1",
	"SUMMARY:Training U12",
	"DESCRIPTION:Halle 2",
	"LOCATION:Sporthalle Nord",
	"DTSTART:20250115T170000Z",
	"DTEND:20250115T183000Z",
	"DTSTAMP:20250101T120000Z",
	"STATUS:CONFIRMED",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:event-2",
	"SUMMARY:Spieltag wU14",
	"DTSTART;TZID=W. Europe Standard Time:20250301T100000",
	"DTEND;TZID=W. Europe Standard Time:20250301T120000",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"SUMMARY:Ohne UID",
	"DTSTART:20250110T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:no-start",
	"SUMMARY:Kein Start",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:backwards",
	"SUMMARY:Training\\, U11",
	"DTSTART:20250120T170000Z",
	"DTEND:20250120T160000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:all-day",
	"SUMMARY:Turnier",
	"DTSTART;VALUE=DATE:20250201",
	"DTEND;VALUE=DATE:20250202",
	"END:VEVENT",
	"BEGIN:VTODO",
	"UID:todo-1",
	"SUMMARY:Trikots waschen",
	"END:VTODO",
	"END:VCALENDAR",
)

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(sampleCalendar))
	require.NoError(t, err)
	require.Len(t, events, 5)

	t.Run("properties", func(t *testing.T) {
		e := events[0]
		assert.Equal(t, "event-1", e.ID)
		assert.Equal(t, "Training U12", e.Summary)
		assert.Equal(t, "Halle 2", e.Description)
		assert.Equal(t, "Sporthalle Nord", e.Location)
		assert.Equal(t, "CONFIRMED", e.Status)
		assert.Equal(t, time.Date(2025, 1, 15, 17, 0, 0, 0, time.UTC), e.StartTime)
		assert.Equal(t, time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC), e.EndTime)
		assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), e.Stamp)
	})

	t.Run("windows timezone", func(t *testing.T) {
		e := events[1]
		assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), e.StartTime)
		assert.Equal(t, time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC), e.EndTime)
	})

	t.Run("generated uid", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(events[2].ID, "generated-"), events[2].ID)
		assert.True(t, events[2].EndTime.Equal(events[2].StartTime))
	})

	t.Run("end before start", func(t *testing.T) {
		e := events[3]
		assert.Equal(t, "backwards", e.ID)
		assert.Equal(t, "Training, U11", e.Summary)
		assert.Equal(t, e.StartTime, e.EndTime)
	})

	t.Run("all day", func(t *testing.T) {
		e := events[4]
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), e.StartTime)
		assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), e.EndTime)
	})

	for _, e := range events {
		assert.Equal(t, time.UTC, e.StartTime.Location(), e.ID)
	}
}

func TestParseEvents_GeneratedIDsAreUnique(t *testing.T) {
	calendar := icsFixture(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:A",
		"DTSTART:20250110T090000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:B",
		"DTSTART:20250111T090000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseEvents(strings.NewReader(calendar))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestParseEvents_Empty(t *testing.T) {
	calendar := icsFixture(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"END:VCALENDAR",
	)

	events, err := ParseEvents(strings.NewReader(calendar))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseEvents_Malformed(t *testing.T) {
	_, err := ParseEvents(strings.NewReader("BEGIN:VCALENDAR\r\nthis is not a content line\r\n"))
	assert.Error(t, err)
}
