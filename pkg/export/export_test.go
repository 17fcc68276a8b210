package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/borgmon/ics-importer/pkg/calendar"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleEvent(id, summary string) models.Event {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.Event{
		ID:        id,
		Summary:   summary,
		Location:  "Sporthalle Nord",
		URL:       "https://example.org/events/" + id,
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
		Status:    "CONFIRMED",
		SourceID:  "https://calendar.google.com/basic.ics",
	}
}

func decode(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func propText(t *testing.T, props ical.Props, name string) string {
	t.Helper()
	prop := props.Get(name)
	require.NotNil(t, prop, name)
	text, err := prop.Text()
	require.NoError(t, err)
	return text
}

func TestTeamCalendar(t *testing.T) {
	events := []models.Event{
		sampleEvent("a", "GETSGOstart heute"),
		sampleEvent("b", "Training, U11"),
	}

	data, err := Encode(TeamCalendar(routing.TeamU11, events, fixedNow))
	require.NoError(t, err)

	cal := decode(t, data)
	assert.Equal(t, teamProdID, propText(t, cal.Props, ical.PropProductID))
	assert.Equal(t, "2.0", propText(t, cal.Props, ical.PropVersion))
	assert.Equal(t, "GREGORIAN", propText(t, cal.Props, ical.PropCalendarScale))
	assert.Equal(t, methodPublish, propText(t, cal.Props, ical.PropMethod))
	assert.Equal(t, "Team U11", propText(t, cal.Props, propName))
	assert.Equal(t, "Team U11", propText(t, cal.Props, propCalName))

	parsed, err := calendar.ParseEvents(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "GetsGoStart heute", parsed[0].Summary)
	assert.Equal(t, "Training, U11", parsed[1].Summary)
	assert.Equal(t, events[0].StartTime, parsed[0].StartTime)
	assert.Equal(t, events[0].EndTime, parsed[0].EndTime)
	assert.Equal(t, events[0].URL, parsed[0].URL)
	assert.Equal(t, fixedNow, parsed[0].Stamp)
}

func TestSourceCalendar_KeepsSummary(t *testing.T) {
	data, err := Encode(SourceCalendar("Google Calendar", []models.Event{sampleEvent("a", "getsgo start")}, fixedNow))
	require.NoError(t, err)

	cal := decode(t, data)
	assert.Equal(t, sourceProdID, propText(t, cal.Props, ical.PropProductID))
	assert.Equal(t, "Google Calendar", propText(t, cal.Props, propCalName))

	parsed, err := calendar.ParseEvents(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "getsgo start", parsed[0].Summary)
}

func TestPublishedStampFallback(t *testing.T) {
	modified := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)
	e := sampleEvent("a", "Training")
	e.LastModified = modified

	data, err := Encode(SourceCalendar("X", []models.Event{e}, fixedNow))
	require.NoError(t, err)

	parsed, err := calendar.ParseEvents(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, modified, parsed[0].Stamp)
	assert.Equal(t, modified, parsed[0].LastModified)
}

func TestInvitation(t *testing.T) {
	data, err := Encode(Invitation(sampleEvent("evt-1", "Spieltag"), Invitee{Email: "coach@example.org"}, fixedNow))
	require.NoError(t, err)

	cal := decode(t, data)
	assert.Equal(t, inviteProdID, propText(t, cal.Props, ical.PropProductID))
	assert.Equal(t, methodRequest, propText(t, cal.Props, ical.PropMethod))
	require.Len(t, cal.Children, 1)

	ev := cal.Children[0]
	assert.Equal(t, "0", ev.Props.Get(ical.PropSequence).Value)

	organizer := ev.Props.Get(ical.PropOrganizer)
	require.NotNil(t, organizer)
	assert.Equal(t, "MAILTO:coach@example.org", organizer.Value)
	assert.Equal(t, "coach@example.org", organizer.Params.Get("CN"))

	attendee := ev.Props.Get(ical.PropAttendee)
	require.NotNil(t, attendee)
	assert.Equal(t, "MAILTO:coach@example.org", attendee.Value)
	assert.Equal(t, "coach@example.org", attendee.Params.Get("CN"))
	assert.Equal(t, "REQ-PARTICIPANT", attendee.Params.Get("ROLE"))
	assert.Equal(t, "NEEDS-ACTION", attendee.Params.Get("PARTSTAT"))
	assert.Equal(t, "TRUE", attendee.Params.Get("RSVP"))

	stamp, err := ev.Props.Get(ical.PropDateTimeStamp).DateTime(time.UTC)
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(stamp))
}

func TestInvitation_ExplicitNames(t *testing.T) {
	invitee := Invitee{Email: "kim@example.org", Name: "Kim", OrganizerEmail: "verein@example.org"}
	data, err := Encode(Invitation(sampleEvent("evt-1", "Spieltag"), invitee, fixedNow))
	require.NoError(t, err)

	ev := decode(t, data).Children[0]
	assert.Equal(t, "MAILTO:verein@example.org", ev.Props.Get(ical.PropOrganizer).Value)
	assert.Equal(t, "Kim", ev.Props.Get(ical.PropAttendee).Params.Get("CN"))
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(TeamCalendar(routing.TeamU9, nil, fixedNow))
	assert.ErrorIs(t, err, ErrEmptyCalendar)
}

func TestSourceBaseName(t *testing.T) {
	tests := map[string]string{
		"https://calendar.google.com/calendar/ical/x/basic.ics": "google",
		"https://app.vereinsplaner.at/feed/123":                 "vereinsplaner",
		"https://example.org/cal/hallenplan.ics":                "hallenplan",
		"https://example.org/cal/hallen+plan!.ics":              "hallenplan",
		"https://example.org/":                                  "calendar",
	}
	for in, want := range tests {
		assert.Equal(t, want, SourceBaseName(in), in)
	}
}

func TestWriter_WriteInvitations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "invites")
	w := &Writer{Dir: dir, Now: func() time.Time { return fixedNow }}
	events := []models.Event{
		sampleEvent("abc@google.com", "A"),
		sampleEvent("abc@google.com", "B"),
		sampleEvent("@@@", "C"),
	}

	paths, err := w.WriteInvitations(events, Invitee{Email: "coach@example.org"})
	require.NoError(t, err)

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"abcgooglecom.ics", "abcgooglecom_2.ics", "event.ics"}, names)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))
}

func TestWriter_WriteSourceCalendar(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Now: func() time.Time { return fixedNow }}
	url := "https://calendar.google.com/calendar/ical/x/basic.ics"

	first, err := w.WriteSourceCalendar(url, []models.Event{sampleEvent("a", "A")})
	require.NoError(t, err)
	second, err := w.WriteSourceCalendar(url, []models.Event{sampleEvent("b", "B")})
	require.NoError(t, err)
	empty, err := w.WriteSourceCalendar(url, nil)
	require.NoError(t, err)

	assert.Equal(t, "google.ics", filepath.Base(first))
	assert.Equal(t, "google_2.ics", filepath.Base(second))
	assert.Empty(t, empty)
}

func TestWriter_WriteTeamCalendar(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Now: func() time.Time { return fixedNow }}

	path, err := w.WriteTeamCalendar(routing.TeamU12Dot1, []models.Event{sampleEvent("a", "U12.1 Training")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "U12.1.ics"), path)

	path, err = w.WriteTeamCalendar(routing.TeamWU14, nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	_, err = os.Stat(filepath.Join(dir, "wU14.ics"))
	assert.True(t, os.IsNotExist(err))
}
