// Package export serializes events into iCalendar documents: published team
// and source calendars, and per-event RSVP invitations.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/emersion/go-ical"
)

const (
	teamProdID   = "-//icsImporter//Team Calendar Export//EN"
	sourceProdID = "-//icsImporter//Calendar Export//EN"
	inviteProdID = "-//icsImporter//Invite Generator//EN"

	methodPublish = "PUBLISH"
	methodRequest = "REQUEST"

	propName    = "NAME"
	propCalName = "X-WR-CALNAME"
)

// ErrEmptyCalendar is returned when encoding a calendar without events
var ErrEmptyCalendar = errors.New("calendar has no events")

// TeamCalendar builds the published calendar of a team. Summaries are
// normalized for display.
func TeamCalendar(team routing.Team, events []models.Event, now time.Time) *ical.Calendar {
	cal := newCalendar(teamProdID, methodPublish)
	setCalendarName(cal, "Team "+team.String())
	for _, e := range events {
		cal.Children = append(cal.Children, publishedEvent(e, routing.NormalizeSummary(e.Summary), now).Component)
	}
	return cal
}

// SourceCalendar builds the published calendar re-exporting one feed.
func SourceCalendar(name string, events []models.Event, now time.Time) *ical.Calendar {
	cal := newCalendar(sourceProdID, methodPublish)
	setCalendarName(cal, name)
	for _, e := range events {
		cal.Children = append(cal.Children, publishedEvent(e, e.Summary, now).Component)
	}
	return cal
}

// Encode serializes a calendar. Calendars without children are rejected
// with ErrEmptyCalendar.
func Encode(cal *ical.Calendar) ([]byte, error) {
	if len(cal.Children) == 0 {
		return nil, ErrEmptyCalendar
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func newCalendar(prodID, method string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, method)
	return cal
}

func setCalendarName(cal *ical.Calendar, name string) {
	cal.Props.Set(plainText(propName, name))
	cal.Props.Set(plainText(propCalName, name))
}

func publishedEvent(e models.Event, summary string, now time.Time) *ical.Event {
	ev := baseEvent(e, summary)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, e.StampOrFallback(now).UTC())
	return ev
}

// baseEvent copies the fields shared by every export. DTSTAMP is left to
// the caller.
func baseEvent(e models.Event, summary string) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, e.ID)
	if summary != "" {
		ev.Props.SetText(ical.PropSummary, summary)
	}
	if e.Description != "" {
		ev.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		ev.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.URL != "" {
		ev.Props.Set(rawProp(ical.PropURL, e.URL))
	}
	ev.Props.SetDateTime(ical.PropDateTimeStart, e.StartTime.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, e.EndTime.UTC())
	if e.Status != "" {
		ev.Props.SetText(ical.PropStatus, e.Status)
	}
	if e.Transparency != "" {
		ev.Props.SetText(ical.PropTransparency, e.Transparency)
	}
	if !e.Created.IsZero() {
		ev.Props.SetDateTime(ical.PropCreated, e.Created.UTC())
	}
	if !e.LastModified.IsZero() {
		ev.Props.SetDateTime(ical.PropLastModified, e.LastModified.UTC())
	}
	return ev
}

// plainText is an escaped TEXT property without a VALUE parameter, for
// properties go-ical has no default type for.
func plainText(name, text string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetText(text)
	delete(prop.Params, ical.ParamValue)
	return prop
}

// rawProp stores value verbatim.
func rawProp(name, value string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = value
	return prop
}
