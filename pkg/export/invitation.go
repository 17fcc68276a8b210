package export

import (
	"time"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/emersion/go-ical"
)

// Invitee is the recipient of generated invitations
type Invitee struct {
	Email          string
	Name           string // defaults to Email
	OrganizerEmail string // defaults to Email
}

func (i Invitee) withDefaults() Invitee {
	if i.Name == "" {
		i.Name = i.Email
	}
	if i.OrganizerEmail == "" {
		i.OrganizerEmail = i.Email
	}
	return i
}

// Invitation builds a METHOD:REQUEST calendar asking the invitee to RSVP to
// a single event.
func Invitation(e models.Event, invitee Invitee, now time.Time) *ical.Calendar {
	invitee = invitee.withDefaults()
	cal := newCalendar(inviteProdID, methodRequest)

	ev := baseEvent(e, e.Summary)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.Set(rawProp(ical.PropSequence, "0"))

	organizer := rawProp(ical.PropOrganizer, "MAILTO:"+invitee.OrganizerEmail)
	organizer.Params.Set("CN", invitee.OrganizerEmail)
	ev.Props.Set(organizer)

	attendee := rawProp(ical.PropAttendee, "MAILTO:"+invitee.Email)
	attendee.Params.Set("CN", invitee.Name)
	attendee.Params.Set("ROLE", "REQ-PARTICIPANT")
	attendee.Params.Set("PARTSTAT", "NEEDS-ACTION")
	attendee.Params.Set("RSVP", "TRUE")
	ev.Props.Set(attendee)

	cal.Children = append(cal.Children, ev.Component)
	return cal
}
