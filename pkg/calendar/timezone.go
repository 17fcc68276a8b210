package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Map of common Windows timezone names to IANA timezone names
var windowsToIANA = map[string]string{
	"W. Europe Standard Time":      "Europe/Berlin",
	"Central Europe Standard Time": "Europe/Budapest",
	"Romance Standard Time":        "Europe/Paris",
	"GMT Standard Time":            "Europe/London",
	"E. Europe Standard Time":      "Europe/Chisinau",
	"Pacific Standard Time":        "America/Los_Angeles",
	"Mountain Standard Time":       "America/Denver",
	"Central Standard Time":        "America/Chicago",
	"Eastern Standard Time":        "America/New_York",
	"UTC":                          "UTC",
}

// dateTimeProps are the properties whose TZID parameter gets normalized
var dateTimeProps = []string{
	ical.PropDateTimeStart,
	ical.PropDateTimeEnd,
	ical.PropCreated,
	ical.PropLastModified,
	ical.PropDateTimeStamp,
}

// normalizeComponentTimezones rewrites Windows timezone names in a component
// to their IANA equivalents so go-ical can load them
func normalizeComponentTimezones(comp *ical.Component) {
	for _, name := range dateTimeProps {
		for i := range comp.Props[name] {
			normalizePropTimezone(&comp.Props[name][i])
		}
	}
}

func normalizePropTimezone(prop *ical.Prop) {
	tzid := strings.Trim(prop.Params.Get(ical.ParamTimezoneID), `"`)
	if tzid == "" {
		return
	}
	if ianaName, ok := windowsToIANA[tzid]; ok {
		prop.Params.Set(ical.ParamTimezoneID, ianaName)
	}
}

// propLocation tries to determine the timezone a raw datetime value is
// written in. Floating and unknown zones fall back to UTC.
func propLocation(prop *ical.Prop) *time.Location {
	if tzid := prop.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if ianaName, ok := windowsToIANA[tzid]; ok {
			tzid = ianaName
		}
		if loc, err := time.LoadLocation(tzid); err == nil {
			return loc
		}
	}
	return time.UTC
}
