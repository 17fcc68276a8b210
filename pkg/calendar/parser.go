package calendar

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseEvents decodes every VEVENT in an iCalendar stream. Events without
// a start time are skipped. All times are returned in UTC.
func ParseEvents(r io.Reader) ([]models.Event, error) {
	return parseEvents(r, zap.NewNop())
}

func parseEvents(r io.Reader, logger *zap.Logger) ([]models.Event, error) {
	decoder := ical.NewDecoder(r)
	events := []models.Event{}
	stats := &parseStats{}

	for {
		cal, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		logger.Debug("calendar decoded", zap.Int("children", len(cal.Children)))

		for _, comp := range cal.Children {
			stats.totalComponents++
			if comp.Name != ical.CompEvent {
				continue
			}
			stats.totalEvents++

			normalizeComponentTimezones(comp)
			event, ok := parseEvent(comp)
			if !ok {
				stats.skippedMissingStart++
				logger.Debug("skipping event without start time", zap.String("summary", event.Summary))
				continue
			}
			if event.ID == "" {
				event.ID = generateUID()
				stats.generatedIDs++
			}
			events = append(events, event)
		}
	}

	stats.logSummary(logger, len(events))
	return events, nil
}

// parseEvent extracts an event from a VEVENT. The second return value is
// false when the component has no usable DTSTART.
func parseEvent(comp *ical.Component) (models.Event, bool) {
	event := models.Event{
		ID:           textProp(comp, ical.PropUID),
		Summary:      textProp(comp, ical.PropSummary),
		Description:  textProp(comp, ical.PropDescription),
		Location:     textProp(comp, ical.PropLocation),
		URL:          textProp(comp, ical.PropURL),
		Status:       textProp(comp, ical.PropStatus),
		Transparency: textProp(comp, ical.PropTransparency),
		Created:      timeProp(comp, ical.PropCreated),
		LastModified: timeProp(comp, ical.PropLastModified),
		Stamp:        timeProp(comp, ical.PropDateTimeStamp),
	}

	event.StartTime = timeProp(comp, ical.PropDateTimeStart)
	if event.StartTime.IsZero() {
		return event, false
	}

	event.EndTime = timeProp(comp, ical.PropDateTimeEnd)
	if event.EndTime.IsZero() || event.EndTime.Before(event.StartTime) {
		event.EndTime = event.StartTime
	}

	return event, true
}

func textProp(comp *ical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	if text, err := prop.Text(); err == nil {
		return text
	}
	return prop.Value
}

// timeProp returns the property as a UTC instant, or the zero time when the
// property is missing or unparseable.
func timeProp(comp *ical.Component, name string) time.Time {
	prop := comp.Props.Get(name)
	if prop == nil {
		return time.Time{}
	}
	t, err := parseDateTimeProperty(prop)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDateTimeProperty(prop *ical.Prop) (time.Time, error) {
	// Date-only values come back as midnight in the given location
	if t, err := prop.DateTime(time.UTC); err == nil {
		return t.UTC(), nil
	}

	// If that fails, try parsing the raw value directly
	value := prop.Value
	loc := propLocation(prop)

	formats := []string{
		"20060102T150405Z",    // UTC format
		"20060102T150405",     // Basic format: YYYYMMDDTHHMMSS
		"20060102",            // Date only
		time.RFC3339,          // Standard RFC3339
		"2006-01-02T15:04:05", // ISO 8601 without timezone
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", value)
}

func generateUID() string {
	return "generated-" + uuid.NewString()
}

type parseStats struct {
	totalComponents     int
	totalEvents         int
	skippedMissingStart int
	generatedIDs        int
}

func (s *parseStats) logSummary(logger *zap.Logger, includedCount int) {
	logger.Info("parsed calendar",
		zap.Int("components", s.totalComponents),
		zap.Int("events", s.totalEvents),
		zap.Int("included", includedCount),
		zap.Int("skipped_missing_start", s.skippedMissingStart),
		zap.Int("generated_ids", s.generatedIDs),
	)
}
