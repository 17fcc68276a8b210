package importer

import (
	"context"

	"github.com/borgmon/ics-importer/pkg/calendar"
	"github.com/borgmon/ics-importer/pkg/export"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/store"
	"go.uber.org/zap"
)

// Request holds the settings of one run. Keywords are used as given; the
// caller resolves mode defaults.
type Request struct {
	Sources  []models.ICalSource
	Window   calendar.Window
	Keywords []string
}

func (r Request) criteria() calendar.Criteria {
	return calendar.Criteria{Window: r.Window, ExcludedKeywords: r.Keywords}
}

// File is a written calendar and what it was built from: the feed URL for
// aggregate runs, the team name for team calendars.
type File struct {
	Path  string
	Label string
}

// Invites writes one RSVP invitation for every event of every feed that
// passes the window and keyword filter.
func (im *Importer) Invites(ctx context.Context, req Request, w *export.Writer, invitee export.Invitee) ([]string, error) {
	feeds, err := im.Load(ctx, req.Sources)
	if err != nil {
		return nil, err
	}
	events := im.filter(concat(feeds), req.criteria())
	paths, err := w.WriteInvitations(events, invitee)
	if err != nil {
		return nil, err
	}
	im.logger().Info("wrote invitations", zap.Int("files", len(paths)))
	return paths, nil
}

// Aggregate writes one calendar per feed holding its filtered events.
// Feeds left empty by the filter are skipped.
func (im *Importer) Aggregate(ctx context.Context, req Request, w *export.Writer) ([]File, error) {
	feeds, err := im.Load(ctx, req.Sources)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(feeds))
	for _, feed := range feeds {
		events := im.filter(feed.Events, req.criteria())
		path, err := w.WriteSourceCalendar(feed.Source.URL, events)
		if err != nil {
			return nil, err
		}
		if path == "" {
			im.logger().Info("skipping empty calendar", zap.String("source", feed.Source.Identifier()))
			continue
		}
		files = append(files, File{Path: path, Label: feed.Source.URL})
	}
	return files, nil
}

// BuildTeams loads every feed, keeps the events inside the window and
// routes them. Keywords only restrict age-group teams.
func (im *Importer) BuildTeams(ctx context.Context, req Request) (*store.TeamStore, error) {
	feeds, err := im.Load(ctx, req.Sources)
	if err != nil {
		return nil, err
	}
	events := im.filter(concat(feeds), calendar.Criteria{Window: req.Window})
	return im.Route(ctx, events, req.Keywords)
}

// TeamCalendars writes <team>.ics for every team with at least one event,
// in canonical team order.
func (im *Importer) TeamCalendars(ctx context.Context, req Request, w *export.Writer) ([]File, error) {
	teams, err := im.BuildTeams(ctx, req)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(teams.Teams()))
	for _, team := range teams.Teams() {
		path, err := w.WriteTeamCalendar(team, teams.Events(team))
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path, Label: team.String()})
	}
	im.logger().Info("wrote team calendars", zap.Int("files", len(files)))
	return files, nil
}
