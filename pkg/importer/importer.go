// Package importer wires the pipeline together: it loads feeds, filters
// their events, routes them to teams and hands the result to the exporter.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/borgmon/ics-importer/pkg/calendar"
	"github.com/borgmon/ics-importer/pkg/metrics"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/borgmon/ics-importer/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the routing pool size used when none is configured
const DefaultWorkers = 4

// ErrNoSources is returned when a run has no feeds to read
var ErrNoSources = errors.New("no calendar sources configured")

// Loader fetches the events of one source
type Loader interface {
	FetchEvents(ctx context.Context, source models.ICalSource) ([]models.Event, error)
}

// Feed is a source together with the events read from it
type Feed struct {
	Source models.ICalSource
	Events []models.Event
}

// Importer runs the pipeline against a set of sources
type Importer struct {
	Loader  Loader
	Router  *routing.Router
	Workers int
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// New creates an importer using the default rule table
func New(loader Loader, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		Loader:  loader,
		Router:  routing.NewRouter(),
		Workers: DefaultWorkers,
		Logger:  logger.Named("importer"),
	}
}

// Load fetches all sources concurrently. Feeds come back in source order;
// the first failure cancels the remaining fetches and is returned.
func (im *Importer) Load(ctx context.Context, sources []models.ICalSource) ([]Feed, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	for _, source := range sources {
		if !source.Validate() {
			return nil, fmt.Errorf("source %q: missing url", source.Name)
		}
	}

	feeds := make([]Feed, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			events, err := im.Loader.FetchEvents(ctx, source)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", source.URL, err)
			}
			feeds[i] = Feed{Source: source, Events: events}
			im.Metrics.AddFetched(source.Identifier(), len(events))
			im.logger().Info("synced events",
				zap.String("source", source.Identifier()),
				zap.Int("events", len(events)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

// Route assigns every event to its teams on a bounded worker pool. For
// age-group teams the membership is dropped when the summary contains one
// of the keywords. Events keep their input order within each team.
func (im *Importer) Route(ctx context.Context, events []models.Event, keywords []string) (*store.TeamStore, error) {
	router := im.Router
	if router == nil {
		router = routing.NewRouter()
	}
	workers := im.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	teams := store.NewTeamStore()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for seq, event := range events {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assigned := im.teamsFor(router, event, keywords)
			teams.Assign(seq, event, assigned)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (im *Importer) teamsFor(router *routing.Router, event models.Event, keywords []string) []routing.Team {
	decision := router.Trace(event.Summary, event.SourceURL)
	routed := decision.Teams.Sorted()
	assigned := make([]routing.Team, 0, len(routed))
	for _, team := range routed {
		if team.AgeGroup() && calendar.MatchesKeyword(event.Summary, keywords) {
			im.logger().Debug("dropped by keyword",
				zap.String("event", event.Key()),
				zap.String("summary", event.Summary),
				zap.Stringer("team", team))
			continue
		}
		assigned = append(assigned, team)
		im.Metrics.IncRouted(team.String())
	}
	if len(assigned) > 0 {
		im.logger().Debug("routed event",
			zap.String("event", event.Key()),
			zap.String("summary", event.Summary),
			zap.Stringers("teams", assigned),
			zap.Strings("rules", decision.Fired),
			zap.Stringers("excluded", decision.Excluded))
	}
	return assigned
}

func (im *Importer) filter(events []models.Event, criteria calendar.Criteria) []models.Event {
	included, stats := calendar.FilterWithStats(events, criteria)
	im.Metrics.AddFiltered("window", stats.OutsideWindow)
	im.Metrics.AddFiltered("keyword", stats.Keyword)
	im.logger().Info("filtered events",
		zap.Int("total", stats.Total),
		zap.Int("included", stats.Included),
		zap.Int("outside_window", stats.OutsideWindow),
		zap.Int("keyword", stats.Keyword))
	return included
}

func (im *Importer) logger() *zap.Logger {
	if im.Logger == nil {
		return zap.NewNop()
	}
	return im.Logger
}

func concat(feeds []Feed) []models.Event {
	n := 0
	for _, feed := range feeds {
		n += len(feed.Events)
	}
	events := make([]models.Event, 0, n)
	for _, feed := range feeds {
		events = append(events, feed.Events...)
	}
	return events
}
