package importer

import (
	"context"
	"time"

	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/borgmon/ics-importer/pkg/store"
	"go.uber.org/zap"
)

// DefaultInterval is used when a syncer has no positive interval
const DefaultInterval = 30 * time.Minute

// Syncer keeps a team store current by rebuilding it periodically
type Syncer struct {
	Importer *Importer
	Request  Request
	Interval time.Duration
	Store    *store.TeamStore
	Logger   *zap.Logger
}

// NewSyncer creates a syncer publishing into a fresh store
func NewSyncer(im *Importer, req Request, interval time.Duration, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		Importer: im,
		Request:  req,
		Interval: interval,
		Store:    store.NewTeamStore(),
		Logger:   logger.Named("syncer"),
	}
}

// Sync rebuilds the team store once. On failure the previous contents are
// kept.
func (s *Syncer) Sync(ctx context.Context) error {
	start := time.Now()
	teams, err := s.Importer.BuildTeams(ctx, s.Request)
	s.Importer.Metrics.ObserveSync(start, err)
	if err != nil {
		s.Logger.Error("sync failed, keeping previous calendars", zap.Error(err))
		return err
	}

	s.Store.Replace(teams)

	counts := make(map[string]int)
	for team, n := range s.Store.Counts() {
		counts[team.String()] = n
	}
	names := make([]string, 0, len(routing.AllTeams()))
	for _, team := range routing.AllTeams() {
		names = append(names, team.String())
	}
	s.Importer.Metrics.SetTeamEvents(names, counts)

	s.Logger.Info("sync complete",
		zap.Int("events", s.Store.Len()),
		zap.Int("teams", len(counts)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Run syncs once, then on every tick until ctx is done. Sync errors are
// logged and do not stop the loop.
func (s *Syncer) Run(ctx context.Context) {
	_ = s.Sync(ctx)

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Sync(ctx)
		}
	}
}
