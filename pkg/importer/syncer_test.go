package importer

import (
	"context"
	"testing"
	"time"

	"github.com/borgmon/ics-importer/pkg/metrics"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncer(loader *fakeLoader) *Syncer {
	im := New(loader, nil)
	im.Metrics = metrics.New()
	req := Request{Sources: sources(), Keywords: models.DefaultExcludeKeywords(models.ModeTeamCalendars)}
	return NewSyncer(im, req, time.Hour, nil)
}

func TestSyncer_Sync(t *testing.T) {
	s := newSyncer(newFixture())

	require.NoError(t, s.Sync(context.Background()))

	assert.Contains(t, s.Store.Teams(), routing.TeamU10)
	assert.Len(t, s.Store.Events(routing.TeamU12Dot1), 2)
}

func TestSyncer_FailedSyncKeepsPreviousStore(t *testing.T) {
	loader := newFixture()
	s := newSyncer(loader)
	require.NoError(t, s.Sync(context.Background()))
	before := s.Store.Teams()

	loader.fail(errBoom)
	err := s.Sync(context.Background())

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, s.Store.Teams())
}

func TestSyncer_RunStopsOnCancel(t *testing.T) {
	s := newSyncer(newFixture())
	s.Interval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Store.Len() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("syncer did not stop")
	}
}
