// Package metrics exposes Prometheus collectors for feed syncs and routing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the importer collectors on their own registry
type Metrics struct {
	registry *prometheus.Registry

	syncsTotal     *prometheus.CounterVec
	syncDuration   prometheus.Summary
	lastSuccessTS  prometheus.Gauge
	eventsFetched  *prometheus.CounterVec
	eventsFiltered *prometheus.CounterVec
	routedTotal    *prometheus.CounterVec
	teamEvents     *prometheus.GaugeVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.syncsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ics_importer",
		Name:      "syncs_total",
		Help:      "Number of feed syncs by result",
	}, []string{"result"})
	m.syncDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "ics_importer",
		Name:      "sync_duration_seconds",
		Help:      "Time spent fetching, filtering and routing all feeds",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ics_importer",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful sync",
	})
	m.eventsFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ics_importer",
		Name:      "events_fetched_total",
		Help:      "Events parsed from each source",
	}, []string{"source"})
	m.eventsFiltered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ics_importer",
		Name:      "events_filtered_total",
		Help:      "Events dropped by the filter stage by reason",
	}, []string{"reason"})
	m.routedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ics_importer",
		Name:      "routed_events_total",
		Help:      "Team assignments made by the router",
	}, []string{"team"})
	m.teamEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ics_importer",
		Name:      "team_events",
		Help:      "Events currently published per team",
	}, []string{"team"})

	m.registry.MustRegister(
		m.syncsTotal, m.syncDuration, m.lastSuccessTS,
		m.eventsFetched, m.eventsFiltered, m.routedTotal, m.teamEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSync records the outcome of one sync.
func (m *Metrics) ObserveSync(start time.Time, err error) {
	if m == nil {
		return
	}
	m.syncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.syncsTotal.WithLabelValues("error").Inc()
		return
	}
	m.syncsTotal.WithLabelValues("success").Inc()
	m.lastSuccessTS.Set(float64(time.Now().Unix()))
}

// AddFetched counts events read from a source
func (m *Metrics) AddFetched(source string, n int) {
	if m == nil {
		return
	}
	m.eventsFetched.WithLabelValues(source).Add(float64(n))
}

// AddFiltered counts events dropped for the given reason
func (m *Metrics) AddFiltered(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.eventsFiltered.WithLabelValues(reason).Add(float64(n))
}

// IncRouted counts one event routed to the team
func (m *Metrics) IncRouted(team string) {
	if m == nil {
		return
	}
	m.routedTotal.WithLabelValues(team).Inc()
}

// SetTeamEvents replaces the per-team gauge values. Teams missing from
// counts are reset to zero.
func (m *Metrics) SetTeamEvents(teams []string, counts map[string]int) {
	if m == nil {
		return
	}
	for _, team := range teams {
		m.teamEvents.WithLabelValues(team).Set(float64(counts[team]))
	}
}
