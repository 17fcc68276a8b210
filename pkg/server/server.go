// Package server publishes the team calendars over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/borgmon/ics-importer/pkg/export"
	"github.com/borgmon/ics-importer/pkg/metrics"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/borgmon/ics-importer/pkg/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the calendar subscription server
type Server struct {
	teams   *store.TeamStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	router *mux.Router
	server *http.Server
}

// TeamSummary is one entry of the team listing
type TeamSummary struct {
	Team   string `json:"team"`
	Events int    `json:"events"`
}

// New creates a server for the given store. m may be nil, in which case
// /metrics is not served.
func New(addr string, teams *store.TeamStore, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		teams:   teams,
		metrics: m,
		logger:  logger.Named("server"),
		now:     time.Now,
	}

	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/teams", s.handleTeams).Methods(http.MethodGet)
	router.HandleFunc("/teams/{team}.ics", s.handleTeamCalendar).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	s.router = router
	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	counts := s.teams.Counts()
	teams := make([]TeamSummary, 0, len(routing.AllTeams()))
	for _, team := range routing.AllTeams() {
		teams = append(teams, TeamSummary{Team: team.String(), Events: counts[team]})
	}
	writeJSON(w, teams)
}

func (s *Server) handleTeamCalendar(w http.ResponseWriter, r *http.Request) {
	team, err := routing.ParseTeam(mux.Vars(r)["team"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	data, err := export.Encode(export.TeamCalendar(team, s.teams.Events(team), s.now()))
	if errors.Is(err, export.ErrEmptyCalendar) {
		http.Error(w, "no events for team "+team.String(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to encode team calendar", zap.Stringer("team", team), zap.Error(err))
		http.Error(w, "failed to encode calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+team.String()+`.ics"`)
	_, _ = w.Write(data)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
