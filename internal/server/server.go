// Package server exposes the admin HTTP surface: health, Prometheus
// metrics, and a read-only JSON API over the tracker. The read API is the
// hook for external triggers (reminder senders, dashboards); it never
// mutates state.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
	"multazim/internal/version"
)

const maxWindowDays = 90

// Server represents the admin API server.
type Server struct {
	addr      string
	router    *chi.Mux
	server    *http.Server
	service   *tracker.Service
	registry  *prom.Registry
	startTime time.Time
}

// New creates a new admin server. registry may be nil when metrics are
// disabled; the /metrics route is then omitted.
func New(addr string, service *tracker.Service, registry *prom.Registry) *Server {
	s := &Server{
		addr:      addr,
		router:    chi.NewRouter(),
		service:   service,
		registry:  registry,
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/healthz", s.handleHealth)

	if s.registry != nil {
		s.router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/week", s.handleWeek)
	})
}

// Start starts the admin server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	if derrors.IsCategory(err, derrors.CategoryValidation) {
		code = http.StatusBadRequest
		msg = "invalid request"
	} else if derrors.IsCategory(err, derrors.CategoryStorage) {
		code = http.StatusServiceUnavailable
		msg = "storage unavailable"
	}
	s.writeJSON(w, code, Response{Success: false, Error: msg})
}

type healthData struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: healthData{
			Status:  "healthy",
			Version: version.Version,
			Uptime:  time.Since(s.startTime).Seconds(),
		},
	})
}

type statusData struct {
	UserID string                  `json:"user_id"`
	Date   string                  `json:"date"`
	Tasks  map[tracker.TaskID]bool `json:"tasks"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	now := time.Now()

	rec, err := s.service.Status(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: statusData{
			UserID: userID,
			Date:   tracker.DateKey(now, s.service.Location()),
			Tasks:  rec,
		},
	})
}

type weekDay struct {
	Date    string                  `json:"date"`
	Weekday string                  `json:"weekday"`
	Tasks   map[tracker.TaskID]bool `json:"tasks"`
}

type weekData struct {
	UserID string    `json:"user_id"`
	Days   []weekDay `json:"days"`
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	days := tracker.DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWindowDays {
			s.writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "days must be between 1 and 90"})
			return
		}
		days = n
	}

	window, err := s.service.Week(r.Context(), userID, time.Now(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := weekData{UserID: userID, Days: make([]weekDay, 0, len(window))}
	for _, entry := range window {
		out.Days = append(out.Days, weekDay{
			Date:    entry.Date,
			Weekday: entry.Weekday.String(),
			Tasks:   entry.Record,
		})
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: out})
}
