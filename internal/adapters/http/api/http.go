// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/signup"
)

const defaultMaxChangesLimit = 200

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListActivities(ctx context.Context) (map[string]model.Activity, error)
	Activity(ctx context.Context, name string) (model.Activity, error)
	SignUp(ctx context.Context, name, email string) (signup.Result, error)
	Unregister(ctx context.Context, name, email string) (signup.Result, error)

	// RecentChanges returns up to limit roster changes, newest first.
	RecentChanges(ctx context.Context, limit int) ([]model.Change, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	activitiesHandler *ActivitiesHandler
	changesHandler    *ChangesHandler
}

// NewServer creates a new API server with all handlers. maxChanges caps
// the limit accepted by GET /changes.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxChanges int) *Server {
	if maxChanges <= 0 {
		maxChanges = defaultMaxChangesLimit
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		activitiesHandler: NewActivitiesHandler(deps),
		changesHandler:    NewChangesHandler(deps, maxChanges),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /changes", MetricsMiddleware(s.changesHandler.HandleGetChanges, "changes"))

	mux.HandleFunc("GET /activities", MetricsMiddleware(s.activitiesHandler.HandleList, "activities"))
	mux.HandleFunc("GET /activities/{name}", MetricsMiddleware(s.activitiesHandler.HandleGet, "activity"))
	mux.HandleFunc("POST /activities/{name}/signup", MetricsMiddleware(s.activitiesHandler.HandleSignup, "signup"))
	mux.HandleFunc("DELETE /activities/{name}/participants", MetricsMiddleware(s.activitiesHandler.HandleUnregister, "unregister"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if rw, ok := w.(*responseWriter); ok {
		rw.errorCode = code
	}
	writeJSON(w, status, errorResponse{Code: code, Detail: msg})
}

// writeDomainError maps err through statusFor and writes the error body.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code, detail := statusFor(err)
	writeError(w, status, code, detail)
}
