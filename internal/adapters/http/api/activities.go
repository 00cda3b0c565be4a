package api

import (
	"context"
	"net/http"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/signup"
)

// ActivityDependencies defines the operations the activity routes need.
type ActivityDependencies interface {
	ListActivities(ctx context.Context) (map[string]model.Activity, error)
	Activity(ctx context.Context, name string) (model.Activity, error)
	SignUp(ctx context.Context, name, email string) (signup.Result, error)
	Unregister(ctx context.Context, name, email string) (signup.Result, error)
}

// ActivitiesHandler handles the activity catalog and roster routes.
type ActivitiesHandler struct {
	deps ActivityDependencies
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps ActivityDependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps}
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.ListActivities(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleGet handles GET /activities/{name}.
func (h *ActivitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Activity(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleSignup handles POST /activities/{name}/signup?email=.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.SignUp(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: res.Message})
}

// HandleUnregister handles DELETE /activities/{name}/participants?email=.
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Unregister(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: res.Message})
}
