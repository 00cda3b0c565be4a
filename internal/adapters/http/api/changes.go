package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/mergington/internal/domain/model"
)

const defaultChangesLimit = 50

// ChangeDependencies defines the interface for reading the change feed.
type ChangeDependencies interface {
	RecentChanges(ctx context.Context, limit int) ([]model.Change, error)
}

// ChangesHandler handles change feed requests.
type ChangesHandler struct {
	deps     ChangeDependencies
	maxLimit int
}

// NewChangesHandler creates a new changes handler.
func NewChangesHandler(deps ChangeDependencies, maxLimit int) *ChangesHandler {
	return &ChangesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetChanges handles GET /changes?limit=N.
func (h *ChangesHandler) HandleGetChanges(w http.ResponseWriter, r *http.Request) {
	limit := min(defaultChangesLimit, h.maxLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > h.maxLimit {
			writeDomainError(w, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidLimit, h.maxLimit))
			return
		}
		limit = n
	}

	changes, err := h.deps.RecentChanges(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if changes == nil {
		changes = []model.Change{}
	}
	writeJSON(w, http.StatusOK, changes)
}
