package query

import (
	"context"
	"fmt"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

const (
	defaultRelocationPageSize = 50
	maxRelocationPageSize     = 200
)

// ListRelocationTasksHandler pages through pending relocation tasks so the
// relocation workflow can pick up overflow moves.
type ListRelocationTasksHandler struct {
	store domain.Store
}

// NewListRelocationTasksHandler creates a new relocation task list query handler.
func NewListRelocationTasksHandler(store domain.Store) *ListRelocationTasksHandler {
	return &ListRelocationTasksHandler{store: store}
}

// Handle lists pending relocation tasks in creation order. Out-of-range paging
// arguments fall back to the defaults instead of failing the request.
func (h *ListRelocationTasksHandler) Handle(ctx context.Context, limit, offset int) ([]whdomain.RelocationTask, error) {
	if limit <= 0 || limit > maxRelocationPageSize {
		limit = defaultRelocationPageSize
	}
	if offset < 0 {
		offset = 0
	}

	tasks, err := h.store.RelocationTasks().FindPending(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load relocation tasks: %w", err)
	}
	return tasks, nil
}
