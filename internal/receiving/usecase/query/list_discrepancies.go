package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// ListDiscrepanciesHandler answers the per-session discrepancy list.
type ListDiscrepanciesHandler struct {
	store domain.Store
}

// NewListDiscrepanciesHandler creates a new discrepancy list query handler.
func NewListDiscrepanciesHandler(store domain.Store) *ListDiscrepanciesHandler {
	return &ListDiscrepanciesHandler{store: store}
}

// Handle lists the discrepancies recorded for a session, open and resolved.
func (h *ListDiscrepanciesHandler) Handle(ctx context.Context, sessionID uint) ([]domain.Discrepancy, error) {
	if _, err := h.store.Sessions().FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Entity: "receiving session", ID: sessionID}
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	discrepancies, err := h.store.Discrepancies().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancies: %w", err)
	}
	return discrepancies, nil
}
