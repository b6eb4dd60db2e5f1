package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// ResolveDiscrepancyCommand closes an open discrepancy with a note.
type ResolveDiscrepancyCommand struct {
	DiscrepancyID uint
	Note          string
}

// ResolveDiscrepancyHandler handles the resolve discrepancy command.
type ResolveDiscrepancyHandler struct {
	uow domain.UnitOfWork
}

// NewResolveDiscrepancyHandler creates a new resolve discrepancy handler.
func NewResolveDiscrepancyHandler(uow domain.UnitOfWork) *ResolveDiscrepancyHandler {
	return &ResolveDiscrepancyHandler{uow: uow}
}

// Handle marks the discrepancy resolved. Resolution never mutates item
// quantities or inventory; it records the human judgement only.
func (h *ResolveDiscrepancyHandler) Handle(ctx context.Context, cmd ResolveDiscrepancyCommand) (*domain.Discrepancy, error) {
	if cmd.DiscrepancyID == 0 {
		return nil, domain.NewValidationError("discrepancy_id", "is required")
	}
	if cmd.Note == "" {
		return nil, domain.NewValidationError("note", "is required")
	}

	var discrepancy *domain.Discrepancy

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		d, err := s.Discrepancies().FindByID(ctx, cmd.DiscrepancyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "discrepancy", ID: cmd.DiscrepancyID}
			}
			return fmt.Errorf("failed to load discrepancy: %w", err)
		}
		if d.ResolutionStatus == domain.ResolutionResolved {
			return &domain.ConflictError{Message: "discrepancy is already resolved"}
		}

		now := time.Now()
		d.ResolutionStatus = domain.ResolutionResolved
		d.ResolutionNote = cmd.Note
		d.ResolvedAt = &now

		if err := s.Discrepancies().Update(ctx, d); err != nil {
			return fmt.Errorf("failed to resolve discrepancy: %w", err)
		}
		discrepancy = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return discrepancy, nil
}
