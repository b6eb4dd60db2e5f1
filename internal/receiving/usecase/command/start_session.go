package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// StartSessionCommand opens a receiving session for a purchase order.
type StartSessionCommand struct {
	PurchaseOrderID uint
	DocumentNumber  string
	DocumentType    string
	DocumentDate    *time.Time
	OperatorID      uint
}

// StartSessionHandler handles the start session command.
type StartSessionHandler struct {
	uow domain.UnitOfWork
}

// NewStartSessionHandler creates a new start session handler.
func NewStartSessionHandler(uow domain.UnitOfWork) *StartSessionHandler {
	return &StartSessionHandler{uow: uow}
}

// Handle opens the session. When the purchase order already has an active
// session the returned ConflictError carries it, so the caller can offer to
// resume instead of failing opaquely.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*domain.ReceivingSession, error) {
	if cmd.PurchaseOrderID == 0 {
		return nil, domain.NewValidationError("purchase_order_id", "is required")
	}
	if cmd.OperatorID == 0 {
		return nil, domain.NewValidationError("operator_id", "is required")
	}

	var session *domain.ReceivingSession

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		po, err := s.PurchaseOrders().FindByID(ctx, cmd.PurchaseOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "purchase order", ID: cmd.PurchaseOrderID}
			}
			return fmt.Errorf("failed to load purchase order: %w", err)
		}

		existing, err := s.Sessions().FindActiveByPurchaseOrder(ctx, po.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check active sessions: %w", err)
		}
		if existing != nil {
			return &domain.ConflictError{
				Message:         fmt.Sprintf("session %s is already active for this purchase order", existing.SessionNumber),
				ExistingSession: existing,
			}
		}

		now := time.Now()
		year := now.Year()
		count, err := s.Sessions().CountForYear(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to allocate session number: %w", err)
		}

		session = &domain.ReceivingSession{
			SessionNumber:      domain.SessionNumberFor(year, count+1),
			PurchaseOrderID:    po.ID,
			Status:             domain.SessionStatusInProgress,
			TotalItemsExpected: len(po.Items),
			DocumentNumber:     cmd.DocumentNumber,
			DocumentType:       cmd.DocumentType,
			DocumentDate:       cmd.DocumentDate,
			OperatorID:         cmd.OperatorID,
			StartedAt:          now,
		}

		if err := s.Sessions().Create(ctx, session); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &domain.ConflictError{Message: "session number collision, retry"}
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}
