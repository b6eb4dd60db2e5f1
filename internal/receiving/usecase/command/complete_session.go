package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	"github.com/wareline/warehouse-receiving/pkg/metrics"
)

// CompleteSessionCommand closes a receiving session.
type CompleteSessionCommand struct {
	SessionID uint
	Notes     string
}

// CompleteSessionResult reports the closed session, the purchase order
// status the reconciliation produced and how many products ended up with an
// open discrepancy.
type CompleteSessionResult struct {
	Session             *domain.ReceivingSession `json:"session"`
	PurchaseOrderStatus string                   `json:"purchase_order_status"`
	DiscrepantProducts  int64                    `json:"discrepant_products"`
}

// CompleteSessionHandler handles the complete session command.
type CompleteSessionHandler struct {
	uow domain.UnitOfWork
}

// NewCompleteSessionHandler creates a new complete session handler.
func NewCompleteSessionHandler(uow domain.UnitOfWork) *CompleteSessionHandler {
	return &CompleteSessionHandler{uow: uow}
}

// Handle closes the session and writes the reconciled status back to the
// purchase order. Completion is terminal: further receive events against
// the session are rejected.
func (h *CompleteSessionHandler) Handle(ctx context.Context, cmd CompleteSessionCommand) (*CompleteSessionResult, error) {
	if cmd.SessionID == 0 {
		return nil, domain.NewValidationError("session_id", "is required")
	}

	result := &CompleteSessionResult{}

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		session, err := s.Sessions().FindByID(ctx, cmd.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "receiving session", ID: cmd.SessionID}
			}
			return fmt.Errorf("failed to load session: %w", err)
		}
		if !session.InProgress() {
			return &domain.ConflictError{Message: "session is already completed"}
		}

		received, err := s.Items().CountReceived(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to count received items: %w", err)
		}
		if received == 0 {
			return domain.NewValidationError("session_id", "cannot complete a session with no received items")
		}

		poStatus, err := h.reconcile(ctx, s, session)
		if err != nil {
			return err
		}
		if err := s.PurchaseOrders().UpdateStatus(ctx, session.PurchaseOrderID, poStatus); err != nil {
			return fmt.Errorf("failed to update purchase order status: %w", err)
		}

		now := time.Now()
		session.Status = domain.SessionStatusCompleted
		session.CompletedAt = &now
		session.TotalItemsReceived = int(received)
		if cmd.Notes != "" {
			session.Notes = cmd.Notes
		}
		if err := s.Sessions().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to complete session: %w", err)
		}

		discrepant, err := s.Discrepancies().CountDistinctProducts(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to count discrepant products: %w", err)
		}

		result.Session = session
		result.PurchaseOrderStatus = poStatus
		result.DiscrepantProducts = discrepant
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SessionsCompleted.WithLabelValues(result.PurchaseOrderStatus).Inc()
	return result, nil
}

// reconcile compares every order line against what was received in the
// session. The order is delivered only when each line reached at least its
// expected quantity; anything less, including lines never touched, is a
// partial delivery.
func (h *CompleteSessionHandler) reconcile(ctx context.Context, s domain.Store, session *domain.ReceivingSession) (string, error) {
	lines, err := s.PurchaseOrders().ListItems(ctx, session.PurchaseOrderID)
	if err != nil {
		return "", fmt.Errorf("failed to load order lines: %w", err)
	}

	for _, line := range lines {
		item, err := s.Items().FindBySessionAndOrderItem(ctx, session.ID, line.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return podomain.StatusPartialDelivery, nil
			}
			return "", fmt.Errorf("failed to load receiving item: %w", err)
		}
		if item.ReceivedQuantity.LessThan(line.ExpectedQuantity) {
			return podomain.StatusPartialDelivery, nil
		}
	}
	return podomain.StatusDelivered, nil
}
