package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	"github.com/wareline/warehouse-receiving/kafka"
	"github.com/wareline/warehouse-receiving/pkg/logger"
	"github.com/wareline/warehouse-receiving/pkg/metrics"
)

// Supervisor decisions on a pending item.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DecideItemCommand records a supervisor decision on a pending item.
type DecideItemCommand struct {
	SessionID    uint
	ItemID       uint
	Decision     string
	Note         string
	SupervisorID uint
}

// DecideItemResult reports the decided item and, on approval, the placement
// the decision triggered.
type DecideItemResult struct {
	Item      *domain.ReceivingItem     `json:"item"`
	Placement *whdomain.PlacementResult `json:"placement,omitempty"`
	Warning   *whdomain.CapacityWarning `json:"warning,omitempty"`
}

// DecideItemHandler handles the supervisor decision command.
type DecideItemHandler struct {
	uow   domain.UnitOfWork
	audit AuditPublisher
}

// NewDecideItemHandler creates a new decide item handler.
func NewDecideItemHandler(uow domain.UnitOfWork, audit AuditPublisher) *DecideItemHandler {
	return &DecideItemHandler{uow: uow, audit: audit}
}

// Handle applies the decision. Approval posts the held stock to the
// inventory ledger unless a previous pass already placed this item;
// rejection is terminal and never posts.
func (h *DecideItemHandler) Handle(ctx context.Context, cmd DecideItemCommand) (*DecideItemResult, error) {
	if cmd.SessionID == 0 {
		return nil, domain.NewValidationError("session_id", "is required")
	}
	if cmd.ItemID == 0 {
		return nil, domain.NewValidationError("item_id", "is required")
	}
	if cmd.Decision != DecisionApprove && cmd.Decision != DecisionReject {
		return nil, domain.NewValidationError("decision", "must be approve or reject")
	}

	result := &DecideItemResult{}

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		session, err := s.Sessions().FindByID(ctx, cmd.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "receiving session", ID: cmd.SessionID}
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		item, err := s.Items().FindByID(ctx, cmd.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "receiving item", ID: cmd.ItemID}
			}
			return fmt.Errorf("failed to load receiving item: %w", err)
		}
		if item.SessionID != session.ID {
			return domain.NewValidationError("item_id", "does not belong to the session")
		}
		if item.ApprovalStatus != domain.ApprovalPending {
			return &domain.ConflictError{Message: fmt.Sprintf("item is already %s", item.ApprovalStatus)}
		}

		switch cmd.Decision {
		case DecisionApprove:
			item.ApprovalStatus = domain.ApprovalApproved
			if item.PlacementBatchID == nil {
				placed, err := newResolver(s).Place(ctx, placementRequest(item, nil))
				if err != nil {
					return fmt.Errorf("failed to place stock: %w", err)
				}
				result.Placement = placed
				result.Warning = placed.Warning
				item.PlacementBatchID = &placed.Plan.BatchID
				if primary := placed.Plan.PrimaryLocationID(); primary != nil {
					item.LocationID = primary
				}
			}
		case DecisionReject:
			item.ApprovalStatus = domain.ApprovalRejected
		}

		if err := s.Items().Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update receiving item: %w", err)
		}

		result.Item = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReceiveOperationsTotal.WithLabelValues(result.Item.ApprovalStatus).Inc()
	if result.Placement != nil {
		metrics.RelocationTasksCreated.Add(float64(len(result.Placement.RelocationTasks)))
	}

	if h.audit != nil {
		event := kafka.QCDecisionEvent{
			SessionID:       cmd.SessionID,
			ReceivingItemID: result.Item.ID,
			ProductID:       result.Item.ProductID,
			Decision:        cmd.Decision,
			Note:            cmd.Note,
			SupervisorID:    cmd.SupervisorID,
		}
		if err := h.audit.PublishQCDecision(ctx, event); err != nil {
			logger.Warn(ctx).Err(err).Uint("item_id", result.Item.ID).Msg("Audit publish failed for QC decision")
		}
	}

	return result, nil
}
