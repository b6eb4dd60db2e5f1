package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	"github.com/wareline/warehouse-receiving/kafka"
	"github.com/wareline/warehouse-receiving/pkg/logger"
	"github.com/wareline/warehouse-receiving/pkg/metrics"
)

// ReceiveItemCommand records received quantity and condition for one
// purchase order line within a session.
type ReceiveItemCommand struct {
	SessionID           uint
	PurchaseOrderItemID uint
	ReceivedQuantity    decimal.Decimal
	ConditionStatus     string
	LocationHintID      *uint
	BatchNumber         *string
	ExpiryDate          *time.Time
	TrackingMethod      string
	OperatorID          uint
}

// ReceiveItemResult reports the written item, its read-time status, the
// committed placement with any capacity warning, and the discrepancy the
// event produced.
type ReceiveItemResult struct {
	Item          *domain.ReceivingItem     `json:"item"`
	DerivedStatus string                    `json:"derived_status"`
	Placement     *whdomain.PlacementResult `json:"placement,omitempty"`
	Discrepancy   *domain.Discrepancy       `json:"discrepancy,omitempty"`
	Warning       *whdomain.CapacityWarning `json:"warning,omitempty"`
	Updated       bool                      `json:"updated"`
}

// ReceiveItemHandler handles the receive item command.
type ReceiveItemHandler struct {
	uow   domain.UnitOfWork
	audit AuditPublisher
}

// NewReceiveItemHandler creates a new receive item handler.
func NewReceiveItemHandler(uow domain.UnitOfWork, audit AuditPublisher) *ReceiveItemHandler {
	return &ReceiveItemHandler{uow: uow, audit: audit}
}

// Handle runs one receive event in a single transaction: item upsert,
// placement with capacity deltas, discrepancy upsert, barcode task
// adjustment and session progress, all or nothing.
func (h *ReceiveItemHandler) Handle(ctx context.Context, cmd ReceiveItemCommand) (*ReceiveItemResult, error) {
	if cmd.SessionID == 0 {
		return nil, domain.NewValidationError("session_id", "is required")
	}
	if cmd.PurchaseOrderItemID == 0 {
		return nil, domain.NewValidationError("purchase_order_item_id", "is required")
	}
	if cmd.ReceivedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("received_quantity", "must be positive")
	}
	if cmd.ConditionStatus == "" {
		cmd.ConditionStatus = domain.ConditionGood
	}
	if cmd.TrackingMethod == "" {
		cmd.TrackingMethod = domain.TrackingBulk
	}
	if cmd.TrackingMethod != domain.TrackingBulk && cmd.TrackingMethod != domain.TrackingIndividual {
		return nil, domain.NewValidationError("tracking_method", "must be bulk or individual")
	}

	result := &ReceiveItemResult{}
	var (
		mappedEvent *kafka.ProductMappedEvent
		previousQty decimal.Decimal
	)

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		session, err := s.Sessions().FindByID(ctx, cmd.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "receiving session", ID: cmd.SessionID}
			}
			return fmt.Errorf("failed to load session: %w", err)
		}
		if !session.InProgress() {
			return &domain.ConflictError{Message: "session is completed and immutable"}
		}

		poItem, err := s.PurchaseOrders().FindItemByID(ctx, cmd.PurchaseOrderItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "purchase order item", ID: cmd.PurchaseOrderItemID}
			}
			return fmt.Errorf("failed to load purchase order item: %w", err)
		}
		if poItem.PurchaseOrderID != session.PurchaseOrderID {
			return domain.NewValidationError("purchase_order_item_id", "does not belong to the session's purchase order")
		}

		productID, created, err := h.resolveProduct(ctx, s, poItem)
		if err != nil {
			return err
		}
		if created != nil {
			mappedEvent = created
		}

		decision := domain.DecideApproval(cmd.ConditionStatus, cmd.ReceivedQuantity, poItem.ExpectedQuantity)

		item, updated, err := h.upsertItem(ctx, s, session, poItem, productID, decision, cmd)
		if err != nil {
			return err
		}
		result.Updated = updated
		if updated {
			previousQty = item.ReceivedQuantity
		}

		item.ReceivedQuantity = cmd.ReceivedQuantity
		item.ConditionStatus = cmd.ConditionStatus
		item.ApprovalStatus = decision.Status
		item.TrackingMethod = cmd.TrackingMethod
		item.BatchNumber = cmd.BatchNumber
		item.ExpiryDate = cmd.ExpiryDate

		resolver := newResolver(s)

		// Only approved good stock posts to the ledger, and only once per
		// item; a supervisor decision posts the rest later.
		if decision.Status == domain.ApprovalApproved && item.PlacementBatchID == nil {
			placed, err := resolver.Place(ctx, placementRequest(item, cmd.LocationHintID))
			if err != nil {
				return fmt.Errorf("failed to place stock: %w", err)
			}
			result.Placement = placed
			result.Warning = placed.Warning
			item.PlacementBatchID = &placed.Plan.BatchID
			if primary := placed.Plan.PrimaryLocationID(); primary != nil {
				item.LocationID = primary
			} else if len(placed.Plan.Lines) > 0 {
				id := placed.Plan.Lines[0].LocationID
				item.LocationID = &id
			}
		} else if decision.Status == domain.ApprovalPending {
			locationID, err := h.holdLocation(ctx, s, resolver, decision.LocationType, productID, cmd)
			if err != nil {
				return err
			}
			item.LocationID = locationID
		}

		if err := s.Items().Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update receiving item: %w", err)
		}

		if err := h.adjustBarcodeTask(ctx, s, item); err != nil {
			return err
		}

		discrepancy, err := h.upsertDiscrepancy(ctx, s, session.ID, item, poItem.ExpectedQuantity)
		if err != nil {
			return err
		}
		result.Discrepancy = discrepancy

		received, err := s.Items().CountReceived(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to recompute session progress: %w", err)
		}
		session.TotalItemsReceived = int(received)
		if err := s.Sessions().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		var task *domain.BarcodeCaptureTask
		if item.BarcodeTaskID != nil {
			if task, err = s.BarcodeTasks().FindByID(ctx, *item.BarcodeTaskID); err != nil {
				return fmt.Errorf("failed to load barcode task: %w", err)
			}
		}
		result.Item = item
		result.DerivedStatus = domain.DeriveItemStatus(item, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.recordMetrics(result)
	h.publishAudit(ctx, cmd, result, previousQty, mappedEvent)

	return result, nil
}

// resolveProduct binds the order line to an internal product, auto-creating
// the supplier-code mapping when none exists.
func (h *ReceiveItemHandler) resolveProduct(ctx context.Context, s domain.Store, poItem *podomain.PurchaseOrderItem) (uint, *kafka.ProductMappedEvent, error) {
	if poItem.ProductID != nil {
		return *poItem.ProductID, nil, nil
	}

	product, created, err := s.Products().ResolveOrCreate(ctx, poItem.SupplierProductCode, poItem.Description)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to resolve product mapping: %w", err)
	}
	if err := s.PurchaseOrders().SetItemProduct(ctx, poItem.ID, product.ID); err != nil {
		return 0, nil, fmt.Errorf("failed to bind product to order line: %w", err)
	}
	poItem.ProductID = &product.ID

	if !created {
		return product.ID, nil, nil
	}
	return product.ID, &kafka.ProductMappedEvent{
		ProductID:    product.ID,
		SupplierCode: product.SupplierCode,
		SKU:          product.SKU,
	}, nil
}

// upsertItem finds or inserts the (session, order line) row. A concurrent
// insert of the same pair loses the unique-index race and retries as an
// update inside the same transaction, so the pair never duplicates.
func (h *ReceiveItemHandler) upsertItem(ctx context.Context, s domain.Store, session *domain.ReceivingSession, poItem *podomain.PurchaseOrderItem, productID uint, decision domain.ApprovalDecision, cmd ReceiveItemCommand) (*domain.ReceivingItem, bool, error) {
	existing, err := s.Items().FindBySessionAndOrderItem(ctx, session.ID, poItem.ID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to load receiving item: %w", err)
	}

	item := &domain.ReceivingItem{
		SessionID:           session.ID,
		PurchaseOrderItemID: poItem.ID,
		ProductID:           productID,
		ExpectedQuantity:    poItem.ExpectedQuantity,
		ReceivedQuantity:    cmd.ReceivedQuantity,
		ConditionStatus:     cmd.ConditionStatus,
		ApprovalStatus:      decision.Status,
		TrackingMethod:      cmd.TrackingMethod,
	}
	if err := s.Items().Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.Items().FindBySessionAndOrderItem(ctx, session.ID, poItem.ID)
			if ferr != nil {
				return nil, false, fmt.Errorf("failed to reload receiving item after conflict: %w", ferr)
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("failed to create receiving item: %w", err)
	}
	return item, false, nil
}

// holdLocation picks the QC hold or quarantine location for a pending item,
// falling back to the normally resolved slot when none is configured.
func (h *ReceiveItemHandler) holdLocation(ctx context.Context, s domain.Store, resolver placementResolver, locationType string, productID uint, cmd ReceiveItemCommand) (*uint, error) {
	loc, err := s.Locations().FindFirstByType(ctx, locationType)
	if err == nil {
		return &loc.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load %s location: %w", locationType, err)
	}

	plan, err := resolver.Resolve(ctx, placementRequestFor(productID, cmd.ReceivedQuantity, cmd.LocationHintID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fallback location: %w", err)
	}
	if primary := plan.PrimaryLocationID(); primary != nil {
		return primary, nil
	}
	return nil, nil
}

// adjustBarcodeTask creates the scan task for individually tracked stock,
// or retargets the existing one so a re-receive preserves scan history. A
// raised target reopens a task that was completed by count alone.
func (h *ReceiveItemHandler) adjustBarcodeTask(ctx context.Context, s domain.Store, item *domain.ReceivingItem) error {
	if item.TrackingMethod != domain.TrackingIndividual {
		return nil
	}

	expected := domain.BarcodeExpectedQuantity(item.ReceivedQuantity)

	if item.BarcodeTaskID != nil {
		task, err := s.BarcodeTasks().FindByID(ctx, *item.BarcodeTaskID)
		if err != nil {
			return fmt.Errorf("failed to load barcode task: %w", err)
		}
		task.ExpectedQuantity = expected
		task.SyncStatus()
		if err := s.BarcodeTasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update barcode task: %w", err)
		}
		return nil
	}

	task := &domain.BarcodeCaptureTask{
		ExpectedQuantity: expected,
		Status:           domain.BarcodeTaskPending,
	}
	if err := s.BarcodeTasks().Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create barcode task: %w", err)
	}
	item.BarcodeTaskID = &task.ID
	if err := s.Items().Update(ctx, item); err != nil {
		return fmt.Errorf("failed to bind barcode task: %w", err)
	}
	return nil
}

// upsertDiscrepancy keeps at most one discrepancy row per (session,
// product), updating it in place on a corrected re-receive. A correction
// that clears the mismatch removes the open row so session statistics stop
// counting the product.
func (h *ReceiveItemHandler) upsertDiscrepancy(ctx context.Context, s domain.Store, sessionID uint, item *domain.ReceivingItem, expected decimal.Decimal) (*domain.Discrepancy, error) {
	dtype, mismatch := domain.ClassifyDiscrepancy(item.ConditionStatus, item.ReceivedQuantity, expected)
	if !mismatch {
		existing, err := s.Discrepancies().FindBySessionAndProduct(ctx, sessionID, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load discrepancy: %w", err)
		}
		// supervisor-resolved rows stay as history
		if existing.ResolutionStatus == domain.ResolutionOpen {
			if err := s.Discrepancies().Delete(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("failed to clear discrepancy: %w", err)
			}
		}
		return nil, nil
	}

	description := fmt.Sprintf("expected %s, received %s (%s)", expected, item.ReceivedQuantity, item.ConditionStatus)

	existing, err := s.Discrepancies().FindBySessionAndProduct(ctx, sessionID, item.ProductID)
	if err == nil {
		existing.Type = dtype
		existing.ExpectedQuantity = expected
		existing.ActualQuantity = item.ReceivedQuantity
		existing.Description = description
		if err := s.Discrepancies().Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update discrepancy: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load discrepancy: %w", err)
	}

	discrepancy := &domain.Discrepancy{
		SessionID:        sessionID,
		ProductID:        item.ProductID,
		Type:             dtype,
		ExpectedQuantity: expected,
		ActualQuantity:   item.ReceivedQuantity,
		Description:      description,
		ResolutionStatus: domain.ResolutionOpen,
	}
	if err := s.Discrepancies().Create(ctx, discrepancy); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.Discrepancies().FindBySessionAndProduct(ctx, sessionID, item.ProductID)
		}
		return nil, fmt.Errorf("failed to create discrepancy: %w", err)
	}
	return discrepancy, nil
}

func (h *ReceiveItemHandler) recordMetrics(result *ReceiveItemResult) {
	metrics.ReceiveOperationsTotal.WithLabelValues(result.Item.ApprovalStatus).Inc()
	if result.Discrepancy != nil {
		metrics.DiscrepanciesTotal.WithLabelValues(result.Discrepancy.Type).Inc()
	}
	if result.Placement != nil {
		for _, line := range result.Placement.Plan.Lines {
			if line.Temporary {
				qty, _ := line.Quantity.Float64()
				metrics.PlacementOverflowQuantity.Add(qty)
			}
		}
		metrics.RelocationTasksCreated.Add(float64(len(result.Placement.RelocationTasks)))
	}
	if result.Warning != nil {
		unplaced, _ := result.Warning.Unplaced.Float64()
		metrics.PlacementUnplacedQuantity.Add(unplaced)
	}
}

func (h *ReceiveItemHandler) publishAudit(ctx context.Context, cmd ReceiveItemCommand, result *ReceiveItemResult, previousQty decimal.Decimal, mapped *kafka.ProductMappedEvent) {
	if h.audit == nil {
		return
	}

	if mapped != nil {
		if err := h.audit.PublishProductMapped(ctx, *mapped); err != nil {
			logger.Warn(ctx).Err(err).Uint("product_id", mapped.ProductID).Msg("Audit publish failed for product mapping")
		}
	}

	event := kafka.ItemReceivedEvent{
		SessionID:        cmd.SessionID,
		ReceivingItemID:  result.Item.ID,
		ProductID:        result.Item.ProductID,
		ReceivedQuantity: result.Item.ReceivedQuantity.String(),
		ConditionStatus:  result.Item.ConditionStatus,
		ApprovalStatus:   result.Item.ApprovalStatus,
		OperatorID:       cmd.OperatorID,
	}
	if result.Updated {
		event.PreviousQuantity = previousQty.String()
	}
	if err := h.audit.PublishItemReceived(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Uint("session_id", cmd.SessionID).Msg("Audit publish failed for receive event")
	}
}
