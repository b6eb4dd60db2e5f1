package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// ItemView joins an expected order line with its receiving state inside the
// session. Receiving is nil while the line has not been touched yet.
type ItemView struct {
	OrderItem     podomain.PurchaseOrderItem `json:"order_item"`
	Receiving     *domain.ReceivingItem      `json:"receiving,omitempty"`
	BarcodeTask   *domain.BarcodeCaptureTask `json:"barcode_task,omitempty"`
	DerivedStatus string                     `json:"derived_status"`
}

// GetExpectedItemsHandler answers the checklist view for an open session.
type GetExpectedItemsHandler struct {
	store domain.Store
}

// NewGetExpectedItemsHandler creates a new expected items query handler.
func NewGetExpectedItemsHandler(store domain.Store) *GetExpectedItemsHandler {
	return &GetExpectedItemsHandler{store: store}
}

// Handle lists every order line with its per-session status. Statuses are
// derived here, not read from storage, so the view never goes stale.
func (h *GetExpectedItemsHandler) Handle(ctx context.Context, sessionID uint) ([]ItemView, error) {
	session, err := h.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Entity: "receiving session", ID: sessionID}
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	lines, err := h.store.PurchaseOrders().ListItems(ctx, session.PurchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	items, err := h.store.Items().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receiving items: %w", err)
	}
	byOrderItem := make(map[uint]*domain.ReceivingItem, len(items))
	for i := range items {
		byOrderItem[items[i].PurchaseOrderItemID] = &items[i]
	}

	views := make([]ItemView, 0, len(lines))
	for _, line := range lines {
		view := ItemView{OrderItem: line, DerivedStatus: domain.ItemStatusPending}

		item, ok := byOrderItem[line.ID]
		if !ok {
			views = append(views, view)
			continue
		}
		view.Receiving = item

		var task *domain.BarcodeCaptureTask
		if item.BarcodeTaskID != nil {
			task, err = h.store.BarcodeTasks().FindByID(ctx, *item.BarcodeTaskID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to load barcode task: %w", err)
			}
			view.BarcodeTask = task
		}

		view.DerivedStatus = domain.DeriveItemStatus(item, task)
		views = append(views, view)
	}
	return views, nil
}
