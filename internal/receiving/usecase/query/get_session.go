package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// SessionView is a session with its purchase order and progress counters.
type SessionView struct {
	Session            *domain.ReceivingSession `json:"session"`
	PurchaseOrder      *podomain.PurchaseOrder  `json:"purchase_order"`
	ReceivedItems      int64                    `json:"received_items"`
	DiscrepantProducts int64                    `json:"discrepant_products"`
}

// GetSessionHandler answers the session detail query.
type GetSessionHandler struct {
	store domain.Store
}

// NewGetSessionHandler creates a new session query handler.
func NewGetSessionHandler(store domain.Store) *GetSessionHandler {
	return &GetSessionHandler{store: store}
}

// Handle loads the session with its order and counters.
func (h *GetSessionHandler) Handle(ctx context.Context, sessionID uint) (*SessionView, error) {
	session, err := h.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Entity: "receiving session", ID: sessionID}
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	po, err := h.store.PurchaseOrders().FindByID(ctx, session.PurchaseOrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}

	received, err := h.store.Items().CountReceived(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count received items: %w", err)
	}

	discrepant, err := h.store.Discrepancies().CountDistinctProducts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count discrepant products: %w", err)
	}

	return &SessionView{
		Session:            session,
		PurchaseOrder:      po,
		ReceivedItems:      received,
		DiscrepantProducts: discrepant,
	}, nil
}
