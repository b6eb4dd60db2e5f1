package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

func TestStartSessionAllocatesSequentialNumbers(t *testing.T) {
	store := newMemStore()
	store.orders[10] = &podomain.PurchaseOrder{ID: 10, OrderNumber: "PO-10", SupplierID: 1}
	store.orderItems[11] = &podomain.PurchaseOrderItem{ID: 11, PurchaseOrderID: 10, ExpectedQuantity: dec("3")}
	store.orderItems[12] = &podomain.PurchaseOrderItem{ID: 12, PurchaseOrderID: 10, ExpectedQuantity: dec("5")}
	store.orders[20] = &podomain.PurchaseOrder{ID: 20, OrderNumber: "PO-20", SupplierID: 1}
	handler := NewStartSessionHandler(memUOW{store})

	first, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10, OperatorID: 1})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, domain.SessionNumberFor(year, 1), first.SessionNumber)
	assert.Equal(t, domain.SessionStatusInProgress, first.Status)
	assert.Equal(t, 2, first.TotalItemsExpected)
	assert.Equal(t, uint(1), first.OperatorID)

	second, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 20, OperatorID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionNumberFor(year, 2), second.SessionNumber)
}

func TestStartSessionConflictCarriesActiveSession(t *testing.T) {
	store := newMemStore()
	store.orders[10] = &podomain.PurchaseOrder{ID: 10, OrderNumber: "PO-10", SupplierID: 1}
	handler := NewStartSessionHandler(memUOW{store})

	first, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10, OperatorID: 1})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10, OperatorID: 2})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.ExistingSession)
	assert.Equal(t, first.ID, conflict.ExistingSession.ID)
}

func TestStartSessionAllowsNewSessionAfterCompletion(t *testing.T) {
	store := newMemStore()
	store.orders[10] = &podomain.PurchaseOrder{ID: 10, OrderNumber: "PO-10", SupplierID: 1}
	handler := NewStartSessionHandler(memUOW{store})

	first, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10, OperatorID: 1})
	require.NoError(t, err)
	first.Status = domain.SessionStatusCompleted

	second, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10, OperatorID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionNumber, second.SessionNumber)
}

func TestStartSessionUnknownPurchaseOrder(t *testing.T) {
	handler := NewStartSessionHandler(memUOW{newMemStore()})

	_, err := handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 99, OperatorID: 1})

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestStartSessionValidation(t *testing.T) {
	handler := NewStartSessionHandler(memUOW{newMemStore()})

	_, err := handler.Handle(context.Background(), StartSessionCommand{OperatorID: 1})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = handler.Handle(context.Background(), StartSessionCommand{PurchaseOrderID: 10})
	require.ErrorAs(t, err, &validation)
}
