package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// receivePending runs a short receive so the line ends up pending approval.
func receivePending(t *testing.T, store *memStore) *domain.ReceivingItem {
	t.Helper()
	result, err := NewReceiveItemHandler(memUOW{store}, nil).Handle(context.Background(), receiveCmd("8"))
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalPending, result.Item.ApprovalStatus)
	return result.Item
}

func TestDecideItemApprovePostsHeldStock(t *testing.T) {
	store := seedReceiving()
	item := receivePending(t, store)
	require.Empty(t, store.stockUnits)

	audit := &fakeAudit{}
	result, err := NewDecideItemHandler(memUOW{store}, audit).Handle(context.Background(), DecideItemCommand{
		SessionID:    20,
		ItemID:       item.ID,
		Decision:     DecisionApprove,
		Note:         "supplier confirmed the short shipment",
		SupervisorID: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalApproved, result.Item.ApprovalStatus)
	require.NotNil(t, result.Placement)
	require.NotNil(t, result.Item.PlacementBatchID)

	require.Len(t, store.stockUnits, 1)
	assert.True(t, store.stockUnits[0].Quantity.Equal(dec("8")))
	assert.True(t, store.locations[30].CurrentOccupancy.Equal(dec("8")))

	require.Len(t, audit.decided, 1)
	assert.Equal(t, DecisionApprove, audit.decided[0].Decision)
	assert.Equal(t, uint(5), audit.decided[0].SupervisorID)
}

func TestDecideItemRejectNeverPosts(t *testing.T) {
	store := seedReceiving()
	item := receivePending(t, store)

	result, err := NewDecideItemHandler(memUOW{store}, nil).Handle(context.Background(), DecideItemCommand{
		SessionID: 20,
		ItemID:    item.ID,
		Decision:  DecisionReject,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalRejected, result.Item.ApprovalStatus)
	assert.Nil(t, result.Placement)
	assert.Empty(t, store.stockUnits)
	assert.True(t, store.locations[30].CurrentOccupancy.IsZero())
}

func TestDecideItemDecisionIsTerminal(t *testing.T) {
	store := seedReceiving()
	item := receivePending(t, store)
	handler := NewDecideItemHandler(memUOW{store}, nil)

	_, err := handler.Handle(context.Background(), DecideItemCommand{SessionID: 20, ItemID: item.ID, Decision: DecisionReject})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), DecideItemCommand{SessionID: 20, ItemID: item.ID, Decision: DecisionApprove})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "item is already rejected", conflict.Message)
}

func TestDecideItemRejectsForeignItem(t *testing.T) {
	store := seedReceiving()
	item := receivePending(t, store)

	store.sessions[21] = &domain.ReceivingSession{
		ID: 21, SessionNumber: "RCV-2025-00002", PurchaseOrderID: 10,
		Status: domain.SessionStatusInProgress,
	}

	_, err := NewDecideItemHandler(memUOW{store}, nil).Handle(context.Background(), DecideItemCommand{
		SessionID: 21,
		ItemID:    item.ID,
		Decision:  DecisionApprove,
	})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestDecideItemValidation(t *testing.T) {
	handler := NewDecideItemHandler(memUOW{newMemStore()}, nil)

	_, err := handler.Handle(context.Background(), DecideItemCommand{SessionID: 20, ItemID: 1, Decision: "escalate"})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
