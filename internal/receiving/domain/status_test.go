package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDecideApproval(t *testing.T) {
	tests := []struct {
		name         string
		condition    string
		received     string
		expected     string
		wantStatus   string
		wantLocation string
	}{
		{"good and exact", ConditionGood, "10", "10", ApprovalApproved, ""},
		{"good and short", ConditionGood, "8", "10", ApprovalPending, whdomain.LocationTypeQCHold},
		{"good and over", ConditionGood, "12", "10", ApprovalPending, whdomain.LocationTypeQCHold},
		{"damaged and exact", ConditionDamaged, "10", "10", ApprovalPending, whdomain.LocationTypeQuarantine},
		{"damaged and short", ConditionDamaged, "8", "10", ApprovalPending, whdomain.LocationTypeQuarantine},
		{"expired", ConditionExpired, "10", "10", ApprovalPending, whdomain.LocationTypeQuarantine},
		{"other condition", ConditionOther, "10", "10", ApprovalPending, whdomain.LocationTypeQuarantine},
		{"good with fractional match", ConditionGood, "2.500", "2.5", ApprovalApproved, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := DecideApproval(tt.condition, dec(tt.received), dec(tt.expected))
			assert.Equal(t, tt.wantStatus, decision.Status)
			assert.Equal(t, tt.wantLocation, decision.LocationType)
		})
	}
}

func TestDeriveItemStatus(t *testing.T) {
	item := func(received, expected, tracking string) *ReceivingItem {
		return &ReceivingItem{
			ReceivedQuantity: dec(received),
			ExpectedQuantity: dec(expected),
			TrackingMethod:   tracking,
		}
	}

	tests := []struct {
		name string
		item *ReceivingItem
		task *BarcodeCaptureTask
		want string
	}{
		{"no receiving row", nil, nil, ItemStatusPending},
		{"zero received", item("0", "10", TrackingBulk), nil, ItemStatusPending},
		{"partial", item("4", "10", TrackingBulk), nil, ItemStatusPartial},
		{"full", item("10", "10", TrackingBulk), nil, ItemStatusReceived},
		{"over", item("12", "10", TrackingBulk), nil, ItemStatusReceived},
		{
			"individual with open scan task",
			item("10", "10", TrackingIndividual),
			&BarcodeCaptureTask{ExpectedQuantity: 10, ScannedQuantity: 3, Status: BarcodeTaskPending},
			ItemStatusPendingScan,
		},
		{
			"individual with scans done by count",
			item("10", "10", TrackingIndividual),
			&BarcodeCaptureTask{ExpectedQuantity: 10, ScannedQuantity: 10, Status: BarcodeTaskPending},
			ItemStatusReceived,
		},
		{
			"individual with explicit completion",
			item("10", "10", TrackingIndividual),
			&BarcodeCaptureTask{ExpectedQuantity: 10, ScannedQuantity: 2, Status: BarcodeTaskCompleted, CompletedManually: true},
			ItemStatusReceived,
		},
		{
			"individual with stale completed status",
			item("15", "10", TrackingIndividual),
			&BarcodeCaptureTask{ExpectedQuantity: 15, ScannedQuantity: 10, Status: BarcodeTaskCompleted},
			ItemStatusPendingScan,
		},
		{
			"individual partial with open scan task",
			item("4", "10", TrackingIndividual),
			&BarcodeCaptureTask{ExpectedQuantity: 4, ScannedQuantity: 0, Status: BarcodeTaskPending},
			ItemStatusPendingScan,
		},
		{"individual without task yet", item("10", "10", TrackingIndividual), nil, ItemStatusReceived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveItemStatus(tt.item, tt.task))
		})
	}
}

func TestClassifyDiscrepancy(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		received  string
		expected  string
		wantType  string
		wantFound bool
	}{
		{"exact and good", ConditionGood, "10", "10", "", false},
		{"short", ConditionGood, "8", "10", DiscrepancyQuantityShort, true},
		{"over", ConditionGood, "12", "10", DiscrepancyQuantityOver, true},
		{"damaged with exact quantity", ConditionDamaged, "10", "10", DiscrepancyQualityIssue, true},
		{"damaged and short reports quantity", ConditionDamaged, "8", "10", DiscrepancyQuantityShort, true},
		{"expired and over reports quantity", ConditionExpired, "12", "10", DiscrepancyQuantityOver, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dtype, found := ClassifyDiscrepancy(tt.condition, dec(tt.received), dec(tt.expected))
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantType, dtype)
		})
	}
}

func TestBarcodeExpectedQuantity(t *testing.T) {
	tests := []struct {
		received string
		want     int
	}{
		{"10", 10},
		{"10.4", 10},
		{"10.5", 11},
		{"0.2", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BarcodeExpectedQuantity(dec(tt.received)), "received %s", tt.received)
	}
}

func TestSessionNumberFor(t *testing.T) {
	assert.Equal(t, "RCV-2025-00001", SessionNumberFor(2025, 1))
	assert.Equal(t, "RCV-2025-00142", SessionNumberFor(2025, 142))
}

func TestBarcodeCaptureTaskComplete(t *testing.T) {
	assert.False(t, (&BarcodeCaptureTask{ExpectedQuantity: 5, ScannedQuantity: 4}).Complete())
	assert.True(t, (&BarcodeCaptureTask{ExpectedQuantity: 5, ScannedQuantity: 5}).Complete())
	assert.True(t, (&BarcodeCaptureTask{ExpectedQuantity: 5, ScannedQuantity: 1, CompletedManually: true}).Complete())

	// the stored status never outranks the completion rule
	assert.False(t, (&BarcodeCaptureTask{ExpectedQuantity: 5, ScannedQuantity: 1, Status: BarcodeTaskCompleted}).Complete())
}

func TestBarcodeCaptureTaskSyncStatus(t *testing.T) {
	task := &BarcodeCaptureTask{ExpectedQuantity: 10, ScannedQuantity: 10, Status: BarcodeTaskPending}
	task.SyncStatus()
	assert.Equal(t, BarcodeTaskCompleted, task.Status)

	// a raised target reopens a task completed by count
	task.ExpectedQuantity = 15
	task.SyncStatus()
	assert.Equal(t, BarcodeTaskPending, task.Status)

	// an explicit completion signal survives retargeting
	task.CompletedManually = true
	task.SyncStatus()
	assert.Equal(t, BarcodeTaskCompleted, task.Status)
}
