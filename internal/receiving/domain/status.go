package domain

import (
	"github.com/shopspring/decimal"

	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// ApprovalDecision is the outcome of the QC decision table applied at
// receive time. LocationType names the location type the item is forced
// into; empty means the normally resolved location stands.
type ApprovalDecision struct {
	Status       string
	LocationType string
}

// DecideApproval applies the decision table over condition and quantity
// match:
//
//	good  + exact     → approved, resolved location
//	good  + mismatch  → pending,  qc_hold
//	other + any       → pending,  quarantine
//
// Approval is never set directly by the caller.
func DecideApproval(conditionStatus string, received, expected decimal.Decimal) ApprovalDecision {
	exact := received.Equal(expected)

	switch {
	case conditionStatus == ConditionGood && exact:
		return ApprovalDecision{Status: ApprovalApproved}
	case conditionStatus == ConditionGood:
		return ApprovalDecision{Status: ApprovalPending, LocationType: whdomain.LocationTypeQCHold}
	default:
		return ApprovalDecision{Status: ApprovalPending, LocationType: whdomain.LocationTypeQuarantine}
	}
}

// DeriveItemStatus computes the read-time status of a purchase order line.
// A nil item means no receiving row exists yet. The task is consulted only
// for individually tracked items.
func DeriveItemStatus(item *ReceivingItem, task *BarcodeCaptureTask) string {
	if item == nil {
		return ItemStatusPending
	}

	if item.TrackingMethod == TrackingIndividual && task != nil && !task.Complete() {
		return ItemStatusPendingScan
	}

	switch {
	case item.ReceivedQuantity.GreaterThanOrEqual(item.ExpectedQuantity):
		return ItemStatusReceived
	case item.ReceivedQuantity.GreaterThan(decimal.Zero):
		return ItemStatusPartial
	default:
		return ItemStatusPending
	}
}

// ClassifyDiscrepancy decides whether a receive event produces a
// discrepancy and of which type. Quantity mismatches win over condition
// issues; a condition issue with matching quantity is a quality_issue.
func ClassifyDiscrepancy(conditionStatus string, received, expected decimal.Decimal) (string, bool) {
	switch {
	case received.LessThan(expected):
		return DiscrepancyQuantityShort, true
	case received.GreaterThan(expected):
		return DiscrepancyQuantityOver, true
	case conditionStatus != ConditionGood:
		return DiscrepancyQualityIssue, true
	default:
		return "", false
	}
}

// BarcodeExpectedQuantity is the scan target for an individually tracked
// receive: the received quantity rounded to the nearest whole unit.
func BarcodeExpectedQuantity(received decimal.Decimal) int {
	return int(received.Round(0).IntPart())
}
