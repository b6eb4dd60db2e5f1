package kafka

import "time"

// ItemReceivedEvent records one receive operation, including a quantity
// correction on re-receive (PreviousQuantity carries the overwritten value).
type ItemReceivedEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	SessionID        uint      `json:"session_id"`
	ReceivingItemID  uint      `json:"receiving_item_id"`
	ProductID        uint      `json:"product_id"`
	ReceivedQuantity string    `json:"received_quantity"`
	PreviousQuantity string    `json:"previous_quantity,omitempty"`
	ConditionStatus  string    `json:"condition_status"`
	ApprovalStatus   string    `json:"approval_status"`
	OperatorID       uint      `json:"operator_id"`
	Timestamp        time.Time `json:"timestamp"`
}

// QCDecisionEvent records a supervisor approval or rejection of a pending
// receiving item.
type QCDecisionEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	SessionID       uint      `json:"session_id"`
	ReceivingItemID uint      `json:"receiving_item_id"`
	ProductID       uint      `json:"product_id"`
	Decision        string    `json:"decision"`
	SupervisorID    uint      `json:"supervisor_id"`
	Note            string    `json:"note,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ProductMappedEvent records an auto-created supplier code mapping.
type ProductMappedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	ProductID    uint      `json:"product_id"`
	SupplierCode string    `json:"supplier_code"`
	SKU          string    `json:"sku"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeItemReceived  = "receiving.item_received"
	EventTypeQCDecision    = "receiving.qc_decided"
	EventTypeProductMapped = "product.mapping_created"
)

// Kafka topics
const (
	TopicReceivingAudit = "receiving-audit"
)
