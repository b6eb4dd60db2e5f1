package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session statuses. Completed is terminal and irreversible.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
)

// Condition statuses reported by the operator at receive time.
const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged"
	ConditionExpired = "expired"
	ConditionOther   = "other"
)

// Approval statuses. Derived by the decision table at write time, adjusted
// only by an explicit supervisor decision afterwards.
const (
	ApprovalApproved = "approved"
	ApprovalPending  = "pending"
	ApprovalRejected = "rejected"
)

// Tracking methods
const (
	TrackingBulk       = "bulk"
	TrackingIndividual = "individual"
)

// Derived item statuses, computed at read time and never stored.
const (
	ItemStatusPending     = "pending"
	ItemStatusPendingScan = "pending_scan"
	ItemStatusReceived    = "received"
	ItemStatusPartial     = "partial"
)

// Discrepancy types
const (
	DiscrepancyQuantityShort = "quantity_short"
	DiscrepancyQuantityOver  = "quantity_over"
	DiscrepancyQualityIssue  = "quality_issue"
)

// Discrepancy resolution statuses
const (
	ResolutionOpen     = "open"
	ResolutionResolved = "resolved"
)

// Barcode capture task statuses
const (
	BarcodeTaskPending   = "pending"
	BarcodeTaskCompleted = "completed"
)

// ReceivingSession owns the lifecycle of one supplier delivery against one
// purchase order.
type ReceivingSession struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	SessionNumber      string         `json:"session_number" gorm:"not null;uniqueIndex"`
	PurchaseOrderID    uint           `json:"purchase_order_id" gorm:"not null;index"`
	Status             string         `json:"status" gorm:"not null;default:'in_progress';index"`
	TotalItemsExpected int            `json:"total_items_expected" gorm:"not null;default:0"`
	TotalItemsReceived int            `json:"total_items_received" gorm:"not null;default:0"`
	DocumentNumber     string         `json:"document_number"`
	DocumentType       string         `json:"document_type"`
	DocumentDate       *time.Time     `json:"document_date"`
	OperatorID         uint           `json:"operator_id" gorm:"not null"`
	Notes              string         `json:"notes"`
	StartedAt          time.Time      `json:"started_at"`
	CompletedAt        *time.Time     `json:"completed_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (ReceivingSession) TableName() string {
	return "receiving_sessions"
}

// InProgress reports whether the session still accepts receive events.
func (s *ReceivingSession) InProgress() bool {
	return s.Status == SessionStatusInProgress
}

// SessionNumberFor builds the yearly-unique session number.
func SessionNumberFor(year int, sequence int64) string {
	return fmt.Sprintf("RCV-%d-%05d", year, sequence)
}

// ReceivingItem reconciles one purchase order line within a session. The
// (session_id, purchase_order_item_id) pair is unique: re-receiving the
// same line is an update, never a second insert.
type ReceivingItem struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	SessionID           uint            `json:"session_id" gorm:"not null;uniqueIndex:idx_session_order_item"`
	PurchaseOrderItemID uint            `json:"purchase_order_item_id" gorm:"not null;uniqueIndex:idx_session_order_item"`
	ProductID           uint            `json:"product_id" gorm:"not null;index"`
	ExpectedQuantity    decimal.Decimal `json:"expected_quantity" gorm:"type:numeric(14,3);not null"`
	ReceivedQuantity    decimal.Decimal `json:"received_quantity" gorm:"type:numeric(14,3);not null"`
	ConditionStatus     string          `json:"condition_status" gorm:"not null;default:'good'"`
	ApprovalStatus      string          `json:"approval_status" gorm:"not null;default:'pending';index"`
	LocationID          *uint           `json:"location_id" gorm:"index"`
	BatchNumber         *string         `json:"batch_number"`
	ExpiryDate          *time.Time      `json:"expiry_date"`
	TrackingMethod      string          `json:"tracking_method" gorm:"not null;default:'bulk'"`
	BarcodeTaskID       *uint           `json:"barcode_task_id" gorm:"index"`
	PlacementBatchID    *string         `json:"placement_batch_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (ReceivingItem) TableName() string {
	return "receiving_items"
}

// Discrepancy records a quantity or condition mismatch for one product in
// one session. At most one row exists per (session, product).
type Discrepancy struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	SessionID        uint            `json:"session_id" gorm:"not null;uniqueIndex:idx_session_product"`
	ProductID        uint            `json:"product_id" gorm:"not null;uniqueIndex:idx_session_product"`
	Type             string          `json:"type" gorm:"not null"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity" gorm:"type:numeric(14,3);not null"`
	ActualQuantity   decimal.Decimal `json:"actual_quantity" gorm:"type:numeric(14,3);not null"`
	Description      string          `json:"description"`
	ResolutionStatus string          `json:"resolution_status" gorm:"not null;default:'open';index"`
	ResolutionNote   string          `json:"resolution_note"`
	ResolvedAt       *time.Time      `json:"resolved_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Discrepancy) TableName() string {
	return "discrepancies"
}

// BarcodeCaptureTask tracks per-unit scanning for individually tracked
// stock, 1:1 with a receiving item.
type BarcodeCaptureTask struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ExpectedQuantity  int       `json:"expected_quantity" gorm:"not null"`
	ScannedQuantity   int       `json:"scanned_quantity" gorm:"not null;default:0"`
	Status            string    `json:"status" gorm:"not null;default:'pending'"`
	CompletedManually bool      `json:"completed_manually" gorm:"not null;default:false"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (BarcodeCaptureTask) TableName() string {
	return "barcode_capture_tasks"
}

// Complete reports whether scanning finished, either by count or by an
// explicit completed signal from the scanning subsystem. The stored status
// is derived from this rule, never the other way around: raising the
// expected count above the scanned count reopens a count-completed task.
func (t *BarcodeCaptureTask) Complete() bool {
	return t.CompletedManually || t.ScannedQuantity >= t.ExpectedQuantity
}

// SyncStatus rewrites the stored status from the completion rule. Callers
// invoke it after changing the scanned or expected count.
func (t *BarcodeCaptureTask) SyncStatus() {
	if t.Complete() {
		t.Status = BarcodeTaskCompleted
	} else {
		t.Status = BarcodeTaskPending
	}
}
