package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Relocation task statuses. Tasks are created when overflow lands in
// temporary storage and resolved by a separate relocation workflow.
const (
	RelocationStatusPending   = "pending"
	RelocationStatusCompleted = "completed"
	RelocationStatusCancelled = "cancelled"
)

// SlotRef identifies a slot at any tier of the storage hierarchy. Level and
// subdivision are optional refinements of the location.
type SlotRef struct {
	LocationID    uint
	LevelID       *uint
	SubdivisionID *uint
}

// LocationAvailability is the capacity ledger view of a single location.
type LocationAvailability struct {
	LocationID uint            `json:"location_id"`
	Capacity   decimal.Decimal `json:"capacity"`
	Occupancy  decimal.Decimal `json:"occupancy"`
	Available  decimal.Decimal `json:"available"`
	Unbounded  bool            `json:"unbounded"`
}

// Reasons a slot may refuse stock. Callers clamp to Available; a disallowed
// slot contributes zero.
const (
	SlotReasonDedicatedToOther = "dedicated_to_other_product"
	SlotReasonExhausted        = "exhausted"
	SlotReasonInactive         = "location_inactive"
)

// SlotAvailability is the capacity ledger answer for one slot and product.
// Available is the minimum headroom across the location, level and
// subdivision tiers; Unbounded means no tier carries a capacity bound.
type SlotAvailability struct {
	Allowed   bool            `json:"allowed"`
	Available decimal.Decimal `json:"available"`
	Unbounded bool            `json:"unbounded"`
	Reason    string          `json:"reason,omitempty"`
}

// PlacementLine is one slot assignment within a placement plan.
type PlacementLine struct {
	LocationID    uint            `json:"location_id"`
	LevelID       *uint           `json:"level_id,omitempty"`
	SubdivisionID *uint           `json:"subdivision_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	// Temporary marks an overflow line placed in temporary storage.
	Temporary bool `json:"temporary"`
	// IntendedLocationID is the location the stock should eventually reach,
	// set on temporary lines.
	IntendedLocationID *uint `json:"intended_location_id,omitempty"`
}

// SlotRef returns the slot this line places into.
func (l PlacementLine) SlotRef() SlotRef {
	return SlotRef{LocationID: l.LocationID, LevelID: l.LevelID, SubdivisionID: l.SubdivisionID}
}

// PlacementPlan is the resolver output: lines summing to the requested
// quantity minus Unplaced. All lines share one batch id so partial
// placements from a single receive event stay correlated.
type PlacementPlan struct {
	ProductID uint            `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	BatchID   string          `json:"batch_id"`
	Lines     []PlacementLine `json:"lines"`
	Unplaced  decimal.Decimal `json:"unplaced"`
}

// Placed returns the total quantity covered by the plan lines.
func (p *PlacementPlan) Placed() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// PrimaryLocationID returns the location of the first non-temporary line,
// or nil when everything overflowed.
func (p *PlacementPlan) PrimaryLocationID() *uint {
	for _, line := range p.Lines {
		if !line.Temporary {
			id := line.LocationID
			return &id
		}
	}
	return nil
}

// CapacityWarning is the soft signal attached to a successful placement
// whose remainder could not be stored anywhere. Intake never blocks on it.
type CapacityWarning struct {
	ProductID uint            `json:"product_id"`
	Unplaced  decimal.Decimal `json:"unplaced"`
	Message   string          `json:"message"`
}

// PlacementResult is a committed placement: the plan, the stock units and
// relocation tasks written for it, and the capacity warning if any.
type PlacementResult struct {
	Plan            PlacementPlan    `json:"plan"`
	RelocationTasks []RelocationTask `json:"relocation_tasks,omitempty"`
	Warning         *CapacityWarning `json:"warning,omitempty"`
}

// RelocationTask schedules a move of overflow stock from temporary storage
// to its intended slot.
type RelocationTask struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ProductID      uint            `json:"product_id" gorm:"not null;index"`
	FromLocationID uint            `json:"from_location_id" gorm:"not null;index"`
	ToLocationID   *uint           `json:"to_location_id" gorm:"index"`
	Quantity       decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null"`
	Status         string          `json:"status" gorm:"not null;default:'pending';index"`
	BatchID        string          `json:"batch_id" gorm:"index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (RelocationTask) TableName() string {
	return "relocation_tasks"
}

// StockUnit is a quantity of one product occupying one slot. It is the
// inventory write that accompanies every capacity delta.
type StockUnit struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	ProductID       uint            `json:"product_id" gorm:"not null;index"`
	LocationID      uint            `json:"location_id" gorm:"not null;index"`
	LevelID         *uint           `json:"level_id" gorm:"index"`
	SubdivisionID   *uint           `json:"subdivision_id" gorm:"index"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null"`
	BatchID         string          `json:"batch_id" gorm:"index"`
	BatchNumber     *string         `json:"batch_number"`
	ExpiryDate      *time.Time      `json:"expiry_date"`
	ReceivingItemID *uint           `json:"receiving_item_id" gorm:"index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (StockUnit) TableName() string {
	return "stock_units"
}

// StockUnitRepository defines the contract for stock unit data access.
type StockUnitRepository interface {
	Create(ctx context.Context, unit *StockUnit) error
	FindByBatchID(ctx context.Context, batchID string) ([]StockUnit, error)
}

// RelocationTaskRepository defines the contract for relocation task data access.
type RelocationTaskRepository interface {
	Create(ctx context.Context, task *RelocationTask) error
	// FindPending pages through open tasks in creation order, for the
	// relocation workflow picking up overflow moves.
	FindPending(ctx context.Context, limit, offset int) ([]RelocationTask, error)
}
