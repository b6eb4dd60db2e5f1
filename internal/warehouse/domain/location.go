package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Location types. Temporary locations absorb overflow only and are never
// chosen as a primary slot for incoming stock.
const (
	LocationTypeStandard        = "standard"
	LocationTypeTemporary       = "temporary"
	LocationTypeProduction      = "production"
	LocationTypeQCHold          = "qc_hold"
	LocationTypeQuarantine      = "quarantine"
	LocationTypePendingApproval = "pending_approval"
)

// Location statuses
const (
	LocationStatusActive   = "active"
	LocationStatusInactive = "inactive"
)

// Location is the top tier of the storage hierarchy. Capacity zero means
// unbounded.
type Location struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Code             string          `json:"code" gorm:"not null;uniqueIndex"`
	Name             string          `json:"name"`
	Type             string          `json:"type" gorm:"not null;default:'standard';index"`
	Capacity         decimal.Decimal `json:"capacity" gorm:"type:numeric(14,3);not null;default:0"`
	CurrentOccupancy decimal.Decimal `json:"current_occupancy" gorm:"type:numeric(14,3);not null;default:0"`
	Status           string          `json:"status" gorm:"not null;default:'active';index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Location) TableName() string {
	return "locations"
}

// IsActive reports whether the location accepts stock.
func (l *Location) IsActive() bool {
	return l.Status == LocationStatusActive
}

// Headroom returns the remaining capacity and whether the location is
// bounded at all.
func (l *Location) Headroom() (decimal.Decimal, bool) {
	if l.Capacity.IsZero() {
		return decimal.Zero, false
	}
	return l.Capacity.Sub(l.CurrentOccupancy), true
}

// Exhausted reports whether a bounded location has no headroom left.
func (l *Location) Exhausted() bool {
	headroom, bounded := l.Headroom()
	return bounded && headroom.LessThanOrEqual(decimal.Zero)
}

// StorageLevel is a named shelf level within a location. Capacity zero
// inherits the location bound; a dedicated product reserves the whole level.
type StorageLevel struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	LocationID         uint            `json:"location_id" gorm:"not null;index"`
	Name               string          `json:"name" gorm:"not null"`
	Capacity           decimal.Decimal `json:"capacity" gorm:"type:numeric(14,3);not null;default:0"`
	CurrentOccupancy   decimal.Decimal `json:"current_occupancy" gorm:"type:numeric(14,3);not null;default:0"`
	DedicatedProductID *uint           `json:"dedicated_product_id" gorm:"index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (StorageLevel) TableName() string {
	return "storage_levels"
}

// Headroom returns the remaining capacity and whether the level is bounded.
func (s *StorageLevel) Headroom() (decimal.Decimal, bool) {
	if s.Capacity.IsZero() {
		return decimal.Zero, false
	}
	return s.Capacity.Sub(s.CurrentOccupancy), true
}

// Subdivision is a numbered cell within a storage level. A nil dedicated
// product means the cell is shared.
type Subdivision struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	LevelID            uint            `json:"level_id" gorm:"not null;index"`
	LocationID         uint            `json:"location_id" gorm:"not null;index"`
	Number             int             `json:"number" gorm:"not null"`
	Capacity           decimal.Decimal `json:"capacity" gorm:"type:numeric(14,3);not null;default:0"`
	CurrentOccupancy   decimal.Decimal `json:"current_occupancy" gorm:"type:numeric(14,3);not null;default:0"`
	DedicatedProductID *uint           `json:"dedicated_product_id" gorm:"index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Subdivision) TableName() string {
	return "subdivisions"
}

// Headroom returns the remaining capacity and whether the cell is bounded.
func (s *Subdivision) Headroom() (decimal.Decimal, bool) {
	if s.Capacity.IsZero() {
		return decimal.Zero, false
	}
	return s.Capacity.Sub(s.CurrentOccupancy), true
}

// AcceptsProduct reports whether the cell may hold the given product.
func (s *Subdivision) AcceptsProduct(productID uint) bool {
	return s.DedicatedProductID == nil || *s.DedicatedProductID == productID
}

// LocationRepository defines the contract for location data access. The
// ForUpdate variants take a row lock and must be used for any read that
// precedes an occupancy delta in the same transaction.
type LocationRepository interface {
	FindByID(ctx context.Context, id uint) (*Location, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Location, error)
	// FindFirstByType returns the first active location of the given type,
	// ordered by id.
	FindFirstByType(ctx context.Context, locationType string) (*Location, error)
	// FindFirstAvailable returns the first active non-temporary location
	// with spare capacity, ordered by id.
	FindFirstAvailable(ctx context.Context) (*Location, error)
	// FindActiveTemporary returns active temporary locations ordered by id,
	// excluding the given ids.
	FindActiveTemporary(ctx context.Context, excludeIDs []uint) ([]Location, error)
	AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error
}

// LevelRepository defines the contract for storage level data access.
type LevelRepository interface {
	FindByID(ctx context.Context, id uint) (*StorageLevel, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*StorageLevel, error)
	// FindDedicated returns the first level dedicated to the product, by id.
	FindDedicated(ctx context.Context, productID uint) (*StorageLevel, error)
	FindDedicatedInLocation(ctx context.Context, productID, locationID uint) (*StorageLevel, error)
	AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error
}

// SubdivisionRepository defines the contract for subdivision data access.
type SubdivisionRepository interface {
	FindByID(ctx context.Context, id uint) (*Subdivision, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Subdivision, error)
	// FindDedicated returns the first subdivision dedicated to the product, by id.
	FindDedicated(ctx context.Context, productID uint) (*Subdivision, error)
	FindDedicatedInLocation(ctx context.Context, productID, locationID uint) (*Subdivision, error)
	AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error
}
