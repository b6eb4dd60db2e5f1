package domain

import (
	"context"

	proddomain "github.com/wareline/warehouse-receiving/internal/product/domain"
	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// SessionRepository defines the contract for receiving session data access.
type SessionRepository interface {
	Create(ctx context.Context, session *ReceivingSession) error
	FindByID(ctx context.Context, id uint) (*ReceivingSession, error)
	FindActiveByPurchaseOrder(ctx context.Context, purchaseOrderID uint) (*ReceivingSession, error)
	// CountForYear returns how many sessions exist for the given year,
	// used to allocate the next yearly-unique session number.
	CountForYear(ctx context.Context, year int) (int64, error)
	Update(ctx context.Context, session *ReceivingSession) error
}

// ItemRepository defines the contract for receiving item data access.
type ItemRepository interface {
	Create(ctx context.Context, item *ReceivingItem) error
	Update(ctx context.Context, item *ReceivingItem) error
	FindByID(ctx context.Context, id uint) (*ReceivingItem, error)
	FindBySessionAndOrderItem(ctx context.Context, sessionID, purchaseOrderItemID uint) (*ReceivingItem, error)
	ListBySession(ctx context.Context, sessionID uint) ([]ReceivingItem, error)
	// CountReceived counts items with a positive received quantity.
	CountReceived(ctx context.Context, sessionID uint) (int64, error)
}

// DiscrepancyRepository defines the contract for discrepancy data access.
type DiscrepancyRepository interface {
	Create(ctx context.Context, discrepancy *Discrepancy) error
	Update(ctx context.Context, discrepancy *Discrepancy) error
	FindByID(ctx context.Context, id uint) (*Discrepancy, error)
	FindBySessionAndProduct(ctx context.Context, sessionID, productID uint) (*Discrepancy, error)
	// Delete removes a discrepancy whose mismatch was corrected away.
	Delete(ctx context.Context, id uint) error
	ListBySession(ctx context.Context, sessionID uint) ([]Discrepancy, error)
	// CountDistinctProducts counts discrepant products, not raw rows.
	CountDistinctProducts(ctx context.Context, sessionID uint) (int64, error)
}

// BarcodeTaskRepository defines the contract for barcode task data access.
type BarcodeTaskRepository interface {
	Create(ctx context.Context, task *BarcodeCaptureTask) error
	Update(ctx context.Context, task *BarcodeCaptureTask) error
	FindByID(ctx context.Context, id uint) (*BarcodeCaptureTask, error)
}

// Store bundles every repository a receiving operation touches, all bound
// to one transaction.
type Store interface {
	Sessions() SessionRepository
	Items() ItemRepository
	Discrepancies() DiscrepancyRepository
	BarcodeTasks() BarcodeTaskRepository
	PurchaseOrders() podomain.Repository
	Products() proddomain.Registry
	Locations() whdomain.LocationRepository
	Levels() whdomain.LevelRepository
	Subdivisions() whdomain.SubdivisionRepository
	StockUnits() whdomain.StockUnitRepository
	RelocationTasks() whdomain.RelocationTaskRepository
}

// UnitOfWork runs a function against a transaction-bound Store. The
// receiving-item write, capacity deltas, stock units, discrepancy upsert
// and barcode adjustment inside fn commit or roll back together.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
