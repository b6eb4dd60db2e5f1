package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	"github.com/wareline/warehouse-receiving/internal/warehouse/capacity"
	"github.com/wareline/warehouse-receiving/internal/warehouse/placement"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// placementResolver is the slice of the resolver the receive path uses,
// kept as an interface so tests can substitute it.
type placementResolver interface {
	Resolve(ctx context.Context, req placement.Request) (*whdomain.PlacementPlan, error)
	Place(ctx context.Context, req placement.Request) (*whdomain.PlacementResult, error)
}

// newResolver builds a resolver over the transaction-bound store, so its
// capacity reads and writes share the operation's transaction.
func newResolver(s domain.Store) *placement.Resolver {
	ledger := capacity.NewLedger(s.Locations(), s.Levels(), s.Subdivisions())
	return placement.NewResolver(ledger, s.Locations(), s.Levels(), s.Subdivisions(), s.StockUnits(), s.RelocationTasks())
}

func placementRequest(item *domain.ReceivingItem, hint *uint) placement.Request {
	return placement.Request{
		ProductID:       item.ProductID,
		Quantity:        item.ReceivedQuantity,
		LocationHint:    hint,
		BatchNumber:     item.BatchNumber,
		ExpiryDate:      item.ExpiryDate,
		ReceivingItemID: &item.ID,
	}
}

func placementRequestFor(productID uint, quantity decimal.Decimal, hint *uint) placement.Request {
	return placement.Request{
		ProductID:    productID,
		Quantity:     quantity,
		LocationHint: hint,
	}
}
