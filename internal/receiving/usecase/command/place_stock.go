package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	"github.com/wareline/warehouse-receiving/pkg/metrics"
)

// PlaceStockCommand places a quantity of a product directly, outside any
// receiving session.
type PlaceStockCommand struct {
	ProductID      uint
	Quantity       decimal.Decimal
	LocationHintID *uint
	DryRun         bool
}

// PlaceStockHandler handles the standalone placement command.
type PlaceStockHandler struct {
	uow domain.UnitOfWork
}

// NewPlaceStockHandler creates a new place stock handler.
func NewPlaceStockHandler(uow domain.UnitOfWork) *PlaceStockHandler {
	return &PlaceStockHandler{uow: uow}
}

// Handle resolves and commits a placement. With DryRun set the plan is
// computed but no occupancy or stock is written, which lets callers preview
// where stock would land.
func (h *PlaceStockHandler) Handle(ctx context.Context, cmd PlaceStockCommand) (*whdomain.PlacementResult, error) {
	if cmd.ProductID == 0 {
		return nil, domain.NewValidationError("product_id", "is required")
	}
	if cmd.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}

	var result *whdomain.PlacementResult

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		if _, err := s.Products().FindByID(ctx, cmd.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "product", ID: cmd.ProductID}
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		resolver := newResolver(s)
		req := placementRequestFor(cmd.ProductID, cmd.Quantity, cmd.LocationHintID)

		if cmd.DryRun {
			plan, err := resolver.Resolve(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to resolve placement: %w", err)
			}
			result = &whdomain.PlacementResult{Plan: *plan}
			if plan.Unplaced.GreaterThan(decimal.Zero) {
				result.Warning = &whdomain.CapacityWarning{
					ProductID: cmd.ProductID,
					Unplaced:  plan.Unplaced,
					Message:   "no storage capacity left; quantity requires manual follow-up",
				}
			}
			return nil
		}

		placed, err := resolver.Place(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to place stock: %w", err)
		}
		result = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !cmd.DryRun {
		metrics.RelocationTasksCreated.Add(float64(len(result.RelocationTasks)))
		if result.Warning != nil {
			unplaced, _ := result.Warning.Unplaced.Float64()
			metrics.PlacementUnplacedQuantity.Add(unplaced)
		}
	}

	return result, nil
}
