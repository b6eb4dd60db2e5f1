// Package placement decides where incoming stock goes: hint first, then
// product dedication, then the default active location, with overflow
// spilling into temporary storage.
package placement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/warehouse/capacity"
	"github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// Request asks for a slot assignment of one product quantity. The optional
// location hint wins over dedication when it is usable.
type Request struct {
	ProductID    uint
	Quantity     decimal.Decimal
	LocationHint *uint

	// Carried onto the stock units written by Place.
	BatchNumber     *string
	ExpiryDate      *time.Time
	ReceivingItemID *uint
}

// Resolver produces placement plans and commits them.
type Resolver struct {
	ledger       *capacity.Ledger
	locations    domain.LocationRepository
	levels       domain.LevelRepository
	subdivisions domain.SubdivisionRepository
	stock        domain.StockUnitRepository
	relocations  domain.RelocationTaskRepository
	overflow     *Coordinator
}

// NewResolver creates a resolver over transaction-bound repositories.
func NewResolver(
	ledger *capacity.Ledger,
	locations domain.LocationRepository,
	levels domain.LevelRepository,
	subdivisions domain.SubdivisionRepository,
	stock domain.StockUnitRepository,
	relocations domain.RelocationTaskRepository,
) *Resolver {
	return &Resolver{
		ledger:       ledger,
		locations:    locations,
		levels:       levels,
		subdivisions: subdivisions,
		stock:        stock,
		relocations:  relocations,
		overflow:     NewCoordinator(locations),
	}
}

// Resolve computes a placement plan without writing anything. Line
// quantities sum to the request unless Unplaced is non-zero.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*domain.PlacementPlan, error) {
	plan := &domain.PlacementPlan{
		ProductID: req.ProductID,
		Requested: req.Quantity,
		BatchID:   uuid.New().String(),
		Unplaced:  decimal.Zero,
	}

	remainder := req.Quantity

	primary, err := r.resolvePrimarySlot(ctx, req.ProductID, req.LocationHint)
	if err != nil {
		return nil, err
	}

	var tried []uint
	if primary != nil {
		avail, err := r.ledger.SlotAvailability(ctx, *primary, req.ProductID, remainder)
		if err != nil {
			return nil, err
		}

		take := decimal.Zero
		if avail.Allowed {
			if avail.Unbounded {
				take = remainder
			} else {
				take = decimal.Min(remainder, avail.Available)
			}
		}

		if take.GreaterThan(decimal.Zero) {
			plan.Lines = append(plan.Lines, domain.PlacementLine{
				LocationID:    primary.LocationID,
				LevelID:       primary.LevelID,
				SubdivisionID: primary.SubdivisionID,
				Quantity:      take,
			})
			remainder = remainder.Sub(take)
		}
		tried = append(tried, primary.LocationID)
	}

	if remainder.GreaterThan(decimal.Zero) {
		var intended *uint
		if primary != nil {
			id := primary.LocationID
			intended = &id
		}

		overflowLines, unplaced, err := r.overflow.PlaceOverflow(ctx, remainder, tried, intended)
		if err != nil {
			return nil, err
		}
		plan.Lines = append(plan.Lines, overflowLines...)
		plan.Unplaced = unplaced
	}

	return plan, nil
}

// Place resolves a plan and commits it: one occupancy delta and one stock
// unit per line, one relocation task per temporary line. Must run inside
// the caller's transaction.
func (r *Resolver) Place(ctx context.Context, req Request) (*domain.PlacementResult, error) {
	plan, err := r.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &domain.PlacementResult{Plan: *plan}

	for _, line := range plan.Lines {
		if err := r.ledger.ApplyDelta(ctx, line.SlotRef(), line.Quantity); err != nil {
			return nil, err
		}

		unit := &domain.StockUnit{
			ProductID:       req.ProductID,
			LocationID:      line.LocationID,
			LevelID:         line.LevelID,
			SubdivisionID:   line.SubdivisionID,
			Quantity:        line.Quantity,
			BatchID:         plan.BatchID,
			BatchNumber:     req.BatchNumber,
			ExpiryDate:      req.ExpiryDate,
			ReceivingItemID: req.ReceivingItemID,
		}
		if err := r.stock.Create(ctx, unit); err != nil {
			return nil, err
		}

		if line.Temporary {
			task := &domain.RelocationTask{
				ProductID:      req.ProductID,
				FromLocationID: line.LocationID,
				ToLocationID:   line.IntendedLocationID,
				Quantity:       line.Quantity,
				Status:         domain.RelocationStatusPending,
				BatchID:        plan.BatchID,
			}
			if err := r.relocations.Create(ctx, task); err != nil {
				return nil, err
			}
			result.RelocationTasks = append(result.RelocationTasks, *task)
		}
	}

	if plan.Unplaced.GreaterThan(decimal.Zero) {
		result.Warning = &domain.CapacityWarning{
			ProductID: req.ProductID,
			Unplaced:  plan.Unplaced,
			Message:   "no storage capacity left; quantity requires manual follow-up",
		}
	}

	return result, nil
}

// resolvePrimarySlot walks the candidate chain: usable hint, dedicated
// subdivision, dedicated level, first active non-temporary location with
// headroom. Returns nil when nothing qualifies.
func (r *Resolver) resolvePrimarySlot(ctx context.Context, productID uint, hint *uint) (*domain.SlotRef, error) {
	if hint != nil {
		ref, err := r.resolveHint(ctx, productID, *hint)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			return ref, nil
		}
	}

	sub, err := r.subdivisions.FindDedicated(ctx, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub != nil {
		return &domain.SlotRef{LocationID: sub.LocationID, LevelID: &sub.LevelID, SubdivisionID: &sub.ID}, nil
	}

	level, err := r.levels.FindDedicated(ctx, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if level != nil {
		return &domain.SlotRef{LocationID: level.LocationID, LevelID: &level.ID}, nil
	}

	loc, err := r.locations.FindFirstAvailable(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if loc != nil {
		return &domain.SlotRef{LocationID: loc.ID}, nil
	}

	return nil, nil
}

// resolveHint narrows a hinted location to its most specific usable slot.
// Temporary or inactive hints are ignored rather than rejected, so intake
// proceeds through the normal chain.
func (r *Resolver) resolveHint(ctx context.Context, productID, locationID uint) (*domain.SlotRef, error) {
	loc, err := r.locations.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !loc.IsActive() || loc.Type == domain.LocationTypeTemporary {
		return nil, nil
	}

	sub, err := r.subdivisions.FindDedicatedInLocation(ctx, productID, loc.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub != nil {
		return &domain.SlotRef{LocationID: loc.ID, LevelID: &sub.LevelID, SubdivisionID: &sub.ID}, nil
	}

	level, err := r.levels.FindDedicatedInLocation(ctx, productID, loc.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if level != nil {
		return &domain.SlotRef{LocationID: loc.ID, LevelID: &level.ID}, nil
	}

	return &domain.SlotRef{LocationID: loc.ID}, nil
}
