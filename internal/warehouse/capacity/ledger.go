// Package capacity is the source of truth for storage occupancy. Checks
// return numbers the caller clamps to; only persistence failures surface as
// errors. Every read here takes a row lock so the read-modify-write of an
// occupancy counter serializes inside the enclosing transaction.
package capacity

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// Ledger answers availability questions and applies occupancy deltas across
// the three storage tiers.
type Ledger struct {
	locations    domain.LocationRepository
	levels       domain.LevelRepository
	subdivisions domain.SubdivisionRepository
}

// NewLedger creates a capacity ledger over the given repositories. The
// repositories must be bound to the transaction the caller mutates in.
func NewLedger(
	locations domain.LocationRepository,
	levels domain.LevelRepository,
	subdivisions domain.SubdivisionRepository,
) *Ledger {
	return &Ledger{locations: locations, levels: levels, subdivisions: subdivisions}
}

// LocationAvailability reports capacity, occupancy and headroom for one
// location. Available is zero with Unbounded set when capacity is zero.
func (l *Ledger) LocationAvailability(ctx context.Context, locationID uint) (*domain.LocationAvailability, error) {
	loc, err := l.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	headroom, bounded := loc.Headroom()
	return &domain.LocationAvailability{
		LocationID: loc.ID,
		Capacity:   loc.Capacity,
		Occupancy:  loc.CurrentOccupancy,
		Available:  headroom,
		Unbounded:  !bounded,
	}, nil
}

// SlotAvailability answers whether the slot may take the product and how
// much fits. Available is the minimum headroom across every bounded tier of
// the slot; a slot whose tiers are all unbounded reports Unbounded.
func (l *Ledger) SlotAvailability(ctx context.Context, ref domain.SlotRef, productID uint, requested decimal.Decimal) (*domain.SlotAvailability, error) {
	loc, err := l.locations.FindByIDForUpdate(ctx, ref.LocationID)
	if err != nil {
		return nil, err
	}

	if !loc.IsActive() {
		return &domain.SlotAvailability{Allowed: false, Reason: domain.SlotReasonInactive}, nil
	}

	available := decimal.Zero
	bounded := false

	if headroom, b := loc.Headroom(); b {
		available = headroom
		bounded = true
	}

	if ref.LevelID != nil {
		level, err := l.levels.FindByIDForUpdate(ctx, *ref.LevelID)
		if err != nil {
			return nil, err
		}
		if level.DedicatedProductID != nil && *level.DedicatedProductID != productID {
			return &domain.SlotAvailability{Allowed: false, Reason: domain.SlotReasonDedicatedToOther}, nil
		}
		if headroom, b := level.Headroom(); b {
			if !bounded || headroom.LessThan(available) {
				available = headroom
			}
			bounded = true
		}
	}

	if ref.SubdivisionID != nil {
		sub, err := l.subdivisions.FindByIDForUpdate(ctx, *ref.SubdivisionID)
		if err != nil {
			return nil, err
		}
		if !sub.AcceptsProduct(productID) {
			return &domain.SlotAvailability{Allowed: false, Reason: domain.SlotReasonDedicatedToOther}, nil
		}
		if headroom, b := sub.Headroom(); b {
			if !bounded || headroom.LessThan(available) {
				available = headroom
			}
			bounded = true
		}
	}

	if !bounded {
		return &domain.SlotAvailability{Allowed: true, Unbounded: true}, nil
	}

	if available.LessThanOrEqual(decimal.Zero) {
		return &domain.SlotAvailability{Allowed: false, Available: decimal.Zero, Reason: domain.SlotReasonExhausted}, nil
	}

	return &domain.SlotAvailability{Allowed: true, Available: available}, nil
}

// ApplyDelta increments (or decrements) the occupancy of every tier the slot
// names. It must run inside the same transaction as the accompanying
// inventory write, otherwise ledger and inventory drift.
func (l *Ledger) ApplyDelta(ctx context.Context, ref domain.SlotRef, delta decimal.Decimal) error {
	if err := l.locations.AddOccupancy(ctx, ref.LocationID, delta); err != nil {
		return err
	}
	if ref.LevelID != nil {
		if err := l.levels.AddOccupancy(ctx, *ref.LevelID, delta); err != nil {
			return err
		}
	}
	if ref.SubdivisionID != nil {
		if err := l.subdivisions.AddOccupancy(ctx, *ref.SubdivisionID, delta); err != nil {
			return err
		}
	}
	return nil
}
