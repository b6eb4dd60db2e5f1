package placement

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// Coordinator spills quantity that exceeds a primary slot into temporary
// storage. Intake of physically received goods never blocks: whatever does
// not fit anywhere is reported back as an unplaced remainder, not an error.
type Coordinator struct {
	locations domain.LocationRepository
}

// NewCoordinator creates an overflow coordinator.
func NewCoordinator(locations domain.LocationRepository) *Coordinator {
	return &Coordinator{locations: locations}
}

// PlaceOverflow walks active temporary locations in id order, skipping the
// already-tried ones, and fills each as far as its headroom allows. An
// unbounded temporary location absorbs everything. The returned lines are
// marked Temporary and carry the intended destination for the relocation
// task that follows each of them.
func (c *Coordinator) PlaceOverflow(ctx context.Context, quantity decimal.Decimal, excludeIDs []uint, intendedLocationID *uint) ([]domain.PlacementLine, decimal.Decimal, error) {
	remainder := quantity

	temporaries, err := c.locations.FindActiveTemporary(ctx, excludeIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var lines []domain.PlacementLine
	for _, loc := range temporaries {
		if remainder.LessThanOrEqual(decimal.Zero) {
			break
		}

		headroom, bounded := loc.Headroom()
		take := remainder
		if bounded {
			if headroom.LessThanOrEqual(decimal.Zero) {
				continue
			}
			take = decimal.Min(remainder, headroom)
		}

		lines = append(lines, domain.PlacementLine{
			LocationID:         loc.ID,
			Quantity:           take,
			Temporary:          true,
			IntendedLocationID: intendedLocationID,
		})
		remainder = remainder.Sub(take)
	}

	if remainder.LessThan(decimal.Zero) {
		remainder = decimal.Zero
	}
	return lines, remainder, nil
}
