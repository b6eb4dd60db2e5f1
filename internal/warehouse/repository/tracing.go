package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

var tracer = otel.Tracer("warehouse-repository")

// GormLocationRepositoryWithTracing wraps GormLocationRepository with tracing
// on the operations the placement path hits hardest.
type GormLocationRepositoryWithTracing struct {
	*GormLocationRepository
}

// NewGormLocationRepositoryWithTracing creates a location repository with tracing.
func NewGormLocationRepositoryWithTracing(db *gorm.DB) *GormLocationRepositoryWithTracing {
	return &GormLocationRepositoryWithTracing{
		GormLocationRepository: NewGormLocationRepository(db),
	}
}

// FindByIDForUpdate with tracing
func (r *GormLocationRepositoryWithTracing) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Location, error) {
	ctx, span := tracer.Start(ctx, "repository.Location.FindByIDForUpdate",
		trace.WithAttributes(
			attribute.Int("location.id", int(id)),
		),
	)
	defer span.End()

	loc, err := r.GormLocationRepository.FindByIDForUpdate(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("location.type", loc.Type),
		attribute.String("location.occupancy", loc.CurrentOccupancy.String()),
	)
	return loc, nil
}

// FindActiveTemporary with tracing
func (r *GormLocationRepositoryWithTracing) FindActiveTemporary(ctx context.Context, excludeIDs []uint) ([]domain.Location, error) {
	ctx, span := tracer.Start(ctx, "repository.Location.FindActiveTemporary",
		trace.WithAttributes(
			attribute.Int("query.excluded", len(excludeIDs)),
		),
	)
	defer span.End()

	locations, err := r.GormLocationRepository.FindActiveTemporary(ctx, excludeIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(locations)))
	return locations, nil
}

// AddOccupancy with tracing
func (r *GormLocationRepositoryWithTracing) AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error {
	ctx, span := tracer.Start(ctx, "repository.Location.AddOccupancy",
		trace.WithAttributes(
			attribute.Int("location.id", int(id)),
			attribute.String("delta", delta.String()),
		),
	)
	defer span.End()

	if err := r.GormLocationRepository.AddOccupancy(ctx, id, delta); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// GormSubdivisionRepositoryWithTracing wraps GormSubdivisionRepository with tracing.
type GormSubdivisionRepositoryWithTracing struct {
	*GormSubdivisionRepository
}

// NewGormSubdivisionRepositoryWithTracing creates a subdivision repository with tracing.
func NewGormSubdivisionRepositoryWithTracing(db *gorm.DB) *GormSubdivisionRepositoryWithTracing {
	return &GormSubdivisionRepositoryWithTracing{
		GormSubdivisionRepository: NewGormSubdivisionRepository(db),
	}
}

// FindDedicated with tracing
func (r *GormSubdivisionRepositoryWithTracing) FindDedicated(ctx context.Context, productID uint) (*domain.Subdivision, error) {
	ctx, span := tracer.Start(ctx, "repository.Subdivision.FindDedicated",
		trace.WithAttributes(
			attribute.Int("product.id", int(productID)),
		),
	)
	defer span.End()

	sub, err := r.GormSubdivisionRepository.FindDedicated(ctx, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("subdivision.id", int(sub.ID)),
		attribute.String("subdivision.occupancy", sub.CurrentOccupancy.String()),
	)
	return sub, nil
}

// AddOccupancy with tracing
func (r *GormSubdivisionRepositoryWithTracing) AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error {
	ctx, span := tracer.Start(ctx, "repository.Subdivision.AddOccupancy",
		trace.WithAttributes(
			attribute.Int("subdivision.id", int(id)),
			attribute.String("delta", delta.String()),
		),
	)
	defer span.End()

	if err := r.GormSubdivisionRepository.AddOccupancy(ctx, id, delta); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
