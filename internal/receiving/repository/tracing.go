package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

var tracer = otel.Tracer("receiving-repository")

// GormSessionRepositoryWithTracing wraps GormSessionRepository with tracing.
type GormSessionRepositoryWithTracing struct {
	*GormSessionRepository
}

// NewGormSessionRepositoryWithTracing creates a session repository with tracing.
func NewGormSessionRepositoryWithTracing(db *gorm.DB) *GormSessionRepositoryWithTracing {
	return &GormSessionRepositoryWithTracing{
		GormSessionRepository: NewGormSessionRepository(db),
	}
}

// Create with tracing
func (r *GormSessionRepositoryWithTracing) Create(ctx context.Context, session *domain.ReceivingSession) error {
	ctx, span := tracer.Start(ctx, "repository.Session.Create",
		trace.WithAttributes(
			attribute.Int("purchase_order.id", int(session.PurchaseOrderID)),
		),
	)
	defer span.End()

	if err := r.GormSessionRepository.Create(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("session.number", session.SessionNumber))
	return nil
}

// FindByID with tracing
func (r *GormSessionRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.ReceivingSession, error) {
	ctx, span := tracer.Start(ctx, "repository.Session.FindByID",
		trace.WithAttributes(
			attribute.Int("session.id", int(id)),
		),
	)
	defer span.End()

	session, err := r.GormSessionRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("session.status", session.Status))
	return session, nil
}

// GormItemRepositoryWithTracing wraps GormItemRepository with tracing.
type GormItemRepositoryWithTracing struct {
	*GormItemRepository
}

// NewGormItemRepositoryWithTracing creates an item repository with tracing.
func NewGormItemRepositoryWithTracing(db *gorm.DB) *GormItemRepositoryWithTracing {
	return &GormItemRepositoryWithTracing{
		GormItemRepository: NewGormItemRepository(db),
	}
}

// FindBySessionAndOrderItem with tracing
func (r *GormItemRepositoryWithTracing) FindBySessionAndOrderItem(ctx context.Context, sessionID, purchaseOrderItemID uint) (*domain.ReceivingItem, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.FindBySessionAndOrderItem",
		trace.WithAttributes(
			attribute.Int("session.id", int(sessionID)),
			attribute.Int("order_item.id", int(purchaseOrderItemID)),
		),
	)
	defer span.End()

	item, err := r.GormItemRepository.FindBySessionAndOrderItem(ctx, sessionID, purchaseOrderItemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("item.approval_status", item.ApprovalStatus))
	return item, nil
}

// Update with tracing
func (r *GormItemRepositoryWithTracing) Update(ctx context.Context, item *domain.ReceivingItem) error {
	ctx, span := tracer.Start(ctx, "repository.Item.Update",
		trace.WithAttributes(
			attribute.Int("item.id", int(item.ID)),
			attribute.String("item.approval_status", item.ApprovalStatus),
		),
	)
	defer span.End()

	if err := r.GormItemRepository.Update(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
