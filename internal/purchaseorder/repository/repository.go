package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
)

// GormPurchaseOrderRepository implements the purchase order Repository using GORM.
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GORM purchase order repository.
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&po, id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *GormPurchaseOrderRepository) FindItemByID(ctx context.Context, itemID uint) (*domain.PurchaseOrderItem, error) {
	var item domain.PurchaseOrderItem
	if err := r.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormPurchaseOrderRepository) ListItems(ctx context.Context, purchaseOrderID uint) ([]domain.PurchaseOrderItem, error) {
	var items []domain.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("id").
		Find(&items).Error
	return items, err
}

func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormPurchaseOrderRepository) SetItemProduct(ctx context.Context, itemID, productID uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Update("product_id", productID).Error
}
