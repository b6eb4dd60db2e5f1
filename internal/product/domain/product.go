package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Product is the internal SKU a supplier product code maps onto. Products
// auto-created during receiving are flagged so they can be curated later.
type Product struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SKU          string         `json:"sku" gorm:"not null;uniqueIndex"`
	SupplierCode string         `json:"supplier_code" gorm:"not null;uniqueIndex"`
	Name         string         `json:"name"`
	AutoCreated  bool           `json:"auto_created" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// Registry resolves supplier product codes to internal products. Mapping
// creation is an auditable event.
type Registry interface {
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindBySupplierCode(ctx context.Context, supplierCode string) (*Product, error)
	// ResolveOrCreate returns the product mapped to the supplier code,
	// creating an auto-flagged product when none exists. The boolean reports
	// whether a mapping was created.
	ResolveOrCreate(ctx context.Context, supplierCode, name string) (*Product, bool, error)
}
