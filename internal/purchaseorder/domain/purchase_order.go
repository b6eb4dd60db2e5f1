package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase order statuses written back by session completion.
const (
	StatusPending         = "pending"
	StatusConfirmed       = "confirmed"
	StatusDelivered       = "delivered"
	StatusPartialDelivery = "partial_delivery"
)

// PurchaseOrder is the expected-goods document a receiving session
// reconciles against.
type PurchaseOrder struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	OrderNumber string              `json:"order_number" gorm:"not null;uniqueIndex"`
	SupplierID  uint                `json:"supplier_id" gorm:"not null;index"`
	Status      string              `json:"status" gorm:"not null;default:'pending';index"`
	OrderDate   *time.Time          `json:"order_date"`
	Items       []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem is one expected line. ProductID is nil until the
// supplier code is mapped to an internal product during receiving.
type PurchaseOrderItem struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	PurchaseOrderID     uint            `json:"purchase_order_id" gorm:"not null;index"`
	ProductID           *uint           `json:"product_id" gorm:"index"`
	SupplierProductCode string          `json:"supplier_product_code" gorm:"not null"`
	Description         string          `json:"description"`
	ExpectedQuantity    decimal.Decimal `json:"expected_quantity" gorm:"type:numeric(14,3);not null"`
	UnitPrice           decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,4);not null;default:0"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// Repository defines the contract for purchase order data access. This
// engine reads orders and items and writes the resulting status only.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*PurchaseOrder, error)
	FindItemByID(ctx context.Context, itemID uint) (*PurchaseOrderItem, error)
	ListItems(ctx context.Context, purchaseOrderID uint) ([]PurchaseOrderItem, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	// SetItemProduct binds an internal product to an order line after the
	// supplier code has been mapped.
	SetItemProduct(ctx context.Context, itemID, productID uint) error
}
