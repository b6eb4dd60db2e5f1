package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/product/domain"
)

// GormProductRegistry implements the product Registry using GORM.
type GormProductRegistry struct {
	db *gorm.DB
}

// NewGormProductRegistry creates a new GORM product registry.
func NewGormProductRegistry(db *gorm.DB) *GormProductRegistry {
	return &GormProductRegistry{db: db}
}

func (r *GormProductRegistry) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRegistry) FindBySupplierCode(ctx context.Context, supplierCode string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("supplier_code = ?", supplierCode).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ResolveOrCreate looks the supplier code up and auto-creates the mapping
// when missing. A concurrent create of the same code is absorbed by
// re-reading after the unique violation.
func (r *GormProductRegistry) ResolveOrCreate(ctx context.Context, supplierCode, name string) (*domain.Product, bool, error) {
	product, err := r.FindBySupplierCode(ctx, supplierCode)
	if err == nil {
		return product, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := &domain.Product{
		SKU:          generatedSKU(supplierCode),
		SupplierCode: supplierCode,
		Name:         name,
		AutoCreated:  true,
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := r.FindBySupplierCode(ctx, supplierCode)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create product mapping: %w", err)
	}

	return created, true, nil
}

func generatedSKU(supplierCode string) string {
	return "AUTO-" + strings.ToUpper(supplierCode)
}
