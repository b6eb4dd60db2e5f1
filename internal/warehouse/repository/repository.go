package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// GormLocationRepository implements LocationRepository using GORM.
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository.
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) FindByID(ctx context.Context, id uint) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *GormLocationRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loc, id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *GormLocationRepository) FindFirstByType(ctx context.Context, locationType string) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", locationType, domain.LocationStatusActive).
		Order("id").
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *GormLocationRepository) FindFirstAvailable(ctx context.Context) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).
		Where("type <> ? AND status = ?", domain.LocationTypeTemporary, domain.LocationStatusActive).
		Where("capacity = 0 OR current_occupancy < capacity").
		Order("id").
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *GormLocationRepository) FindActiveTemporary(ctx context.Context, excludeIDs []uint) ([]domain.Location, error) {
	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("type = ? AND status = ?", domain.LocationTypeTemporary, domain.LocationStatusActive)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var locations []domain.Location
	if err := query.Order("id").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *GormLocationRepository) AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("id = ?", id).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy + ?", delta)).Error
}

// GormLevelRepository implements LevelRepository using GORM.
type GormLevelRepository struct {
	db *gorm.DB
}

// NewGormLevelRepository creates a new GORM storage level repository.
func NewGormLevelRepository(db *gorm.DB) *GormLevelRepository {
	return &GormLevelRepository{db: db}
}

func (r *GormLevelRepository) FindByID(ctx context.Context, id uint) (*domain.StorageLevel, error) {
	var level domain.StorageLevel
	if err := r.db.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *GormLevelRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.StorageLevel, error) {
	var level domain.StorageLevel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&level, id).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *GormLevelRepository) FindDedicated(ctx context.Context, productID uint) (*domain.StorageLevel, error) {
	var level domain.StorageLevel
	err := r.db.WithContext(ctx).
		Where("dedicated_product_id = ?", productID).
		Order("id").
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *GormLevelRepository) FindDedicatedInLocation(ctx context.Context, productID, locationID uint) (*domain.StorageLevel, error) {
	var level domain.StorageLevel
	err := r.db.WithContext(ctx).
		Where("dedicated_product_id = ? AND location_id = ?", productID, locationID).
		Order("id").
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *GormLevelRepository) AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.StorageLevel{}).
		Where("id = ?", id).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy + ?", delta)).Error
}

// GormSubdivisionRepository implements SubdivisionRepository using GORM.
type GormSubdivisionRepository struct {
	db *gorm.DB
}

// NewGormSubdivisionRepository creates a new GORM subdivision repository.
func NewGormSubdivisionRepository(db *gorm.DB) *GormSubdivisionRepository {
	return &GormSubdivisionRepository{db: db}
}

func (r *GormSubdivisionRepository) FindByID(ctx context.Context, id uint) (*domain.Subdivision, error) {
	var sub domain.Subdivision
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubdivisionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Subdivision, error) {
	var sub domain.Subdivision
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubdivisionRepository) FindDedicated(ctx context.Context, productID uint) (*domain.Subdivision, error) {
	var sub domain.Subdivision
	err := r.db.WithContext(ctx).
		Where("dedicated_product_id = ?", productID).
		Order("id").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubdivisionRepository) FindDedicatedInLocation(ctx context.Context, productID, locationID uint) (*domain.Subdivision, error) {
	var sub domain.Subdivision
	err := r.db.WithContext(ctx).
		Where("dedicated_product_id = ? AND location_id = ?", productID, locationID).
		Order("id").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubdivisionRepository) AddOccupancy(ctx context.Context, id uint, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.Subdivision{}).
		Where("id = ?", id).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy + ?", delta)).Error
}

// GormStockUnitRepository implements StockUnitRepository using GORM.
type GormStockUnitRepository struct {
	db *gorm.DB
}

// NewGormStockUnitRepository creates a new GORM stock unit repository.
func NewGormStockUnitRepository(db *gorm.DB) *GormStockUnitRepository {
	return &GormStockUnitRepository{db: db}
}

func (r *GormStockUnitRepository) Create(ctx context.Context, unit *domain.StockUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *GormStockUnitRepository) FindByBatchID(ctx context.Context, batchID string) ([]domain.StockUnit, error) {
	var units []domain.StockUnit
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("id").
		Find(&units).Error
	return units, err
}

// GormRelocationTaskRepository implements RelocationTaskRepository using GORM.
type GormRelocationTaskRepository struct {
	db *gorm.DB
}

// NewGormRelocationTaskRepository creates a new GORM relocation task repository.
func NewGormRelocationTaskRepository(db *gorm.DB) *GormRelocationTaskRepository {
	return &GormRelocationTaskRepository{db: db}
}

func (r *GormRelocationTaskRepository) Create(ctx context.Context, task *domain.RelocationTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *GormRelocationTaskRepository) FindPending(ctx context.Context, limit, offset int) ([]domain.RelocationTask, error) {
	var tasks []domain.RelocationTask
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.RelocationStatusPending).
		Order("id").
		Limit(limit).Offset(offset).
		Find(&tasks).Error
	return tasks, err
}
