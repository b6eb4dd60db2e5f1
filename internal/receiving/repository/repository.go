package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	proddomain "github.com/wareline/warehouse-receiving/internal/product/domain"
	productrepo "github.com/wareline/warehouse-receiving/internal/product/repository"
	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	porepo "github.com/wareline/warehouse-receiving/internal/purchaseorder/repository"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	whrepo "github.com/wareline/warehouse-receiving/internal/warehouse/repository"
)

// GormSessionRepository implements SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM session repository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create inserts inside a savepoint: on Postgres a unique violation aborts
// the surrounding transaction, and the savepoint rollback keeps it usable so
// the caller can recover the duplicate instead of failing the whole unit.
func (r *GormSessionRepository) Create(ctx context.Context, session *domain.ReceivingSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(session).Error
	})
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id uint) (*domain.ReceivingSession, error) {
	var session domain.ReceivingSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) FindActiveByPurchaseOrder(ctx context.Context, purchaseOrderID uint) (*domain.ReceivingSession, error) {
	var session domain.ReceivingSession
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ? AND status = ?", purchaseOrderID, domain.SessionStatusInProgress).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ReceivingSession{}).
		Where("session_number LIKE ?", fmt.Sprintf("RCV-%d-%%", year)).
		Count(&count).Error
	return count, err
}

func (r *GormSessionRepository) Update(ctx context.Context, session *domain.ReceivingSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GORM receiving item repository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// Create inserts inside a savepoint so the unique (session, order item)
// index race leaves the surrounding transaction usable for the retry-as-
// update path.
func (r *GormItemRepository) Create(ctx context.Context, item *domain.ReceivingItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(item).Error
	})
}

func (r *GormItemRepository) Update(ctx context.Context, item *domain.ReceivingItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uint) (*domain.ReceivingItem, error) {
	var item domain.ReceivingItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindBySessionAndOrderItem(ctx context.Context, sessionID, purchaseOrderItemID uint) (*domain.ReceivingItem, error) {
	var item domain.ReceivingItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND purchase_order_item_id = ?", sessionID, purchaseOrderItemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) ListBySession(ctx context.Context, sessionID uint) ([]domain.ReceivingItem, error) {
	var items []domain.ReceivingItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&items).Error
	return items, err
}

func (r *GormItemRepository) CountReceived(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ReceivingItem{}).
		Where("session_id = ? AND received_quantity > 0", sessionID).
		Count(&count).Error
	return count, err
}

// GormDiscrepancyRepository implements DiscrepancyRepository using GORM.
type GormDiscrepancyRepository struct {
	db *gorm.DB
}

// NewGormDiscrepancyRepository creates a new GORM discrepancy repository.
func NewGormDiscrepancyRepository(db *gorm.DB) *GormDiscrepancyRepository {
	return &GormDiscrepancyRepository{db: db}
}

// Create inserts inside a savepoint; see GormItemRepository.Create.
func (r *GormDiscrepancyRepository) Create(ctx context.Context, discrepancy *domain.Discrepancy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(discrepancy).Error
	})
}

func (r *GormDiscrepancyRepository) Update(ctx context.Context, discrepancy *domain.Discrepancy) error {
	return r.db.WithContext(ctx).Save(discrepancy).Error
}

func (r *GormDiscrepancyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Discrepancy{}, id).Error
}

func (r *GormDiscrepancyRepository) FindByID(ctx context.Context, id uint) (*domain.Discrepancy, error) {
	var discrepancy domain.Discrepancy
	if err := r.db.WithContext(ctx).First(&discrepancy, id).Error; err != nil {
		return nil, err
	}
	return &discrepancy, nil
}

func (r *GormDiscrepancyRepository) FindBySessionAndProduct(ctx context.Context, sessionID, productID uint) (*domain.Discrepancy, error) {
	var discrepancy domain.Discrepancy
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		First(&discrepancy).Error
	if err != nil {
		return nil, err
	}
	return &discrepancy, nil
}

func (r *GormDiscrepancyRepository) ListBySession(ctx context.Context, sessionID uint) ([]domain.Discrepancy, error) {
	var discrepancies []domain.Discrepancy
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&discrepancies).Error
	return discrepancies, err
}

func (r *GormDiscrepancyRepository) CountDistinctProducts(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Discrepancy{}).
		Where("session_id = ?", sessionID).
		Distinct("product_id").
		Count(&count).Error
	return count, err
}

// GormBarcodeTaskRepository implements BarcodeTaskRepository using GORM.
type GormBarcodeTaskRepository struct {
	db *gorm.DB
}

// NewGormBarcodeTaskRepository creates a new GORM barcode task repository.
func NewGormBarcodeTaskRepository(db *gorm.DB) *GormBarcodeTaskRepository {
	return &GormBarcodeTaskRepository{db: db}
}

func (r *GormBarcodeTaskRepository) Create(ctx context.Context, task *domain.BarcodeCaptureTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *GormBarcodeTaskRepository) Update(ctx context.Context, task *domain.BarcodeCaptureTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *GormBarcodeTaskRepository) FindByID(ctx context.Context, id uint) (*domain.BarcodeCaptureTask, error) {
	var task domain.BarcodeCaptureTask
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// gormStore binds every repository to one *gorm.DB, which is either the
// root connection (reads) or an open transaction (unit of work).
type gormStore struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewStore creates a Store over the given connection.
func NewStore(db *gorm.DB) domain.Store {
	return &gormStore{db: db}
}

// NewStoreWithCache creates a Store whose product registry reads through a
// redis cache. A nil client behaves like NewStore.
func NewStoreWithCache(db *gorm.DB, redisClient *redis.Client) domain.Store {
	return &gormStore{db: db, redis: redisClient}
}

// The session, item, location and subdivision repositories sit on the hot
// receive path and are served through their tracing decorators.
func (s *gormStore) Sessions() domain.SessionRepository { return NewGormSessionRepositoryWithTracing(s.db) }
func (s *gormStore) Items() domain.ItemRepository { return NewGormItemRepositoryWithTracing(s.db) }
func (s *gormStore) Discrepancies() domain.DiscrepancyRepository { return NewGormDiscrepancyRepository(s.db) }
func (s *gormStore) BarcodeTasks() domain.BarcodeTaskRepository { return NewGormBarcodeTaskRepository(s.db) }
func (s *gormStore) PurchaseOrders() podomain.Repository { return porepo.NewGormPurchaseOrderRepository(s.db) }
func (s *gormStore) Products() proddomain.Registry {
	return productrepo.NewCachedProductRegistry(productrepo.NewGormProductRegistry(s.db), s.redis)
}
func (s *gormStore) Locations() whdomain.LocationRepository { return whrepo.NewGormLocationRepositoryWithTracing(s.db) }
func (s *gormStore) Levels() whdomain.LevelRepository { return whrepo.NewGormLevelRepository(s.db) }
func (s *gormStore) Subdivisions() whdomain.SubdivisionRepository {
	return whrepo.NewGormSubdivisionRepositoryWithTracing(s.db)
}
func (s *gormStore) StockUnits() whdomain.StockUnitRepository { return whrepo.NewGormStockUnitRepository(s.db) }
func (s *gormStore) RelocationTasks() whdomain.RelocationTaskRepository {
	return whrepo.NewGormRelocationTaskRepository(s.db)
}

// GormUnitOfWork implements UnitOfWork over gorm transactions.
type GormUnitOfWork struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewGormUnitOfWork creates a unit of work over the root connection.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// NewGormUnitOfWorkWithCache creates a unit of work whose stores read
// products through a redis cache.
func NewGormUnitOfWorkWithCache(db *gorm.DB, redisClient *redis.Client) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, redis: redisClient}
}

// Execute runs fn inside one database transaction. Any error rolls the
// whole operation back; nothing partially commits.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, s domain.Store) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStoreWithCache(tx, u.redis))
	})
}
