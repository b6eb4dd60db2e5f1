package command

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	proddomain "github.com/wareline/warehouse-receiving/internal/product/domain"
	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	"github.com/wareline/warehouse-receiving/kafka"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

// memStore is an in-memory Store for handler tests. The unit of work runs
// against it directly; rollback behavior is not simulated.
type memStore struct {
	nextID uint

	sessions      map[uint]*domain.ReceivingSession
	items         map[uint]*domain.ReceivingItem
	discrepancies map[uint]*domain.Discrepancy
	tasks         map[uint]*domain.BarcodeCaptureTask

	orders     map[uint]*podomain.PurchaseOrder
	orderItems map[uint]*podomain.PurchaseOrderItem

	products map[uint]*proddomain.Product

	locations    map[uint]*whdomain.Location
	levels       map[uint]*whdomain.StorageLevel
	subdivisions map[uint]*whdomain.Subdivision

	stockUnits  []whdomain.StockUnit
	relocations []whdomain.RelocationTask
}

func newMemStore() *memStore {
	return &memStore{
		sessions:      map[uint]*domain.ReceivingSession{},
		items:         map[uint]*domain.ReceivingItem{},
		discrepancies: map[uint]*domain.Discrepancy{},
		tasks:         map[uint]*domain.BarcodeCaptureTask{},
		orders:        map[uint]*podomain.PurchaseOrder{},
		orderItems:    map[uint]*podomain.PurchaseOrderItem{},
		products:      map[uint]*proddomain.Product{},
		locations:     map[uint]*whdomain.Location{},
		levels:        map[uint]*whdomain.StorageLevel{},
		subdivisions:  map[uint]*whdomain.Subdivision{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) Sessions() domain.SessionRepository { return memSessions{m} }
func (m *memStore) Items() domain.ItemRepository { return memItems{m} }
func (m *memStore) Discrepancies() domain.DiscrepancyRepository { return memDiscrepancies{m} }
func (m *memStore) BarcodeTasks() domain.BarcodeTaskRepository { return memTasks{m} }
func (m *memStore) PurchaseOrders() podomain.Repository { return memOrders{m} }
func (m *memStore) Products() proddomain.Registry { return memProducts{m} }
func (m *memStore) Locations() whdomain.LocationRepository { return memLocations{m} }
func (m *memStore) Levels() whdomain.LevelRepository { return memLevels{m} }
func (m *memStore) Subdivisions() whdomain.SubdivisionRepository { return memSubdivisions{m} }
func (m *memStore) StockUnits() whdomain.StockUnitRepository { return memStock{m} }
func (m *memStore) RelocationTasks() whdomain.RelocationTaskRepository {
	return memRelocations{m}
}

// memUOW runs the function against the backing store with no transaction.
type memUOW struct {
	store *memStore
}

func (u memUOW) Execute(ctx context.Context, fn func(ctx context.Context, s domain.Store) error) error {
	return fn(ctx, u.store)
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, session *domain.ReceivingSession) error {
	for _, existing := range r.m.sessions {
		if existing.SessionNumber == session.SessionNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	session.ID = r.m.id()
	r.m.sessions[session.ID] = session
	return nil
}

func (r memSessions) FindByID(_ context.Context, id uint) (*domain.ReceivingSession, error) {
	if s, ok := r.m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSessions) FindActiveByPurchaseOrder(_ context.Context, purchaseOrderID uint) (*domain.ReceivingSession, error) {
	for _, s := range r.m.sessions {
		if s.PurchaseOrderID == purchaseOrderID && s.Status == domain.SessionStatusInProgress {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSessions) CountForYear(_ context.Context, year int) (int64, error) {
	prefix := domain.SessionNumberFor(year, 0)[:9]
	var count int64
	for _, s := range r.m.sessions {
		if strings.HasPrefix(s.SessionNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (r memSessions) Update(_ context.Context, session *domain.ReceivingSession) error {
	r.m.sessions[session.ID] = session
	return nil
}

type memItems struct{ m *memStore }

func (r memItems) Create(_ context.Context, item *domain.ReceivingItem) error {
	for _, existing := range r.m.items {
		if existing.SessionID == item.SessionID && existing.PurchaseOrderItemID == item.PurchaseOrderItemID {
			return gorm.ErrDuplicatedKey
		}
	}
	item.ID = r.m.id()
	r.m.items[item.ID] = item
	return nil
}

func (r memItems) Update(_ context.Context, item *domain.ReceivingItem) error {
	r.m.items[item.ID] = item
	return nil
}

func (r memItems) FindByID(_ context.Context, id uint) (*domain.ReceivingItem, error) {
	if item, ok := r.m.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memItems) FindBySessionAndOrderItem(_ context.Context, sessionID, purchaseOrderItemID uint) (*domain.ReceivingItem, error) {
	for _, item := range r.m.items {
		if item.SessionID == sessionID && item.PurchaseOrderItemID == purchaseOrderItemID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memItems) ListBySession(_ context.Context, sessionID uint) ([]domain.ReceivingItem, error) {
	var out []domain.ReceivingItem
	ids := make([]int, 0, len(r.m.items))
	for id := range r.m.items {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		if item := r.m.items[uint(id)]; item.SessionID == sessionID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r memItems) CountReceived(_ context.Context, sessionID uint) (int64, error) {
	var count int64
	for _, item := range r.m.items {
		if item.SessionID == sessionID && item.ReceivedQuantity.GreaterThan(decimal.Zero) {
			count++
		}
	}
	return count, nil
}

type memDiscrepancies struct{ m *memStore }

func (r memDiscrepancies) Create(_ context.Context, d *domain.Discrepancy) error {
	for _, existing := range r.m.discrepancies {
		if existing.SessionID == d.SessionID && existing.ProductID == d.ProductID {
			return gorm.ErrDuplicatedKey
		}
	}
	d.ID = r.m.id()
	r.m.discrepancies[d.ID] = d
	return nil
}

func (r memDiscrepancies) Update(_ context.Context, d *domain.Discrepancy) error {
	r.m.discrepancies[d.ID] = d
	return nil
}

func (r memDiscrepancies) Delete(_ context.Context, id uint) error {
	delete(r.m.discrepancies, id)
	return nil
}

func (r memDiscrepancies) FindByID(_ context.Context, id uint) (*domain.Discrepancy, error) {
	if d, ok := r.m.discrepancies[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memDiscrepancies) FindBySessionAndProduct(_ context.Context, sessionID, productID uint) (*domain.Discrepancy, error) {
	for _, d := range r.m.discrepancies {
		if d.SessionID == sessionID && d.ProductID == productID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memDiscrepancies) ListBySession(_ context.Context, sessionID uint) ([]domain.Discrepancy, error) {
	var out []domain.Discrepancy
	for _, d := range r.m.discrepancies {
		if d.SessionID == sessionID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r memDiscrepancies) CountDistinctProducts(_ context.Context, sessionID uint) (int64, error) {
	seen := map[uint]bool{}
	for _, d := range r.m.discrepancies {
		if d.SessionID == sessionID {
			seen[d.ProductID] = true
		}
	}
	return int64(len(seen)), nil
}

type memTasks struct{ m *memStore }

func (r memTasks) Create(_ context.Context, task *domain.BarcodeCaptureTask) error {
	task.ID = r.m.id()
	r.m.tasks[task.ID] = task
	return nil
}

func (r memTasks) Update(_ context.Context, task *domain.BarcodeCaptureTask) error {
	r.m.tasks[task.ID] = task
	return nil
}

func (r memTasks) FindByID(_ context.Context, id uint) (*domain.BarcodeCaptureTask, error) {
	if task, ok := r.m.tasks[id]; ok {
		return task, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memOrders struct{ m *memStore }

func (r memOrders) FindByID(_ context.Context, id uint) (*podomain.PurchaseOrder, error) {
	po, ok := r.m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	po.Items = nil
	for _, item := range r.m.orderItems {
		if item.PurchaseOrderID == po.ID {
			po.Items = append(po.Items, *item)
		}
	}
	return po, nil
}

func (r memOrders) FindItemByID(_ context.Context, itemID uint) (*podomain.PurchaseOrderItem, error) {
	if item, ok := r.m.orderItems[itemID]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memOrders) ListItems(_ context.Context, purchaseOrderID uint) ([]podomain.PurchaseOrderItem, error) {
	var out []podomain.PurchaseOrderItem
	ids := make([]int, 0, len(r.m.orderItems))
	for id := range r.m.orderItems {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		if item := r.m.orderItems[uint(id)]; item.PurchaseOrderID == purchaseOrderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r memOrders) UpdateStatus(_ context.Context, id uint, status string) error {
	po, ok := r.m.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	po.Status = status
	return nil
}

func (r memOrders) SetItemProduct(_ context.Context, itemID, productID uint) error {
	item, ok := r.m.orderItems[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.ProductID = &productID
	return nil
}

type memProducts struct{ m *memStore }

func (r memProducts) FindByID(_ context.Context, id uint) (*proddomain.Product, error) {
	if p, ok := r.m.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memProducts) FindBySupplierCode(_ context.Context, supplierCode string) (*proddomain.Product, error) {
	for _, p := range r.m.products {
		if p.SupplierCode == supplierCode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memProducts) ResolveOrCreate(_ context.Context, supplierCode, name string) (*proddomain.Product, bool, error) {
	for _, p := range r.m.products {
		if p.SupplierCode == supplierCode {
			return p, false, nil
		}
	}
	product := &proddomain.Product{
		ID:           r.m.id(),
		SKU:          "AUTO-" + strings.ToUpper(supplierCode),
		SupplierCode: supplierCode,
		Name:         name,
		AutoCreated:  true,
	}
	r.m.products[product.ID] = product
	return product, true, nil
}

type memLocations struct{ m *memStore }

func (r memLocations) sorted() []*whdomain.Location {
	ids := make([]int, 0, len(r.m.locations))
	for id := range r.m.locations {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]*whdomain.Location, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.m.locations[uint(id)])
	}
	return out
}

func (r memLocations) FindByID(_ context.Context, id uint) (*whdomain.Location, error) {
	if loc, ok := r.m.locations[id]; ok {
		return loc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLocations) FindByIDForUpdate(ctx context.Context, id uint) (*whdomain.Location, error) {
	return r.FindByID(ctx, id)
}

func (r memLocations) FindFirstByType(_ context.Context, locationType string) (*whdomain.Location, error) {
	for _, loc := range r.sorted() {
		if loc.Type == locationType && loc.IsActive() {
			return loc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLocations) FindFirstAvailable(_ context.Context) (*whdomain.Location, error) {
	for _, loc := range r.sorted() {
		if !loc.IsActive() || loc.Type != whdomain.LocationTypeStandard {
			continue
		}
		if loc.Capacity.IsZero() || loc.CurrentOccupancy.LessThan(loc.Capacity) {
			return loc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLocations) FindActiveTemporary(_ context.Context, excludeIDs []uint) ([]whdomain.Location, error) {
	excluded := map[uint]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []whdomain.Location
	for _, loc := range r.sorted() {
		if loc.Type == whdomain.LocationTypeTemporary && loc.IsActive() && !excluded[loc.ID] {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (r memLocations) AddOccupancy(_ context.Context, id uint, delta decimal.Decimal) error {
	loc, ok := r.m.locations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	loc.CurrentOccupancy = loc.CurrentOccupancy.Add(delta)
	return nil
}

type memLevels struct{ m *memStore }

func (r memLevels) FindByID(_ context.Context, id uint) (*whdomain.StorageLevel, error) {
	if level, ok := r.m.levels[id]; ok {
		return level, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLevels) FindByIDForUpdate(ctx context.Context, id uint) (*whdomain.StorageLevel, error) {
	return r.FindByID(ctx, id)
}

func (r memLevels) FindDedicated(_ context.Context, productID uint) (*whdomain.StorageLevel, error) {
	for _, level := range r.m.levels {
		if level.DedicatedProductID != nil && *level.DedicatedProductID == productID {
			return level, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLevels) FindDedicatedInLocation(_ context.Context, productID, locationID uint) (*whdomain.StorageLevel, error) {
	for _, level := range r.m.levels {
		if level.LocationID == locationID && level.DedicatedProductID != nil && *level.DedicatedProductID == productID {
			return level, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memLevels) AddOccupancy(_ context.Context, id uint, delta decimal.Decimal) error {
	level, ok := r.m.levels[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	level.CurrentOccupancy = level.CurrentOccupancy.Add(delta)
	return nil
}

type memSubdivisions struct{ m *memStore }

func (r memSubdivisions) FindByID(_ context.Context, id uint) (*whdomain.Subdivision, error) {
	if sub, ok := r.m.subdivisions[id]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSubdivisions) FindByIDForUpdate(ctx context.Context, id uint) (*whdomain.Subdivision, error) {
	return r.FindByID(ctx, id)
}

func (r memSubdivisions) FindDedicated(_ context.Context, productID uint) (*whdomain.Subdivision, error) {
	for _, sub := range r.m.subdivisions {
		if sub.DedicatedProductID != nil && *sub.DedicatedProductID == productID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSubdivisions) FindDedicatedInLocation(_ context.Context, productID, locationID uint) (*whdomain.Subdivision, error) {
	for _, sub := range r.m.subdivisions {
		if sub.LocationID == locationID && sub.DedicatedProductID != nil && *sub.DedicatedProductID == productID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSubdivisions) AddOccupancy(_ context.Context, id uint, delta decimal.Decimal) error {
	sub, ok := r.m.subdivisions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sub.CurrentOccupancy = sub.CurrentOccupancy.Add(delta)
	return nil
}

type memStock struct{ m *memStore }

func (r memStock) Create(_ context.Context, unit *whdomain.StockUnit) error {
	unit.ID = r.m.id()
	r.m.stockUnits = append(r.m.stockUnits, *unit)
	return nil
}

func (r memStock) FindByBatchID(_ context.Context, batchID string) ([]whdomain.StockUnit, error) {
	var out []whdomain.StockUnit
	for _, unit := range r.m.stockUnits {
		if unit.BatchID == batchID {
			out = append(out, unit)
		}
	}
	return out, nil
}

type memRelocations struct{ m *memStore }

func (r memRelocations) Create(_ context.Context, task *whdomain.RelocationTask) error {
	task.ID = r.m.id()
	r.m.relocations = append(r.m.relocations, *task)
	return nil
}

func (r memRelocations) FindPending(_ context.Context, limit, offset int) ([]whdomain.RelocationTask, error) {
	var pending []whdomain.RelocationTask
	for _, task := range r.m.relocations {
		if task.Status == whdomain.RelocationStatusPending {
			pending = append(pending, task)
		}
	}
	if offset >= len(pending) {
		return nil, nil
	}
	pending = pending[offset:]
	if limit < len(pending) {
		pending = pending[:limit]
	}
	return pending, nil
}

// storeUOW runs the function against any Store implementation.
type storeUOW struct{ store domain.Store }

func (u storeUOW) Execute(ctx context.Context, fn func(ctx context.Context, s domain.Store) error) error {
	return fn(ctx, u.store)
}

// raceStore injects a competing insert between the duplicate check and the
// insert, the way a concurrent receive of the same line loses the unique
// index race.
type raceStore struct {
	*memStore
	raced bool
}

func (s *raceStore) Items() domain.ItemRepository { return racingItems{s} }

type racingItems struct{ s *raceStore }

func (r racingItems) FindBySessionAndOrderItem(ctx context.Context, sessionID, purchaseOrderItemID uint) (*domain.ReceivingItem, error) {
	if !r.s.raced {
		r.s.raced = true
		competitor := &domain.ReceivingItem{
			SessionID:           sessionID,
			PurchaseOrderItemID: purchaseOrderItemID,
			ProductID:           1,
			ExpectedQuantity:    decimal.RequireFromString("10"),
			ReceivedQuantity:    decimal.RequireFromString("9"),
			ConditionStatus:     domain.ConditionGood,
			ApprovalStatus:      domain.ApprovalPending,
			TrackingMethod:      domain.TrackingBulk,
		}
		if err := (memItems{r.s.memStore}).Create(ctx, competitor); err != nil {
			return nil, err
		}
		return nil, gorm.ErrRecordNotFound
	}
	return memItems{r.s.memStore}.FindBySessionAndOrderItem(ctx, sessionID, purchaseOrderItemID)
}

func (r racingItems) Create(ctx context.Context, item *domain.ReceivingItem) error {
	return memItems{r.s.memStore}.Create(ctx, item)
}

func (r racingItems) Update(ctx context.Context, item *domain.ReceivingItem) error {
	return memItems{r.s.memStore}.Update(ctx, item)
}

func (r racingItems) FindByID(ctx context.Context, id uint) (*domain.ReceivingItem, error) {
	return memItems{r.s.memStore}.FindByID(ctx, id)
}

func (r racingItems) ListBySession(ctx context.Context, sessionID uint) ([]domain.ReceivingItem, error) {
	return memItems{r.s.memStore}.ListBySession(ctx, sessionID)
}

func (r racingItems) CountReceived(ctx context.Context, sessionID uint) (int64, error) {
	return memItems{r.s.memStore}.CountReceived(ctx, sessionID)
}

// fakeAudit captures published audit events.
type fakeAudit struct {
	received []kafka.ItemReceivedEvent
	decided  []kafka.QCDecisionEvent
	mapped   []kafka.ProductMappedEvent
}

func (f *fakeAudit) PublishItemReceived(_ context.Context, event kafka.ItemReceivedEvent) error {
	f.received = append(f.received, event)
	return nil
}

func (f *fakeAudit) PublishQCDecision(_ context.Context, event kafka.QCDecisionEvent) error {
	f.decided = append(f.decided, event)
	return nil
}

func (f *fakeAudit) PublishProductMapped(_ context.Context, event kafka.ProductMappedEvent) error {
	f.mapped = append(f.mapped, event)
	return nil
}
