package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/queue"
	"github.com/campusshop/storefront/internal/repo"
	"github.com/campusshop/storefront/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones your test needs.

type mockEventRepo struct {
	create       func(ctx context.Context, e domain.Event) (domain.Event, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Event, error)
	getBySlug    func(ctx context.Context, slug string) (domain.Event, error)
	list         func(ctx context.Context) ([]domain.Event, error)
	update       func(ctx context.Context, e domain.Event) (domain.Event, error)
	updateSchema func(ctx context.Context, id uuid.UUID, s domain.Schema) (domain.Event, error)
}

func (m *mockEventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.create(ctx, e)
}
func (m *mockEventRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventRepo) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	return m.list(ctx)
}
func (m *mockEventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.update(ctx, e)
}
func (m *mockEventRepo) UpdateSchema(ctx context.Context, id uuid.UUID, s domain.Schema) (domain.Event, error) {
	return m.updateSchema(ctx, id, s)
}

var _ repo.EventRepo = (*mockEventRepo)(nil)

type mockProductRepo struct {
	create         func(ctx context.Context, p domain.Product) (domain.Product, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	list           func(ctx context.Context) ([]domain.Product, error)
	decrementStock func(ctx context.Context, id uuid.UUID, qty int) error
}

func (m *mockProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.create(ctx, p)
}
func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.getByID(ctx, id)
}
func (m *mockProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return m.list(ctx)
}
func (m *mockProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return m.decrementStock(ctx, id, qty)
}

var _ repo.ProductRepo = (*mockProductRepo)(nil)

type mockEventProductRepo struct {
	attach      func(ctx context.Context, eventID, productID uuid.UUID, name string, price *int64) (domain.EventProduct, error)
	listByEvent func(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error)
	setCapacity func(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error)
}

func (m *mockEventProductRepo) Attach(ctx context.Context, eventID, productID uuid.UUID, name string, price *int64) (domain.EventProduct, error) {
	return m.attach(ctx, eventID, productID, name, price)
}
func (m *mockEventProductRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error) {
	return m.listByEvent(ctx, eventID)
}
func (m *mockEventProductRepo) SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error) {
	return m.setCapacity(ctx, eventID, productID, cfg)
}

var _ repo.EventProductRepo = (*mockEventProductRepo)(nil)

type mockOrderRepo struct {
	create              func(ctx context.Context, o domain.Order) (domain.Order, error)
	getByID             func(ctx context.Context, id uuid.UUID) (domain.Order, error)
	listByEventPaged    func(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error)
	listByEvent         func(ctx context.Context, eventID uuid.UUID) ([]domain.Order, error)
	listCapacityRecords func(ctx context.Context, eventID uuid.UUID) ([]domain.CapacityRecord, error)
	updateStatus        func(ctx context.Context, id uuid.UUID, s domain.OrderStatus) (domain.Order, error)
	updateAnswers       func(ctx context.Context, id uuid.UUID, a domain.Answers) (domain.Order, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	return m.create(ctx, o)
}
func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return m.getByID(ctx, id)
}
func (m *mockOrderRepo) ListByEventPaged(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error) {
	return m.listByEventPaged(ctx, eventID, p)
}
func (m *mockOrderRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Order, error) {
	return m.listByEvent(ctx, eventID)
}
func (m *mockOrderRepo) ListCapacityRecords(ctx context.Context, eventID uuid.UUID) ([]domain.CapacityRecord, error) {
	return m.listCapacityRecords(ctx, eventID)
}
func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, s domain.OrderStatus) (domain.Order, error) {
	return m.updateStatus(ctx, id, s)
}
func (m *mockOrderRepo) UpdateAnswers(ctx context.Context, id uuid.UUID, a domain.Answers) (domain.Order, error) {
	return m.updateAnswers(ctx, id, a)
}

var _ repo.OrderRepo = (*mockOrderRepo)(nil)

// recordingLocker records the keys it was asked to lock, in order.
type recordingLocker struct {
	locked []string
}

func (l *recordingLocker) LockDay(_ context.Context, productID uuid.UUID, day string) error {
	l.locked = append(l.locked, productID.String()+"@"+day)
	return nil
}

var _ repo.Locker = (*recordingLocker)(nil)

// fakeTx runs fn directly with fixed repos. committed reports whether the
// last fn returned nil.
type fakeTx struct {
	repos     repo.TxRepos
	calls     int
	committed bool
}

func (f *fakeTx) InTx(_ context.Context, fn func(repo.TxRepos) error) error {
	f.calls++
	err := fn(f.repos)
	f.committed = err == nil
	return err
}

var _ repo.TxRunner = (*fakeTx)(nil)

// memCache is an in-memory EventCache.
type memCache struct {
	events      map[uuid.UUID]domain.Event
	products    map[uuid.UUID][]domain.EventProduct
	invalidated []uuid.UUID
}

func newMemCache() *memCache {
	return &memCache{events: map[uuid.UUID]domain.Event{}, products: map[uuid.UUID][]domain.EventProduct{}}
}

func (c *memCache) Event(_ context.Context, id uuid.UUID) (domain.Event, bool) {
	e, ok := c.events[id]
	return e, ok
}
func (c *memCache) SetEvent(_ context.Context, e domain.Event) { c.events[e.ID] = e }
func (c *memCache) Products(_ context.Context, id uuid.UUID) ([]domain.EventProduct, bool) {
	ps, ok := c.products[id]
	return ps, ok
}
func (c *memCache) SetProducts(_ context.Context, id uuid.UUID, ps []domain.EventProduct) {
	c.products[id] = ps
}
func (c *memCache) Invalidate(_ context.Context, id uuid.UUID) {
	delete(c.events, id)
	delete(c.products, id)
	c.invalidated = append(c.invalidated, id)
}

var _ service.EventCache = (*memCache)(nil)

// staticConfig serves one event and its products.
type staticConfig struct {
	event    domain.Event
	products []domain.EventProduct
}

func (c *staticConfig) GetByID(_ context.Context, id uuid.UUID) (domain.Event, error) {
	if id != c.event.ID {
		return domain.Event{}, domain.ErrNotFound
	}
	return c.event, nil
}
func (c *staticConfig) Products(_ context.Context, id uuid.UUID) ([]domain.EventProduct, error) {
	if id != c.event.ID {
		return []domain.EventProduct{}, nil
	}
	return c.products, nil
}

var _ service.EventConfig = (*staticConfig)(nil)

type mockPublisher struct {
	orderPlaced  func(ctx context.Context, msg queue.OrderPlaced) error
	sheetReplace func(ctx context.Context, msg queue.SheetReplace) error
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, msg queue.OrderPlaced) error {
	return m.orderPlaced(ctx, msg)
}
func (m *mockPublisher) PublishSheetReplace(ctx context.Context, msg queue.SheetReplace) error {
	return m.sheetReplace(ctx, msg)
}

var (
	_ service.OrderPublisher = (*mockPublisher)(nil)
	_ service.SheetPublisher = (*mockPublisher)(nil)
)
