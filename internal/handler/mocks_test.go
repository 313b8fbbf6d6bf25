package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/handler"
	"github.com/campusshop/storefront/internal/service"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockEventServicer struct {
	create        func(ctx context.Context, e domain.Event) (domain.Event, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Event, error)
	getBySlug     func(ctx context.Context, slug string) (domain.Event, error)
	list          func(ctx context.Context) ([]domain.Event, error)
	update        func(ctx context.Context, e domain.Event) (domain.Event, error)
	replaceSchema func(ctx context.Context, id uuid.UUID, s domain.Schema) (domain.Event, error)
	visibleFields func(ctx context.Context, id uuid.UUID, a domain.Answers) ([]string, error)
	products      func(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error)
	attachProduct func(ctx context.Context, eventID, productID uuid.UUID, name string, price *int64) (domain.EventProduct, error)
	setCapacity   func(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error)
	createProduct func(ctx context.Context, p domain.Product) (domain.Product, error)
	listProducts  func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockEventServicer) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.create(ctx, e)
}
func (m *mockEventServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventServicer) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockEventServicer) List(ctx context.Context) ([]domain.Event, error) {
	return m.list(ctx)
}
func (m *mockEventServicer) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.update(ctx, e)
}
func (m *mockEventServicer) ReplaceSchema(ctx context.Context, id uuid.UUID, s domain.Schema) (domain.Event, error) {
	return m.replaceSchema(ctx, id, s)
}
func (m *mockEventServicer) VisibleFields(ctx context.Context, id uuid.UUID, a domain.Answers) ([]string, error) {
	return m.visibleFields(ctx, id, a)
}
func (m *mockEventServicer) Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error) {
	return m.products(ctx, eventID)
}
func (m *mockEventServicer) AttachProduct(ctx context.Context, eventID, productID uuid.UUID, name string, price *int64) (domain.EventProduct, error) {
	return m.attachProduct(ctx, eventID, productID, name, price)
}
func (m *mockEventServicer) SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error) {
	return m.setCapacity(ctx, eventID, productID, cfg)
}
func (m *mockEventServicer) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.createProduct(ctx, p)
}
func (m *mockEventServicer) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.listProducts(ctx)
}

var _ handler.EventServicer = (*mockEventServicer)(nil)

type mockAvailabilityServicer struct {
	calendar func(ctx context.Context, eventID uuid.UUID, from, to time.Time, ids []uuid.UUID) ([]capacity.DayAvailability, error)
}

func (m *mockAvailabilityServicer) Calendar(ctx context.Context, eventID uuid.UUID, from, to time.Time, ids []uuid.UUID) ([]capacity.DayAvailability, error) {
	return m.calendar(ctx, eventID, from, to, ids)
}

var _ handler.AvailabilityServicer = (*mockAvailabilityServicer)(nil)

type mockCheckoutServicer struct {
	placeOrder func(ctx context.Context, eventID uuid.UUID, req service.PlaceOrderRequest) (domain.Order, error)
}

func (m *mockCheckoutServicer) PlaceOrder(ctx context.Context, eventID uuid.UUID, req service.PlaceOrderRequest) (domain.Order, error) {
	return m.placeOrder(ctx, eventID, req)
}

var _ handler.CheckoutServicer = (*mockCheckoutServicer)(nil)

type mockOrderServicer struct {
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Order, error)
	listByEvent   func(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error)
	updateStatus  func(ctx context.Context, id uuid.UUID, s domain.OrderStatus) (domain.Order, error)
	updateAnswers func(ctx context.Context, id uuid.UUID, a domain.Answers) (domain.Order, error)
}

func (m *mockOrderServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return m.getByID(ctx, id)
}
func (m *mockOrderServicer) ListByEvent(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error) {
	return m.listByEvent(ctx, eventID, p)
}
func (m *mockOrderServicer) UpdateStatus(ctx context.Context, id uuid.UUID, s domain.OrderStatus) (domain.Order, error) {
	return m.updateStatus(ctx, id, s)
}
func (m *mockOrderServicer) UpdateAnswers(ctx context.Context, id uuid.UUID, a domain.Answers) (domain.Order, error) {
	return m.updateAnswers(ctx, id, a)
}

var _ handler.OrderServicer = (*mockOrderServicer)(nil)

type mockExportServicer struct {
	table     func(ctx context.Context, eventID uuid.UUID) (domain.Event, domain.ExportTable, error)
	syncSheet func(ctx context.Context, eventID uuid.UUID) (domain.ExportTable, error)
}

func (m *mockExportServicer) Table(ctx context.Context, eventID uuid.UUID) (domain.Event, domain.ExportTable, error) {
	return m.table(ctx, eventID)
}
func (m *mockExportServicer) SyncSheet(ctx context.Context, eventID uuid.UUID) (domain.ExportTable, error) {
	return m.syncSheet(ctx, eventID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, nil).Routes()
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func eventFixture() domain.Event {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	return domain.Event{
		ID:       uuid.New(),
		Slug:     "valentines",
		Name:     "Valentine's Flowers",
		Active:   true,
		StartsOn: &start,
		EndsOn:   &end,
		Schema: domain.Schema{
			{ID: "to", Label: "Recipient", Type: domain.FieldText, Required: true},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func orderFixture(eventID uuid.UUID) domain.Order {
	return domain.Order{
		ID:            uuid.New(),
		EventID:       &eventID,
		CustomerName:  "Ann",
		CustomerEmail: "ann@example.com",
		Status:        domain.OrderPending,
		Answers: domain.Answers{
			{Key: domain.EventNameKey, Value: domain.StringValue("Valentine's Flowers")},
			{Key: "Recipient", Value: domain.StringValue("Sam")},
			{Key: "Card Message", Value: domain.StringValue("xo")},
		},
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Roses", Quantity: 2, UnitPriceCents: 1250},
		},
		TotalCents: 2500,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}
