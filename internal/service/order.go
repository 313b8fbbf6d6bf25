package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/repo"
)

// OrderService implements the admin operations on placed orders.
type OrderService struct {
	orders repo.OrderRepo
	log    *slog.Logger
}

// NewOrderService constructs an OrderService backed by the provided OrderRepo.
func NewOrderService(orders repo.OrderRepo, log *slog.Logger) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{orders: orders, log: log}
}

// GetByID returns a single order with its items.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.OrderService.GetByID: %w", err)
	}
	return o, nil
}

// ListByEvent returns one page of an event's orders and the total count.
func (s *OrderService) ListByEvent(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error) {
	orders, total, err := s.orders.ListByEventPaged(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.OrderService.ListByEvent: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves an order to status. Cancelling an order releases the
// capacity it held, since cancelled orders are not counted.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("service.OrderService.UpdateStatus: %w", validationf("unknown status %q", status))
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.OrderService.UpdateStatus: %w", err)
	}
	s.log.InfoContext(ctx, "order status changed", "order_id", id, "status", status)
	return o, nil
}

// UpdateAnswers overwrites an order's stored answers. This is an operator
// correction tool: the payload is not checked against the event's form,
// only that every key is a non-blank label. Capacity and exports pick up
// the new answers on their next read.
func (s *OrderService) UpdateAnswers(ctx context.Context, id uuid.UUID, answers domain.Answers) (domain.Order, error) {
	for _, e := range answers {
		if strings.TrimSpace(e.Key) == "" {
			return domain.Order{}, fmt.Errorf("service.OrderService.UpdateAnswers: %w", validationf("answer keys must not be blank"))
		}
	}
	o, err := s.orders.UpdateAnswers(ctx, id, answers)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.OrderService.UpdateAnswers: %w", err)
	}
	s.log.InfoContext(ctx, "order answers edited", "order_id", id, "keys", len(answers))
	return o, nil
}
