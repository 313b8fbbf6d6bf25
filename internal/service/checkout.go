package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/form"
	"github.com/campusshop/storefront/internal/queue"
	"github.com/campusshop/storefront/internal/repo"
)

// CartLine is one product and quantity in a checkout request.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderRequest is a shopper's checkout submission for an event.
type PlaceOrderRequest struct {
	CustomerName  string
	CustomerEmail string
	Answers       domain.Answers
	Items         []CartLine
}

// OrderPublisher announces committed orders. *queue.Publisher satisfies it.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg queue.OrderPlaced) error
}

var _ OrderPublisher = (*queue.Publisher)(nil)

// CheckoutService places orders for events.
type CheckoutService struct {
	config EventConfig
	tx     repo.TxRunner
	pub    OrderPublisher
	log    *slog.Logger
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(config EventConfig, tx repo.TxRunner, pub OrderPublisher, log *slog.Logger) *CheckoutService {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutService{config: config, tx: tx, pub: pub, log: log}
}

// PlaceOrder validates a checkout and persists it as a pending order.
//
// The answers are validated against the event's current form and only the
// cleaned payload is stored. When the cart holds a capacity-limited product
// and a consumption day can be mined from the answers, the day's capacity
// is re-counted under per-product advisory locks in the same transaction
// that inserts the order, so concurrent checkouts cannot overbook. Tracked
// stock is decremented in that transaction too; any shortfall rolls the
// whole order back.
func (s *CheckoutService) PlaceOrder(ctx context.Context, eventID uuid.UUID, req PlaceOrderRequest) (domain.Order, error) {
	event, err := s.config.GetByID(ctx, eventID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", err)
	}
	if !event.Active {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", validationf("event is not open for orders"))
	}
	products, err := s.config.Products(ctx, eventID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", err)
	}

	order, err := buildOrder(event, products, req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", err)
	}
	cleaned, err := form.Validate(event.Schema, req.Answers)
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", err)
	}
	order.Answers = append(domain.Answers{{Key: domain.EventNameKey, Value: domain.StringValue(event.Name)}}, cleaned...)

	cart := order.ProductIDs()
	limited := limitedIn(products, cart)
	day, hasDay := capacity.ConsumptionDay(order.Answers)
	checkCapacity := len(limited) > 0 && hasDay
	if len(limited) > 0 && !hasDay {
		s.log.WarnContext(ctx, "no consumption day in answers; capacity not enforced",
			"event_id", eventID, "limited_products", len(limited))
	}

	var created domain.Order
	err = s.tx.InTx(ctx, func(r repo.TxRepos) error {
		if checkCapacity {
			for _, pid := range limited {
				if err := r.Locks.LockDay(ctx, pid, day); err != nil {
					return err
				}
			}
			records, err := r.Orders.ListCapacityRecords(ctx, eventID)
			if err != nil {
				return err
			}
			usage := capacity.Count(records, day, day)
			if err := capacity.CheckCart(products, usage, cart, day); err != nil {
				return err
			}
		}

		var err error
		created, err = r.Orders.Create(ctx, order)
		if err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := r.Products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", err, it.ProductName)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("service.CheckoutService.PlaceOrder: %w", err)
	}

	s.log.InfoContext(ctx, "order placed", "order_id", created.ID, "event_id", eventID, "day", day)
	s.announce(ctx, created, day)
	return created, nil
}

// announce publishes order.placed. Delivery is best effort: the order is
// already committed, so failures are only logged.
func (s *CheckoutService) announce(ctx context.Context, o domain.Order, day string) {
	if s.pub == nil {
		return
	}
	err := s.pub.PublishOrderPlaced(ctx, queue.OrderPlaced{
		OrderID:       o.ID,
		EventID:       o.EventID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalCents:    o.TotalCents,
		Day:           day,
		PlacedAt:      o.CreatedAt,
	})
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrDisabled):
		s.log.DebugContext(ctx, "order.placed not published", "order_id", o.ID, "reason", err)
	default:
		s.log.WarnContext(ctx, "order.placed publish failed", "order_id", o.ID, "error", err)
	}
}

// buildOrder checks the customer fields and cart lines and prices the
// order from the event's products. Lines for the same product are merged.
func buildOrder(event domain.Event, products []domain.EventProduct, req PlaceOrderRequest) (domain.Order, error) {
	name := strings.TrimSpace(req.CustomerName)
	email := strings.TrimSpace(req.CustomerEmail)
	if name == "" {
		return domain.Order{}, validationf("customer name is required")
	}
	if !form.ValidEmail(email) {
		return domain.Order{}, validationf("customer email is not a valid address")
	}
	if len(req.Items) == 0 {
		return domain.Order{}, validationf("cart is empty")
	}

	byID := make(map[uuid.UUID]domain.EventProduct, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	order := domain.Order{
		EventID:       &event.ID,
		CustomerName:  name,
		CustomerEmail: email,
		Status:        domain.OrderPending,
	}
	lineAt := make(map[uuid.UUID]int, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return domain.Order{}, validationf("quantity must be positive")
		}
		p, ok := byID[line.ProductID]
		if !ok {
			return domain.Order{}, validationf("product %s is not offered in this event", line.ProductID)
		}
		if i, dup := lineAt[line.ProductID]; dup {
			order.Items[i].Quantity += line.Quantity
		} else {
			lineAt[line.ProductID] = len(order.Items)
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:      p.ProductID,
				ProductName:    p.DisplayName,
				Quantity:       line.Quantity,
				UnitPriceCents: p.PriceCents,
			})
		}
		order.TotalCents += p.PriceCents * int64(line.Quantity)
	}
	return order, nil
}

// limitedIn returns the capacity-limited products of the cart, sorted so
// advisory locks are always taken in the same order.
func limitedIn(products []domain.EventProduct, cart []uuid.UUID) []uuid.UUID {
	inCart := make(map[uuid.UUID]bool, len(cart))
	for _, id := range cart {
		inCart[id] = true
	}
	var out []uuid.UUID
	for _, p := range capacity.Limited(products) {
		if inCart[p.ProductID] {
			out = append(out, p.ProductID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
