package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a placed checkout. Answers is the cleaned answer payload as it
// was accepted at checkout; it is never migrated when the event schema
// changes later. EventID is nil for orders placed outside any event.
type Order struct {
	ID            uuid.UUID
	EventID       *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Status        OrderStatus
	Answers       Answers
	Items         []OrderItem
	TotalCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one cart line on an order.
type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

// ProductIDs returns the distinct product ids on the order, in item order.
func (o Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	out := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		out = append(out, it.ProductID)
	}
	return out
}

// CapacityRecord is the slice of an order the capacity allocator needs:
// its status, the products on it, and its free-form answers.
type CapacityRecord struct {
	OrderID    uuid.UUID
	Status     OrderStatus
	ProductIDs []uuid.UUID
	Answers    Answers
}
