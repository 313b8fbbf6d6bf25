package capacity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
)

// Reason says why a product cannot take an order on a day.
type Reason string

const (
	ReasonBlocked Reason = "blocked"
	ReasonSoldOut Reason = "sold_out"
)

// Error reports one product that cannot take an order on Day.
type Error struct {
	ProductID uuid.UUID `json:"productId"`
	Product   string    `json:"product"`
	Day       string    `json:"day"`
	Reason    Reason    `json:"reason"`
}

func (e Error) String() string {
	if e.Reason == ReasonBlocked {
		return fmt.Sprintf("%s is not available on %s", e.Product, e.Day)
	}
	return fmt.Sprintf("%s is sold out on %s", e.Product, e.Day)
}

// Errors lists every product in a cart that cannot take an order.
// It matches domain.ErrCapacity under errors.Is.
type Errors []Error

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, ce := range e {
		parts[i] = ce.String()
	}
	return domain.ErrCapacity.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets callers test for domain.ErrCapacity.
func (e Errors) Is(target error) bool {
	return target == domain.ErrCapacity
}

// CheckCart verifies that every capacity-limited product in the cart can
// take one more order on day. Products without a config in products are
// treated as unlimited. Returns nil or Errors.
func CheckCart(products []domain.EventProduct, usage Usage, cart []uuid.UUID, day string) error {
	byID := make(map[uuid.UUID]domain.EventProduct, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	var errs Errors
	seen := make(map[uuid.UUID]bool, len(cart))
	for _, pid := range cart {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		p, ok := byID[pid]
		if !ok {
			continue
		}
		rem := Resolve(p.Capacity, day, usage.Used(pid, day))
		switch rem.State {
		case Blocked:
			errs = append(errs, Error{ProductID: pid, Product: p.DisplayName, Day: day, Reason: ReasonBlocked})
		case SoldOut:
			errs = append(errs, Error{ProductID: pid, Product: p.DisplayName, Day: day, Reason: ReasonSoldOut})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Limited returns the products whose config caps daily orders.
func Limited(products []domain.EventProduct) []domain.EventProduct {
	var out []domain.EventProduct
	for _, p := range products {
		if p.Capacity.HasLimit {
			out = append(out, p)
		}
	}
	return out
}
