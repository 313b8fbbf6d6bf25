// Package capacity computes per-day order capacity for products inside an
// event. Usage is reconstructed from historical orders' free-form answers;
// nothing here is reserved, so results are point-in-time figures.
package capacity

import (
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
)

// State classifies a product's capacity on one day.
type State string

const (
	// Unlimited means no cap applies on that day.
	Unlimited State = "unlimited"
	// Available means the cap has room left.
	Available State = "available"
	// SoldOut means the day is offered but its cap is used up.
	SoldOut State = "sold_out"
	// Blocked means the cap is explicitly zero: the day is never offered.
	Blocked State = "blocked"
)

// Remaining is a product's capacity on one day. Limit and Left are only
// meaningful for Available and SoldOut.
type Remaining struct {
	State State
	Limit int
	Used  int
	Left  int
}

// Accepts reports whether one more order fits on the day.
func (r Remaining) Accepts() bool {
	return r.State == Unlimited || r.State == Available
}

// Resolve applies a product's capacity config to one day given how many
// orders already consumed it. An override for the day always wins over the
// default limit, including 0 (blocked) and nil (unlimited).
func Resolve(cfg domain.DailyCapacityConfig, day string, used int) Remaining {
	if !cfg.HasLimit {
		return Remaining{State: Unlimited, Used: used}
	}
	limit := cfg.LimitFor(day)
	if limit == nil {
		return Remaining{State: Unlimited, Used: used}
	}
	if *limit <= 0 {
		return Remaining{State: Blocked, Used: used}
	}
	left := *limit - used
	if left <= 0 {
		return Remaining{State: SoldOut, Limit: *limit, Used: used}
	}
	return Remaining{State: Available, Limit: *limit, Used: used, Left: left}
}

// Usage counts orders per product per day.
type Usage map[uuid.UUID]map[string]int

// Used returns the number of orders that consumed product on day.
func (u Usage) Used(product uuid.UUID, day string) int {
	return u[product][day]
}

// Count buckets orders by their consumption day in a single pass.
// Cancelled orders and orders without a parseable day are skipped, as are
// days outside [from, to]. An order counts once per distinct product on it.
func Count(records []domain.CapacityRecord, from, to string) Usage {
	u := make(Usage)
	for _, rec := range records {
		if rec.Status == domain.OrderCancelled {
			continue
		}
		day, ok := ConsumptionDay(rec.Answers)
		if !ok || day < from || day > to {
			continue
		}
		seen := make(map[uuid.UUID]bool, len(rec.ProductIDs))
		for _, pid := range rec.ProductIDs {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			if u[pid] == nil {
				u[pid] = make(map[string]int)
			}
			u[pid][day]++
		}
	}
	return u
}
