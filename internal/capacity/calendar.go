package capacity

import (
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
)

// ProductDay is one limited product's capacity on one day.
type ProductDay struct {
	ProductID uuid.UUID
	Product   string
	Remaining Remaining
}

// DayAvailability is the cart-level view of one day.
//
// Available is true only if every limited product accepts an order.
// Blocked is true if any limited product is blocked, which means the day
// should not be offered at all. Left is the minimum remaining across
// limited products; nil means no product caps the day.
type DayAvailability struct {
	Day       string
	Available bool
	Blocked   bool
	Left      *int
	Products  []ProductDay
}

// Calendar computes availability for each day in days for the given
// products. Products without a limit do not constrain any day.
func Calendar(products []domain.EventProduct, usage Usage, days []string) []DayAvailability {
	limited := Limited(products)
	out := make([]DayAvailability, 0, len(days))
	for _, day := range days {
		da := DayAvailability{Day: day, Available: true}
		for _, p := range limited {
			rem := Resolve(p.Capacity, day, usage.Used(p.ProductID, day))
			da.Products = append(da.Products, ProductDay{ProductID: p.ProductID, Product: p.DisplayName, Remaining: rem})

			if !rem.Accepts() {
				da.Available = false
			}
			if rem.State == Blocked {
				da.Blocked = true
			}
			if rem.State == Unlimited {
				continue
			}
			if da.Left == nil || rem.Left < *da.Left {
				left := rem.Left
				da.Left = &left
			}
		}
		out = append(out, da)
	}
	return out
}
