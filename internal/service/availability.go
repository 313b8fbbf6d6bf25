package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/repo"
)

// MaxCalendarDays bounds a single availability query.
const MaxCalendarDays = 366

// AvailabilityService answers "which days can I still order on?" for an
// event's storefront calendar.
type AvailabilityService struct {
	config EventConfig
	orders repo.OrderRepo
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(config EventConfig, orders repo.OrderRepo) *AvailabilityService {
	return &AvailabilityService{config: config, orders: orders}
}

// Calendar computes per-day availability from from to to inclusive.
// When productIDs is non-empty only those products are considered, as for
// a cart; otherwise every product in the event is.
func (s *AvailabilityService) Calendar(ctx context.Context, eventID uuid.UUID, from, to time.Time, productIDs []uuid.UUID) ([]capacity.DayAvailability, error) {
	days := capacity.Days(from, to)
	switch {
	case len(days) == 0:
		return nil, fmt.Errorf("service.AvailabilityService.Calendar: %w", validationf("from must not be after to"))
	case len(days) > MaxCalendarDays:
		return nil, fmt.Errorf("service.AvailabilityService.Calendar: %w", validationf("range must not exceed %d days", MaxCalendarDays))
	}

	var (
		products []domain.EventProduct
		records  []domain.CapacityRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Confirms the event exists; Products alone returns an empty list.
		_, err := s.config.GetByID(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.config.Products(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.orders.ListCapacityRecords(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.Calendar: %w", err)
	}

	products, err := selectProducts(products, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.Calendar: %w", err)
	}

	usage := capacity.Count(records, days[0], days[len(days)-1])
	return capacity.Calendar(products, usage, days), nil
}

// selectProducts narrows products to ids, failing on ids not in the event.
func selectProducts(products []domain.EventProduct, ids []uuid.UUID) ([]domain.EventProduct, error) {
	if len(ids) == 0 {
		return products, nil
	}
	byID := make(map[uuid.UUID]domain.EventProduct, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}
	out := make([]domain.EventProduct, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, validationf("product %s is not offered in this event", id)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}
