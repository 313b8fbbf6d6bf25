package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/campusshop/storefront/internal/domain"
)

// EventProductRepo defines the persistence operations for the
// event_products join table, which carries per-event capacity rules.
type EventProductRepo interface {
	// Attach offers a product inside an event, or updates its display name
	// and price if it is already attached. An empty display name falls back
	// to the product name, a nil price to the product price. Existing
	// capacity rules are preserved. Returns domain.ErrNotFound if either the
	// event or the product does not exist.
	Attach(ctx context.Context, eventID, productID uuid.UUID, displayName string, priceCents *int64) (domain.EventProduct, error)

	// ListByEvent returns the products offered in an event, ordered by display name.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error)

	// SetCapacity replaces the capacity rules of an attached product.
	// Returns domain.ErrNotFound if the product is not attached to the event.
	SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error)
}

type pgEventProductRepo struct {
	db db
}

// NewEventProductRepo constructs an EventProductRepo backed by the provided db connection.
func NewEventProductRepo(db db) EventProductRepo {
	return &pgEventProductRepo{db: db}
}

// Attach upserts from a SELECT on products so a missing product yields no
// row (ErrNotFound) and a missing event trips the foreign key.
func (r *pgEventProductRepo) Attach(ctx context.Context, eventID, productID uuid.UUID, displayName string, priceCents *int64) (domain.EventProduct, error) {
	const q = `
		INSERT INTO event_products (event_id, product_id, display_name, price_cents)
		SELECT @event_id::uuid, p.id,
		       COALESCE(NULLIF(@display_name::text, ''), p.name),
		       COALESCE(@price_cents::bigint, p.price_cents)
		FROM products p
		WHERE p.id = @product_id
		ON CONFLICT (event_id, product_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    price_cents  = EXCLUDED.price_cents
		RETURNING event_id, product_id, display_name, price_cents, capacity`

	args := pgx.NamedArgs{
		"event_id":     eventID,
		"product_id":   productID,
		"display_name": displayName,
		"price_cents":  priceCents,
	}

	result, err := scanEventProduct(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.EventProduct{}, fmt.Errorf("repo.EventProductRepo.Attach: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgEventProductRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error) {
	const q = `
		SELECT event_id, product_id, display_name, price_cents, capacity
		FROM event_products
		WHERE event_id = @event_id
		ORDER BY display_name, product_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("repo.EventProductRepo.ListByEvent: %w", err)
	}
	defer rows.Close()

	out := []domain.EventProduct{}
	for rows.Next() {
		ep, err := scanEventProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventProductRepo.ListByEvent: scan: %w", err)
		}
		out = append(out, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventProductRepo.ListByEvent: rows: %w", err)
	}
	return out, nil
}

func (r *pgEventProductRepo) SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return domain.EventProduct{}, fmt.Errorf("repo.EventProductRepo.SetCapacity: encode: %w", err)
	}

	const q = `
		UPDATE event_products
		SET capacity = @capacity
		WHERE event_id = @event_id AND product_id = @product_id
		RETURNING event_id, product_id, display_name, price_cents, capacity`

	args := pgx.NamedArgs{"event_id": eventID, "product_id": productID, "capacity": raw}
	result, err := scanEventProduct(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.EventProduct{}, fmt.Errorf("repo.EventProductRepo.SetCapacity: %w", mapErr(err))
	}
	return result, nil
}

func scanEventProduct(s scanner) (domain.EventProduct, error) {
	var (
		ep                 domain.EventProduct
		eventID, productID pgtype.UUID
		capacity           []byte
	)
	err := s.Scan(&eventID, &productID, &ep.DisplayName, &ep.PriceCents, &capacity)
	if err != nil {
		return domain.EventProduct{}, err
	}
	ep.EventID = uuid.UUID(eventID.Bytes)
	ep.ProductID = uuid.UUID(productID.Bytes)
	if err := json.Unmarshal(capacity, &ep.Capacity); err != nil {
		return domain.EventProduct{}, fmt.Errorf("decode capacity: %w", err)
	}
	return ep, nil
}
