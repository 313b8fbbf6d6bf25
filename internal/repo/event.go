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

// EventRepo defines the persistence operations for Events.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type EventRepo interface {
	// Create inserts a new event and returns the persisted record.
	// Returns domain.ErrConflict if the slug is already taken.
	Create(ctx context.Context, event domain.Event) (domain.Event, error)

	// GetByID retrieves a single event by its UUID primary key.
	// Returns domain.ErrNotFound if no event with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)

	// GetBySlug retrieves a single event by its public slug.
	// Returns domain.ErrNotFound if no event has that slug.
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)

	// List returns all events, most recently created first.
	List(ctx context.Context) ([]domain.Event, error)

	// Update overwrites the descriptive fields of an event. The schema is
	// left untouched; use UpdateSchema to replace it.
	Update(ctx context.Context, event domain.Event) (domain.Event, error)

	// UpdateSchema replaces an event's checkout form.
	UpdateSchema(ctx context.Context, id uuid.UUID, schema domain.Schema) (domain.Event, error)
}

type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

const eventColumns = `id, slug, name, description, active, starts_on, ends_on, schema, created_at, updated_at`

func (r *pgEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	schema, err := json.Marshal(schemaOrEmpty(event.Schema))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: encode schema: %w", err)
	}

	q := `
		INSERT INTO events (slug, name, description, active, starts_on, ends_on, schema)
		VALUES (@slug, @name, @description, @active, @starts_on, @ends_on, @schema)
		RETURNING ` + eventColumns

	args := pgx.NamedArgs{
		"slug":        event.Slug,
		"name":        event.Name,
		"description": event.Description,
		"active":      event.Active,
		"starts_on":   event.StartsOn, // nil becomes NULL
		"ends_on":     event.EndsOn,
		"schema":      schema,
	}

	result, err := scanEvent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgEventRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = @id`

	result, err := scanEvent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgEventRepo) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE slug = @slug`

	result, err := scanEvent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetBySlug: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.List: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.List: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.List: rows: %w", err)
	}
	return events, nil
}

func (r *pgEventRepo) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	q := `
		UPDATE events
		SET slug        = @slug,
		    name        = @name,
		    description = @description,
		    active      = @active,
		    starts_on   = @starts_on,
		    ends_on     = @ends_on,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + eventColumns

	args := pgx.NamedArgs{
		"id":          event.ID,
		"slug":        event.Slug,
		"name":        event.Name,
		"description": event.Description,
		"active":      event.Active,
		"starts_on":   event.StartsOn,
		"ends_on":     event.EndsOn,
	}

	result, err := scanEvent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgEventRepo) UpdateSchema(ctx context.Context, id uuid.UUID, schema domain.Schema) (domain.Event, error) {
	raw, err := json.Marshal(schemaOrEmpty(schema))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.UpdateSchema: encode schema: %w", err)
	}

	q := `
		UPDATE events
		SET schema = @schema, updated_at = now()
		WHERE id = @id
		RETURNING ` + eventColumns

	result, err := scanEvent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "schema": raw}))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.UpdateSchema: %w", mapErr(err))
	}
	return result, nil
}

// schemaOrEmpty keeps a nil schema from being stored as JSON null.
func schemaOrEmpty(s domain.Schema) domain.Schema {
	if s == nil {
		return domain.Schema{}
	}
	return s
}

// scanEvent maps a single database row into a domain.Event.
// It handles the UUID, nullable date, and JSON schema conversions.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e        domain.Event
		id       pgtype.UUID
		startsOn pgtype.Date
		endsOn   pgtype.Date
		schema   []byte
	)

	err := s.Scan(&id, &e.Slug, &e.Name, &e.Description, &e.Active,
		&startsOn, &endsOn, &schema, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Event{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	if startsOn.Valid {
		d := startsOn.Time
		e.StartsOn = &d
	}
	if endsOn.Valid {
		d := endsOn.Time
		e.EndsOn = &d
	}
	if err := json.Unmarshal(schema, &e.Schema); err != nil {
		return domain.Event{}, fmt.Errorf("decode schema: %w", err)
	}
	return e, nil
}
