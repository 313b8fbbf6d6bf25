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

// OrderRepo defines the persistence operations for Orders and their items.
type OrderRepo interface {
	// Create inserts an order and its items and returns the persisted record.
	// Callers that also decrement stock should run it inside TxRunner.InTx.
	Create(ctx context.Context, order domain.Order) (domain.Order, error)

	// GetByID retrieves an order with its items.
	// Returns domain.ErrNotFound if no order with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)

	// ListByEventPaged returns one page of an event's orders, newest first,
	// and the total number of orders in the event.
	ListByEventPaged(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error)

	// ListByEvent returns every order of an event with items, oldest first.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Order, error)

	// ListCapacityRecords returns the non-cancelled orders of an event in the
	// reduced shape the capacity allocator reads.
	ListCapacityRecords(ctx context.Context, eventID uuid.UUID) ([]domain.CapacityRecord, error)

	// UpdateStatus moves an order to a new status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error)

	// UpdateAnswers overwrites the stored answer payload of an order.
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers domain.Answers) (domain.Order, error)
}

type pgOrderRepo struct {
	db db
}

// NewOrderRepo constructs an OrderRepo backed by the provided db connection.
func NewOrderRepo(db db) OrderRepo {
	return &pgOrderRepo{db: db}
}

const orderColumns = `id, event_id, customer_name, customer_email, status, answers, total_cents, created_at, updated_at`

func (r *pgOrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	answers, err := encodeAnswers(order.Answers)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.Create: %w", err)
	}

	q := `
		INSERT INTO orders (event_id, customer_name, customer_email, status, answers, total_cents)
		VALUES (@event_id, @customer_name, @customer_email, @status, @answers, @total_cents)
		RETURNING ` + orderColumns

	args := pgx.NamedArgs{
		"event_id":       order.EventID, // nil for orders outside an event
		"customer_name":  order.CustomerName,
		"customer_email": order.CustomerEmail,
		"status":         string(order.Status),
		"answers":        answers,
		"total_cents":    order.TotalCents,
	}

	created, err := scanOrder(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.Create: %w", mapErr(err))
	}

	const itemQ = `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
		VALUES (@order_id, @product_id, @product_name, @quantity, @unit_price_cents)
		RETURNING id, order_id, product_id, product_name, quantity, unit_price_cents`

	created.Items = make([]domain.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		item, err := scanOrderItem(r.db.QueryRow(ctx, itemQ, pgx.NamedArgs{
			"order_id":         created.ID,
			"product_id":       it.ProductID,
			"product_name":     it.ProductName,
			"quantity":         it.Quantity,
			"unit_price_cents": it.UnitPriceCents,
		}))
		if err != nil {
			return domain.Order{}, fmt.Errorf("repo.OrderRepo.Create: item: %w", mapErr(err))
		}
		created.Items = append(created.Items, item)
	}
	return created, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = @id`

	o, err := scanOrder(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.GetByID: %w", mapErr(err))
	}
	orders := []domain.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.GetByID: %w", err)
	}
	return orders[0], nil
}

func (r *pgOrderRepo) ListByEventPaged(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error) {
	const countQ = `SELECT COUNT(*) FROM orders WHERE event_id = @event_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"event_id": eventID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.OrderRepo.ListByEventPaged: count: %w", err)
	}

	q := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE event_id = @event_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	orders, err := r.queryOrders(ctx, q, pgx.NamedArgs{
		"event_id": eventID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.OrderRepo.ListByEventPaged: %w", err)
	}
	return orders, total, nil
}

func (r *pgOrderRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Order, error) {
	q := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE event_id = @event_id
		ORDER BY created_at, id`

	orders, err := r.queryOrders(ctx, q, pgx.NamedArgs{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("repo.OrderRepo.ListByEvent: %w", err)
	}
	return orders, nil
}

// ListCapacityRecords groups by the primary key, which lets the json
// answers column be selected without an equality operator.
func (r *pgOrderRepo) ListCapacityRecords(ctx context.Context, eventID uuid.UUID) ([]domain.CapacityRecord, error) {
	const q = `
		SELECT o.id, o.status, o.answers,
		       COALESCE(array_agg(DISTINCT oi.product_id) FILTER (WHERE oi.product_id IS NOT NULL), '{}')
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.event_id = @event_id
		  AND o.status <> 'cancelled'
		GROUP BY o.id
		ORDER BY o.created_at, o.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("repo.OrderRepo.ListCapacityRecords: %w", err)
	}
	defer rows.Close()

	records := []domain.CapacityRecord{}
	for rows.Next() {
		var (
			rec     domain.CapacityRecord
			id      pgtype.UUID
			status  string
			answers []byte
			pids    []pgtype.UUID
		)
		if err := rows.Scan(&id, &status, &answers, &pids); err != nil {
			return nil, fmt.Errorf("repo.OrderRepo.ListCapacityRecords: scan: %w", err)
		}
		rec.OrderID = uuid.UUID(id.Bytes)
		rec.Status = domain.OrderStatus(status)
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("repo.OrderRepo.ListCapacityRecords: decode answers: %w", err)
		}
		rec.ProductIDs = make([]uuid.UUID, len(pids))
		for i, pid := range pids {
			rec.ProductIDs[i] = uuid.UUID(pid.Bytes)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.OrderRepo.ListCapacityRecords: rows: %w", err)
	}
	return records, nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	q := `
		UPDATE orders
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.UpdateStatus: %w", mapErr(err))
	}
	orders := []domain.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.UpdateStatus: %w", err)
	}
	return orders[0], nil
}

func (r *pgOrderRepo) UpdateAnswers(ctx context.Context, id uuid.UUID, answers domain.Answers) (domain.Order, error) {
	raw, err := encodeAnswers(answers)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.UpdateAnswers: %w", err)
	}

	q := `
		UPDATE orders
		SET answers = @answers, updated_at = now()
		WHERE id = @id
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "answers": raw}))
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.UpdateAnswers: %w", mapErr(err))
	}
	orders := []domain.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.UpdateAnswers: %w", err)
	}
	return orders[0], nil
}

func (r *pgOrderRepo) queryOrders(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// rows must be drained before the connection can run the items query.
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fills Items for every order with one query.
func (r *pgOrderRepo) loadItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	const q = `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = ANY(@ids::uuid[])
		ORDER BY order_id, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return fmt.Errorf("load items: scan: %w", err)
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load items: rows: %w", err)
	}
	return nil
}

func encodeAnswers(a domain.Answers) ([]byte, error) {
	if a == nil {
		a = domain.Answers{}
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	return raw, nil
}

// scanOrder maps a single database row into a domain.Order without items.
func scanOrder(s scanner) (domain.Order, error) {
	var (
		o       domain.Order
		id      pgtype.UUID
		eventID pgtype.UUID
		status  string
		answers []byte
	)
	err := s.Scan(&id, &eventID, &o.CustomerName, &o.CustomerEmail, &status,
		&answers, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.ID = uuid.UUID(id.Bytes)
	if eventID.Valid {
		eid := uuid.UUID(eventID.Bytes)
		o.EventID = &eid
	}
	o.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(answers, &o.Answers); err != nil {
		return domain.Order{}, fmt.Errorf("decode answers: %w", err)
	}
	return o, nil
}

func scanOrderItem(s scanner) (domain.OrderItem, error) {
	var (
		it                 domain.OrderItem
		id, orderID, prodID pgtype.UUID
	)
	err := s.Scan(&id, &orderID, &prodID, &it.ProductName, &it.Quantity, &it.UnitPriceCents)
	if err != nil {
		return domain.OrderItem{}, err
	}
	it.ID = uuid.UUID(id.Bytes)
	it.OrderID = uuid.UUID(orderID.Bytes)
	it.ProductID = uuid.UUID(prodID.Bytes)
	return it, nil
}
