package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/campusshop/storefront/internal/domain"
)

// ProductRepo defines the persistence operations for Products.
type ProductRepo interface {
	// Create inserts a new product and returns the persisted record.
	Create(ctx context.Context, product domain.Product) (domain.Product, error)

	// GetByID retrieves a product by primary key.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)

	// List returns all products ordered by name.
	List(ctx context.Context) ([]domain.Product, error)

	// DecrementStock takes qty units from a stock-tracked product.
	// Products without stock tracking are left alone. Returns
	// domain.ErrInsufficientStock when fewer than qty units remain.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type pgProductRepo struct {
	db db
}

// NewProductRepo constructs a ProductRepo backed by the provided db connection.
func NewProductRepo(db db) ProductRepo {
	return &pgProductRepo{db: db}
}

func (r *pgProductRepo) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	const q = `
		INSERT INTO products (name, price_cents, stock)
		VALUES (@name, @price_cents, @stock)
		RETURNING id, name, price_cents, stock, created_at, updated_at`

	args := pgx.NamedArgs{
		"name":        product.Name,
		"price_cents": product.PriceCents,
		"stock":       product.Stock, // nil means untracked
	}

	result, err := scanProduct(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	const q = `
		SELECT id, name, price_cents, stock, created_at, updated_at
		FROM products
		WHERE id = @id`

	result, err := scanProduct(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT id, name, price_cents, stock, created_at, updated_at
		FROM products
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ProductRepo.List: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ProductRepo.List: scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ProductRepo.List: rows: %w", err)
	}
	return products, nil
}

// DecrementStock guards on stock >= qty in the UPDATE itself, so two
// concurrent checkouts can never drive stock negative. NULL stock stays
// NULL because NULL - qty is NULL.
func (r *pgProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	const q = `
		UPDATE products
		SET stock = stock - @qty, updated_at = now()
		WHERE id = @id
		  AND (stock IS NULL OR stock >= @qty)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "qty": qty})
	if err != nil {
		return fmt.Errorf("repo.ProductRepo.DecrementStock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the product is gone or the guard failed.
		if _, err := r.GetByID(ctx, id); err != nil {
			return fmt.Errorf("repo.ProductRepo.DecrementStock: %w", err)
		}
		return fmt.Errorf("repo.ProductRepo.DecrementStock: %w", domain.ErrInsufficientStock)
	}
	return nil
}

// scanProduct maps a single database row into a domain.Product.
func scanProduct(s scanner) (domain.Product, error) {
	var (
		p     domain.Product
		id    pgtype.UUID
		stock pgtype.Int4
	)
	err := s.Scan(&id, &p.Name, &p.PriceCents, &stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	if stock.Valid {
		n := int(stock.Int32)
		p.Stock = &n
	}
	return p, nil
}
