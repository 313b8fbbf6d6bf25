package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Locker serialises checkouts that compete for the same capacity.
type Locker interface {
	// LockDay takes a transaction-scoped advisory lock on one product's
	// capacity for one day. The lock is released at commit or rollback.
	// Callers taking several locks must take them in a stable order.
	LockDay(ctx context.Context, productID uuid.UUID, day string) error
}

type pgLocker struct {
	db db
}

// NewLocker constructs a Locker. It must be given a pgx.Tx; on a pool the
// lock would be released as soon as the statement's transaction ends.
func NewLocker(db db) Locker {
	return &pgLocker{db: db}
}

func (l *pgLocker) LockDay(ctx context.Context, productID uuid.UUID, day string) error {
	const q = `SELECT pg_advisory_xact_lock(hashtextextended(@key, 0))`

	key := "capacity:" + productID.String() + ":" + day
	if _, err := l.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.Locker.LockDay: %w", err)
	}
	return nil
}
