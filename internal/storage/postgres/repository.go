package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/domain/users"
	"github.com/townboard/server/internal/storage"
)

const defaultTimeout = 5 * time.Second

type Repository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository wraps a pgx pool. Every storage call runs under the caller
// context plus the given timeout; there are no retries.
func NewRepository(pool *pgxpool.Pool, timeout time.Duration) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Repository{pool: pool, timeout: timeout}, nil
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{pool: r.pool, timeout: r.timeout}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, timeout: r.timeout}
}

// Ping verifies database connectivity, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.pool.Ping(ctx)
}
