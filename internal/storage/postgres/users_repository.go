package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/townboard/server/internal/domain/users"
)

type UserRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ users.Repository = (*UserRepository)(nil)

func (r *UserRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// InsertIfAbsent relies on the unique index on username: the insert and the
// existence check are a single atomic statement, so concurrent signups with
// the same name cannot both succeed.
func (r *UserRepository) InsertIfAbsent(ctx context.Context, params users.CreateParams) (*users.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var (
		id        string
		username  string
		hash      string
		createdAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (id, username, password_hash)
VALUES ($1, $2, $3)
ON CONFLICT (username) DO NOTHING
RETURNING id, username, password_hash, created_at
`, params.ID, params.Username, params.PasswordHash).Scan(&id, &username, &hash, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &users.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    createdAt.Time,
	}, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var (
		id        string
		name      string
		hash      string
		createdAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, username, password_hash, created_at
  FROM users
 WHERE username = $1
`, username).Scan(&id, &name, &hash, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &users.User{
		ID:           id,
		Username:     name,
		PasswordHash: hash,
		CreatedAt:    createdAt.Time,
	}, nil
}
