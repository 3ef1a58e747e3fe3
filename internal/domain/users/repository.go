package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username/password combination")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type CreateParams struct {
	ID           string
	Username     string
	PasswordHash string
}

// Repository is the storage surface for accounts. InsertIfAbsent must be
// atomic with respect to the username uniqueness check: concurrent signups
// with the same username yield exactly one stored row and ErrUsernameTaken
// for the losers.
type Repository interface {
	InsertIfAbsent(ctx context.Context, params CreateParams) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
