package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/townboard/server/internal/auth"
	"github.com/townboard/server/internal/domain/ids"
	"github.com/townboard/server/internal/sanitize"
)

// Service handles signup and login.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Signup hashes the password and stores the account with an atomic
// insert-if-absent. Returns ErrUsernameTaken when the name exists.
func (s *Service) Signup(ctx context.Context, username, password string) (*User, error) {
	username = sanitize.Text(username)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	created, err := s.repo.InsertIfAbsent(ctx, CreateParams{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("user signed up")
	return created, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// map to ErrInvalidCredentials so error text cannot be used to enumerate
// accounts.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().Str("username", username).Msg("user logged in")
	return user, nil
}
