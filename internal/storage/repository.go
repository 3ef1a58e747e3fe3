package storage

import (
	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/domain/users"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository
	Users() users.Repository
}
