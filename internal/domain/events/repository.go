package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

var ErrForbidden = errors.New("not the event organizer")

// Event is a single bulletin board entry. Organizer is a copy of the
// submitting session's username at creation time, not a referential key.
type Event struct {
	ID            string
	Name          string
	Date          string
	Organizer     string
	FormattedDate string
	CreatedAt     time.Time
}

type CreateParams struct {
	ID            string
	Name          string
	Date          string
	Organizer     string
	FormattedDate string
}

// Repository is the storage surface the service depends on. List returns
// events in insertion order. Delete mirrors find-one-and-delete: it returns
// the removed event, or ErrNotFound when the id is absent.
type Repository interface {
	Insert(ctx context.Context, params CreateParams) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizer(ctx context.Context, organizer string) ([]Event, error)
	Delete(ctx context.Context, id string) (*Event, error)
}
