// Package memory implements the storage repositories over in-process maps.
// It backs the server when no DATABASE_URL is configured and doubles as the
// test double for handler and service tests. All operations are guarded by
// a single mutex, so insert-if-absent is atomic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/domain/users"
	"github.com/townboard/server/internal/storage"
)

type Repository struct {
	mu sync.Mutex

	eventOrder  []string
	eventsByID  map[string]events.Event
	usersByName map[string]users.User
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		eventsByID:  make(map[string]events.Event),
		usersByName: make(map[string]users.User),
	}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{store: r}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{store: r}
}

type EventRepository struct {
	store *Repository
}

var _ events.Repository = (*EventRepository)(nil)

func (r *EventRepository) Insert(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event := events.Event{
		ID:            params.ID,
		Name:          params.Name,
		Date:          params.Date,
		Organizer:     params.Organizer,
		FormattedDate: params.FormattedDate,
		CreatedAt:     time.Now().UTC(),
	}
	r.store.eventsByID[event.ID] = event
	r.store.eventOrder = append(r.store.eventOrder, event.ID)
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := make([]events.Event, 0, len(r.store.eventOrder))
	for _, id := range r.store.eventOrder {
		items = append(items, r.store.eventsByID[id])
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.eventsByID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &event, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizer string) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var items []events.Event
	for _, id := range r.store.eventOrder {
		event := r.store.eventsByID[id]
		if event.Organizer == organizer {
			items = append(items, event)
		}
	}
	return items, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.eventsByID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	delete(r.store.eventsByID, id)
	for i, existing := range r.store.eventOrder {
		if existing == id {
			r.store.eventOrder = append(r.store.eventOrder[:i], r.store.eventOrder[i+1:]...)
			break
		}
	}
	return &event, nil
}

type UserRepository struct {
	store *Repository
}

var _ users.Repository = (*UserRepository)(nil)

func (r *UserRepository) InsertIfAbsent(ctx context.Context, params users.CreateParams) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.usersByName[params.Username]; ok {
		return nil, users.ErrUsernameTaken
	}

	user := users.User{
		ID:           params.ID,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.store.usersByName[user.Username] = user
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.usersByName[username]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}
