package events

import (
	"context"
	"fmt"
	"time"

	"github.com/townboard/server/internal/domain/ids"
	"github.com/townboard/server/internal/sanitize"
)

const (
	// DateLayout is the wire format for submitted event dates.
	DateLayout = "2006-01-02"

	// DisplayLayout is the fixed locale-independent display format,
	// e.g. "Wed, Aug 21, 2019".
	DisplayLayout = "Mon, Jan 02, 2006"
)

type DateError struct {
	Value string
}

func (e DateError) Error() string {
	return fmt.Sprintf("invalid date %q: must be %s", e.Value, DateLayout)
}

// FormatDisplayDate reformats a YYYY-MM-DD date into the display string.
func FormatDisplayDate(date string) (string, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", DateError{Value: date}
	}
	return parsed.Format(DisplayLayout), nil
}

type Service struct {
	repo         Repository
	legacyCompat bool
}

// NewService creates the events service. legacyCompat disables the
// ownership check on deletion, matching the original demo behavior.
func NewService(repo Repository, legacyCompat bool) *Service {
	return &Service{repo: repo, legacyCompat: legacyCompat}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOrganizer(ctx context.Context, organizer string) ([]Event, error) {
	return s.repo.ListByOrganizer(ctx, organizer)
}

// Create inserts one event. Name and organizer are stripped of HTML; the
// display date is derived here so stored records always carry it.
func (s *Service) Create(ctx context.Context, name, date, organizer string) (*Event, error) {
	formatted, err := FormatDisplayDate(date)
	if err != nil {
		return nil, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}

	created, err := s.repo.Insert(ctx, CreateParams{
		ID:            id,
		Name:          sanitize.Text(name),
		Date:          date,
		Organizer:     sanitize.Text(organizer),
		FormattedDate: formatted,
	})
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

// Delete removes an event by id. Unless legacy compatibility is enabled,
// the requester must be the event's organizer.
func (s *Service) Delete(ctx context.Context, id, requester string) (*Event, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ErrNotFound
	}

	if !s.legacyCompat {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing.Organizer != requester {
			return nil, ErrForbidden
		}
	}

	return s.repo.Delete(ctx, id)
}
