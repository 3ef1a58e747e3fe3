package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/townboard/server/internal/domain/events"
)

type EventRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ events.Repository = (*EventRepository)(nil)

type eventRow struct {
	ID            string
	Name          string
	Date          string
	Organizer     string
	FormattedDate string
	CreatedAt     pgtype.Timestamptz
}

func (row eventRow) toEvent() events.Event {
	return events.Event{
		ID:            row.ID,
		Name:          row.Name,
		Date:          row.Date,
		Organizer:     row.Organizer,
		FormattedDate: row.FormattedDate,
		CreatedAt:     row.CreatedAt.Time,
	}
}

func (r *EventRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *EventRepository) Insert(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var row eventRow
	err := r.pool.QueryRow(ctx, `
INSERT INTO events (id, name, event_date, organizer, formatted_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, event_date, organizer, formatted_date, created_at
`, params.ID, params.Name, params.Date, params.Organizer, params.FormattedDate).Scan(
		&row.ID, &row.Name, &row.Date, &row.Organizer, &row.FormattedDate, &row.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	event := row.toEvent()
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT id, name, event_date, organizer, formatted_date, created_at
  FROM events
 ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var row eventRow
	err := r.pool.QueryRow(ctx, `
SELECT id, name, event_date, organizer, formatted_date, created_at
  FROM events
 WHERE id = $1
`, id).Scan(&row.ID, &row.Name, &row.Date, &row.Organizer, &row.FormattedDate, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	event := row.toEvent()
	return &event, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizer string) ([]events.Event, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT id, name, event_date, organizer, formatted_date, created_at
  FROM events
 WHERE organizer = $1
 ORDER BY created_at ASC, id ASC
`, organizer)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Delete removes the event and returns the deleted row, mirroring a
// find-one-and-delete. Absent ids yield events.ErrNotFound.
func (r *EventRepository) Delete(ctx context.Context, id string) (*events.Event, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var row eventRow
	err := r.pool.QueryRow(ctx, `
DELETE FROM events
 WHERE id = $1
RETURNING id, name, event_date, organizer, formatted_date, created_at
`, id).Scan(&row.ID, &row.Name, &row.Date, &row.Organizer, &row.FormattedDate, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}

	event := row.toEvent()
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Date, &row.Organizer, &row.FormattedDate, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, row.toEvent())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}
