package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/townboard/server/internal/domain/events"
)

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()
	pool := setupPostgres(t, ctx)
	repo, err := NewRepository(pool, 10*time.Second)
	require.NoError(t, err)
	return repo
}

func eventParams(name, date, organizer, formatted string) events.CreateParams {
	return events.CreateParams{
		ID:            ulid.Make().String(),
		Name:          name,
		Date:          date,
		Organizer:     organizer,
		FormattedDate: formatted,
	}
}

func TestEventRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	params := eventParams("Farmers Market", "2019-08-21", "alice", "Wed, Aug 21, 2019")
	created, err := repo.Insert(ctx, params)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, params.ID, created.ID)
	assert.Equal(t, "Farmers Market", created.Name)
	assert.Equal(t, "2019-08-21", created.Date)
	assert.Equal(t, "alice", created.Organizer)
	assert.Equal(t, "Wed, Aug 21, 2019", created.FormattedDate)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, params.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	_, err := repo.GetByID(ctx, ulid.Make().String())
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_List_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		_, err := repo.Insert(ctx, eventParams(name, "2024-05-01", "bob", "Wed, May 01, 2024"))
		require.NoError(t, err)
	}

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, name := range names {
		assert.Equal(t, name, listed[i].Name)
	}
}

func TestEventRepository_List_Empty(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestEventRepository_ListByOrganizer(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	_, err := repo.Insert(ctx, eventParams("Alice One", "2024-05-01", "alice", "Wed, May 01, 2024"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, eventParams("Bob One", "2024-05-02", "bob", "Thu, May 02, 2024"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, eventParams("Alice Two", "2024-05-03", "alice", "Fri, May 03, 2024"))
	require.NoError(t, err)

	mine, err := repo.ListByOrganizer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Alice One", mine[0].Name)
	assert.Equal(t, "Alice Two", mine[1].Name)

	none, err := repo.ListByOrganizer(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx).Events()

	params := eventParams("Doomed", "2024-05-01", "alice", "Wed, May 01, 2024")
	_, err := repo.Insert(ctx, params)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, params.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", deleted.Name)

	_, err = repo.GetByID(ctx, params.ID)
	require.ErrorIs(t, err, events.ErrNotFound)

	// Second delete of the same id reports not found.
	_, err = repo.Delete(ctx, params.ID)
	require.ErrorIs(t, err, events.ErrNotFound)
}
