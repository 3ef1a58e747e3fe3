package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/domain/users"
)

func TestEventRepository_ListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Events()

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, events.CreateParams{
			ID:   fmt.Sprintf("id-%d", i),
			Name: fmt.Sprintf("Event %d", i),
			Date: "2024-05-01",
		})
		require.NoError(t, err)
	}

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for i, event := range listed {
		assert.Equal(t, fmt.Sprintf("id-%d", i), event.ID)
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Events()

	_, err := repo.Insert(ctx, events.CreateParams{ID: "abc", Name: "Picnic", Organizer: "alice"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Picnic", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_ListByOrganizer(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Events()

	_, err := repo.Insert(ctx, events.CreateParams{ID: "1", Name: "A", Organizer: "alice"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, events.CreateParams{ID: "2", Name: "B", Organizer: "bob"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, events.CreateParams{ID: "3", Name: "C", Organizer: "alice"})
	require.NoError(t, err)

	mine, err := repo.ListByOrganizer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "A", mine[0].Name)
	assert.Equal(t, "C", mine[1].Name)
}

func TestEventRepository_DeleteReturnsRemovedEvent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Events()

	_, err := repo.Insert(ctx, events.CreateParams{ID: "abc", Name: "Picnic"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Picnic", deleted.Name)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = repo.Delete(ctx, "abc")
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_DeletePreservesOrderOfRemaining(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Events()

	for _, id := range []string{"1", "2", "3"} {
		_, err := repo.Insert(ctx, events.CreateParams{ID: id})
		require.NoError(t, err)
	}

	_, err := repo.Delete(ctx, "2")
	require.NoError(t, err)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "1", listed[0].ID)
	assert.Equal(t, "3", listed[1].ID)
}

func TestEventRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewRepository().Events()
	_, err := repo.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUserRepository_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Users()

	created, err := repo.InsertIfAbsent(ctx, users.CreateParams{ID: "u1", Username: "alice", PasswordHash: "hash1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)

	_, err = repo.InsertIfAbsent(ctx, users.CreateParams{ID: "u2", Username: "alice", PasswordHash: "hash2"})
	require.ErrorIs(t, err, users.ErrUsernameTaken)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash1", got.PasswordHash)
}

func TestUserRepository_InsertIfAbsent_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Users()

	const attempts = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.InsertIfAbsent(ctx, users.CreateParams{
				ID:       fmt.Sprintf("u%d", i),
				Username: "racer",
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, users.ErrUsernameTaken)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository().Users()

	_, err := repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, users.ErrNotFound)
}
