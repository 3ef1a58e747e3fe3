package users

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/townboard/server/internal/auth"
	"github.com/townboard/server/internal/domain/ids"
)

type fakeRepo struct {
	byName map[string]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byName: make(map[string]User)}
}

func (f *fakeRepo) InsertIfAbsent(_ context.Context, params CreateParams) (*User, error) {
	if _, ok := f.byName[params.Username]; ok {
		return nil, ErrUsernameTaken
	}
	user := User{
		ID:           params.ID,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.byName[user.Username] = user
	return &user, nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	user, ok := f.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, zerolog.Nop())
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo())

	created, err := svc.Signup(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	assert.Equal(t, "alice", created.Username)
	assert.NoError(t, ids.ValidateULID(created.ID))
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	assert.NoError(t, auth.VerifyPassword(created.PasswordHash, "hunter2hunter2"))
}

func TestService_Signup_SanitizesUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo())

	created, err := svc.Signup(ctx, "  <i>alice</i>  ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
}

func TestService_Signup_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	first, err := svc.Signup(ctx, "alice", "original-pass")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "other-pass")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// The original account and hash survive the failed signup.
	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo())

	_, err := svc.Signup(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo())

	_, err := svc.Signup(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	// Wrong password and unknown username fail identically, so responses
	// cannot be used to probe which usernames exist.
	_, wrongPass := svc.Login(ctx, "alice", "wrong")
	_, unknownUser := svc.Login(ctx, "nobody", "hunter2hunter2")

	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
}
