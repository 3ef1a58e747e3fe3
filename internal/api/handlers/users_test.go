package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/townboard/server/internal/auth"
	"github.com/townboard/server/internal/domain/users"
	"github.com/townboard/server/internal/storage/memory"
)

func newUsersEnv(t *testing.T) (*UsersHandler, *users.Service, *auth.SessionManager) {
	t.Helper()
	repo := memory.NewRepository()
	service := users.NewService(repo.Users(), zerolog.Nop())
	manager := testSessionManager()
	handler := NewUsersHandler(service, manager, testRenderer(t))
	return handler, service, manager
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, manager *auth.SessionManager) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == manager.CookieName() {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSignupForm(t *testing.T) {
	handler, _, manager := newUsersEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	rec := serve(http.HandlerFunc(handler.SignupForm), manager, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sign Up")
	assert.Contains(t, body, "Log In")
}

func TestSignup(t *testing.T) {
	handler, _, manager := newUsersEnv(t)

	req := postForm("/signup", url.Values{
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	rec := serve(http.HandlerFunc(handler.Signup), manager, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec, manager)
	assert.True(t, cookie.HttpOnly)

	claims, err := manager.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestSignup_UsernameTaken(t *testing.T) {
	handler, _, manager := newUsersEnv(t)

	first := postForm("/signup", url.Values{
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	require.Equal(t, http.StatusFound, serve(http.HandlerFunc(handler.Signup), manager, first).Code)

	second := postForm("/signup", url.Values{
		"username": {"alice"},
		"password": {"different-pass"},
	})
	rec := serve(http.HandlerFunc(handler.Signup), manager, second)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "That username already exists! Try logging in.")
}

func TestSignup_MissingFields(t *testing.T) {
	handler, _, manager := newUsersEnv(t)

	req := postForm("/signup", url.Values{"username": {"alice"}})
	rec := serve(http.HandlerFunc(handler.Signup), manager, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password is required")
}

func TestLogin(t *testing.T) {
	handler, service, manager := newUsersEnv(t)

	_, err := service.Signup(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)

	req := postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	rec := serve(http.HandlerFunc(handler.Login), manager, req)

	require.Equal(t, http.StatusFound, rec.Code)

	claims, err := manager.Validate(sessionCookie(t, rec, manager).Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_Failures(t *testing.T) {
	handler, service, manager := newUsersEnv(t)

	_, err := service.Signup(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)

	// Wrong password, unknown user, and a missing field all produce the
	// same status and message.
	forms := []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"hunter2hunter2"}},
		{"username": {"alice"}},
	}
	for _, form := range forms {
		rec := serve(http.HandlerFunc(handler.Login), manager, postForm("/login", form))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username/password combination")
	}
}

func TestLogout(t *testing.T) {
	handler, _, manager := newUsersEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	withSession(t, manager, "alice")(req)
	rec := serve(http.HandlerFunc(handler.Logout), manager, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec, manager)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
