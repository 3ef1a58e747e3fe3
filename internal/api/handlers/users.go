package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/townboard/server/internal/api/middleware"
	"github.com/townboard/server/internal/api/render"
	"github.com/townboard/server/internal/api/weberr"
	"github.com/townboard/server/internal/auth"
	"github.com/townboard/server/internal/domain/users"
	"github.com/townboard/server/internal/metrics"
)

// Messages shown for account conflicts and failed logins. The login text is
// identical for unknown usernames and wrong passwords so responses cannot
// be used to enumerate accounts.
const (
	usernameTakenMessage = "That username already exists! Try logging in."
	loginFailedMessage   = "Invalid username/password combination"
)

type UsersHandler struct {
	Service  *users.Service
	Sessions *auth.SessionManager
	Renderer *render.Renderer
}

func NewUsersHandler(service *users.Service, sessions *auth.SessionManager, renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{Service: service, Sessions: sessions, Renderer: renderer}
}

// SignupForm handles GET /signup.
func (h *UsersHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Page(w, r, "signup.html", map[string]any{
		"CSRFField": template.HTML(middleware.CSRFTemplateField(r)),
	})
}

// Signup handles POST /signup.
func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentialsForm(r)
	if err != nil {
		weberr.Write(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	user, err := h.Service.Signup(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			weberr.Write(w, r, http.StatusConflict, usernameTakenMessage, err)
			return
		}
		weberr.Write(w, r, http.StatusInternalServerError, "Could not create account", err)
		return
	}

	h.establishSession(w, r, user.Username)
}

// Login handles POST /login.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentialsForm(r)
	if err != nil {
		// Missing fields get the same generic answer as bad credentials.
		metrics.LoginFailuresTotal.Inc()
		weberr.Write(w, r, http.StatusUnauthorized, loginFailedMessage, err)
		return
	}

	user, err := h.Service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginFailuresTotal.Inc()
			weberr.Write(w, r, http.StatusUnauthorized, loginFailedMessage, err)
			return
		}
		weberr.Write(w, r, http.StatusInternalServerError, "Could not log in", err)
		return
	}

	h.establishSession(w, r, user.Username)
}

// Logout handles GET /logout.
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *UsersHandler) establishSession(w http.ResponseWriter, r *http.Request, username string) {
	token, err := h.Sessions.Issue(username)
	if err != nil {
		weberr.Write(w, r, http.StatusInternalServerError, "Could not establish session", err)
		return
	}
	h.Sessions.SetCookie(w, r, token)
	http.Redirect(w, r, "/", http.StatusFound)
}
