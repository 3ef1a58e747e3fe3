package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims carries the single application field tracked per session.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSession = errors.New("missing session")
	ErrInvalidSession = errors.New("invalid session")
)

// SessionManager issues and validates signed session cookies. Sessions are
// stateless: the cookie payload is an HMAC-SHA256 JWT whose only
// application claim is the username.
type SessionManager struct {
	secret     []byte
	expiry     time.Duration
	cookieName string
	issuer     string
}

func NewSessionManager(secret string, expiry time.Duration, cookieName string) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		expiry:     expiry,
		cookieName: cookieName,
		issuer:     "townboard",
	}
}

func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Issue signs a session token for the given username.
func (m *SessionManager) Issue(username string) (string, error) {
	if username == "" {
		return "", ErrInvalidSession
	}

	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses a session token and returns its claims.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingSession
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SetCookie establishes the session cookie on a response.
func (m *SessionManager) SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.expiry),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie unconditionally.
func (m *SessionManager) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and validates the session from the request cookie.
func (m *SessionManager) FromRequest(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return nil, ErrMissingSession
	}
	return m.Validate(cookie.Value)
}
