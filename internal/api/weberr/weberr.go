// Package weberr writes user-facing error responses and logs them with the
// request-scoped logger. Responses are plain text: the callers are browser
// form posts, not API clients.
package weberr

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Write sends a plain-text error response. Server errors (5xx) log at
// error level, client errors (4xx) at warn level.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if message == "" {
		message = http.StatusText(status)
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	http.Error(w, message, status)
}
