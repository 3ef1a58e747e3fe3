package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/townboard/server/internal/api/handlers"
	"github.com/townboard/server/internal/api/middleware"
	"github.com/townboard/server/internal/api/render"
	"github.com/townboard/server/internal/auth"
	"github.com/townboard/server/internal/config"
	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/domain/users"
	"github.com/townboard/server/internal/metrics"
	"github.com/townboard/server/internal/storage"
)

// NewRouter wires handlers, middleware and services over an injected
// repository. The repository may be postgres- or memory-backed; handler
// logic is identical for both.
func NewRouter(cfg config.Config, logger zerolog.Logger, repo storage.Repository, pinger handlers.Pinger) (http.Handler, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.Expiry, cfg.Session.CookieName)

	eventsService := events.NewService(repo.Events(), cfg.LegacyCompat)
	usersService := users.NewService(repo.Users(), logger)

	eventsHandler := handlers.NewEventsHandler(eventsService, renderer)
	usersHandler := handlers.NewUsersHandler(usersService, sessions, renderer)

	requireSession := middleware.RequireSession(sessions)
	loginLimit := middleware.LoginRateLimit(cfg.RateLimit.LoginPerMinute)

	mux := http.NewServeMux()
	handle := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, middleware.Metrics(pattern, handler))
	}

	listEvents := http.HandlerFunc(eventsHandler.List)
	handle("/{$}", methodMux(map[string]http.Handler{
		http.MethodGet: listEvents,
	}))
	handle("/index", methodMux(map[string]http.Handler{
		http.MethodGet: listEvents,
	}))
	handle("/events/new", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.NewForm),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	handle("/events/myevents", methodMux(map[string]http.Handler{
		http.MethodGet: requireSession(http.HandlerFunc(eventsHandler.MyEvents)),
	}))
	handle("/events/delete/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Delete),
	}))
	handle("/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
	}))
	handle("/signup", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(usersHandler.SignupForm),
		http.MethodPost: http.HandlerFunc(usersHandler.Signup),
	}))
	handle("/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(usersHandler.Login)),
	}))
	handle("/logout", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(usersHandler.Logout),
	}))

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pinger))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")
	var handler http.Handler = mux
	handler = middleware.Session(sessions)(handler)
	handler = middleware.CSRFProtection([]byte(cfg.CSRF.Secret), secure)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(logger)(handler)

	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
