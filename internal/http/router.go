package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/inventory-changelog/docs"
	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
	"github.com/rogerio-castellano/inventory-changelog/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-changelog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-changelog/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type RouterConfig struct {
	Server  *handlers.Server
	Auth    *auth.Service
	Limiter *rl.Limiter
	// Metrics enables request metrics and GET /metrics when set.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := cfg.Server

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
	})

	// Logout checks the token itself so a closed session can answer 400.
	r.Post("/logout", h.LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Auth, logger))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItemsHandler)
			r.Post("/", h.CreateItemHandler)
			r.Post("/import", h.ImportItemsHandler)
			r.Get("/{id}", h.GetItemHandler)
			r.Put("/{id}", h.ReplaceItemHandler)
			r.Patch("/{id}", h.PatchItemHandler)
			r.Delete("/{id}", h.DeleteItemHandler)
		})

		r.Route("/changes", func(r chi.Router) {
			r.Get("/", h.ListChangesHandler)
			r.Get("/export", h.ExportChangesHandler)
			r.Get("/{id}", h.GetChangeHandler)
		})

		r.Get("/metrics/dashboard", h.GetDashboardMetricsHandler)

		r.Route("/users", func(r chi.Router) {
			r.Use(RequireStaff)
			r.Get("/", h.ListUsersHandler)
			r.Post("/", h.CreateUserHandler)
			r.Get("/{id}", h.GetUserHandler)
			r.Put("/{id}", h.ReplaceUserHandler)
			r.Patch("/{id}", h.PatchUserHandler)
			r.Delete("/{id}", h.DeleteUserHandler)
		})
	})

	return r
}
