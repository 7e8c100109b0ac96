package server

import (
	"net/http"

	"github.com/cloo-solutions/roadmapbot/internal/api"
	"github.com/cloo-solutions/roadmapbot/internal/api/handlers"
	"github.com/cloo-solutions/roadmapbot/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger           *zap.Logger
	AdminToken       string
	RateLimiter      *middleware.ClientLimiter
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
	KnowledgeHandler *handlers.KnowledgeHandler
	RouteHandler     *handlers.RouteHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.MaxBodyBytes(middleware.DefaultMaxBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/knowledge-base", cfg.KnowledgeHandler.Get)
		r.Get("/list-models", cfg.RouteHandler.ListModels)

		// Any method reaches the handler so it can answer 405 itself.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimiter))
			r.HandleFunc("/gemini", cfg.RouteHandler.Route)
			r.HandleFunc("/route", cfg.RouteHandler.Route)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminToken(cfg.AdminToken))
			r.Post("/knowledge-base/snapshots", cfg.KnowledgeHandler.Snapshot)
			r.Get("/decisions", cfg.RouteHandler.ListDecisions)
		})
	})

	return r
}
