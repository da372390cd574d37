package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pagetalk-ai/pagetalk/internal/api/handlers"
	"github.com/pagetalk-ai/pagetalk/internal/api/middleware"
)

type RouterConfig struct {
	ExtractHandler  *handlers.ExtractHandler
	QuestionHandler *handlers.QuestionHandler
	SessionHandler  *handlers.SessionHandler
	HealthHandler   *handlers.HealthHandler
	AllowedOrigins  []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Post("/extract", cfg.ExtractHandler.Extract)
	r.Post("/question", cfg.QuestionHandler.Ask)
	r.Get("/history/{sessionID}", cfg.SessionHandler.History)

	r.Route("/sessions", func(r chi.Router) {
		r.Delete("/{sessionID}", cfg.SessionHandler.Delete)
		r.Get("/{sessionID}/stats", cfg.SessionHandler.Stats)
	})

	return r
}
