package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/horizon-ai/sowlens/internal/api"
	"github.com/horizon-ai/sowlens/internal/api/handlers"
	"github.com/horizon-ai/sowlens/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator         middleware.AuthValidator
	SOWHandler            *handlers.SOWHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/sow", func(r chi.Router) {
			r.Post("/extract", cfg.SOWHandler.Extract)
			r.Delete("/{docID}", cfg.SOWHandler.Delete)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", cfg.RecommendationHandler.Recommend)
			r.Post("/full", cfg.RecommendationHandler.Full)
		})
	})

	return r
}
