package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/observability"
)

func NewRouter(apiHandler *APIHandler, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"HEAD", "GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", apiHandler.RootHandler)
	r.Get("/health", apiHandler.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/personas/generate", apiHandler.GeneratePersonasHandler)
		r.Post("/study/run", apiHandler.RunStudyHandler)

		// Archive, only populated when DATABASE_URL is set
		r.Get("/studies", apiHandler.ListStudiesHandler)
		r.Get("/studies/{studyID}", apiHandler.GetStudyHandler)

		r.Get("/metrics", apiHandler.MetricsHandler)
	})

	return r
}
