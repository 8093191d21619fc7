// Package http wires the REST surface: authentication, result-sheet upload
// and the query endpoints, all JSON over chi.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/supersonicwisd1/result-processing-system/internal/auth"
	"github.com/supersonicwisd1/result-processing-system/internal/config"
	"github.com/supersonicwisd1/result-processing-system/internal/infrastructure"
	"github.com/supersonicwisd1/result-processing-system/internal/services"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// NewRouter assembles the full API router.
func NewRouter(cfg *config.Config, authSvc *auth.Service, resultSvc *services.ResultService, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(traceMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	authHandler := NewAuthHandler(authSvc, logger)
	resultsHandler := NewResultsHandler(resultSvc, cfg, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler)
		r.Mount("/auth", authHandler.Routes())

		r.Route("/results", func(r chi.Router) {
			r.Use(authSvc.Middleware)

			r.Post("/upload", resultsHandler.Upload)
			r.Post("/submit", resultsHandler.Submit)
			r.Get("/by-course", resultsHandler.ByCourse)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(domain.RoleAdmin, domain.RoleHOD, domain.RoleExamOfficer))
				r.Get("/by-registration", resultsHandler.ByRegistration)
				r.Post("/by-department", resultsHandler.ByDepartment)
				r.Put("/update", resultsHandler.Update)
				r.Delete("/{id}", resultsHandler.Delete)
			})
		})
	})

	return r
}

// traceMiddleware copies chi's request id into the context key the logger
// reads, so every log line of a request carries the same trace_id.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}
