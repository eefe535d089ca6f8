package api

import (
	"net/http"

	"kaizen-online/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes builds the full router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.LoginHandler)
		r.Post("/auth/logout", s.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Get("/session", s.GetSessionHandler)
			r.Post("/session/activity", s.ActivityHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.TrackRequests)
				r.Post("/session/extend", s.ExtendSessionHandler)
				r.Get("/me", s.GetCurrentUserHandler)
				r.Get("/events", s.GetEventsHandler)
			})
		})
	})

	return r
}
