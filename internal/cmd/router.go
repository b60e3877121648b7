package cmd

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/learnsphere/client/internal/handlers"
	"github.com/learnsphere/client/internal/metrics"
	"github.com/learnsphere/client/internal/middlewares"
	"github.com/learnsphere/client/internal/security"
	"github.com/learnsphere/client/internal/services"
)

// newRouter wires the gateway handlers on top of the app components
func newRouter(a *app) http.Handler {
	sanitizer := security.NewDescriptionSanitizer()
	lectures := services.NewLectureService(a.client, a.session, a.prefs, sanitizer, a.logger, a.cfg.Player.RedirectDelay)

	sessionHandler := handlers.NewSessionHandler(a.client, a.session, a.cfg.Google, a.logger)
	courseHandler := handlers.NewCourseHandler(a.client, a.session, sanitizer, a.logger)
	profileHandler := handlers.NewProfileHandler(a.client, a.logger)
	playerHandler := handlers.NewPlayerHandler(lectures, a.collector, a.logger)
	preferenceHandler := handlers.NewPreferenceHandler(a.prefs, a.logger)
	instructorHandler := handlers.NewInstructorHandler(a.client, a.session, a.cfg.Upload, a.logger)
	healthHandler := handlers.NewHealthHandler(a.pinger, a.logger)

	r := chi.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(a.logger, a.session))
	r.Use(middlewares.RecoveryMiddleware(a.logger))
	r.Use(middlewares.CORSMiddleware(a.cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))

	healthHandler.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(a.registry))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequestSizeLimitMiddleware(a.cfg.Upload.MaxRequestSize))
			sessionHandler.RegisterRoutes(r)
			courseHandler.RegisterRoutes(r)
			profileHandler.RegisterRoutes(r)
			playerHandler.RegisterRoutes(r)
			preferenceHandler.RegisterRoutes(r)
		})
		// Uploads set their own limits
		instructorHandler.RegisterRoutes(r)
	})

	return r
}
