package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/auth-service/app"
	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints sit outside the guard so probes are never rate limited
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Group(func(r chi.Router) {
		// Claims first so the guard can pick the caller's tier
		r.Use(deps.AuthMiddleware.Authenticate)
		r.Use(deps.SecurityMiddleware.Guard)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.AuthHandler.HandleSignup)
			r.Post("/sign-in", deps.AuthHandler.HandleSignIn)
			r.Post("/sign-out", deps.AuthHandler.HandleSignOut)
		})

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/users", func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAuth)
				r.Get("/me", deps.UserHandler.HandleMe)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
