package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/llm-dispatch/config"
	"github.com/upb/llm-dispatch/handlers"
	"github.com/upb/llm-dispatch/middleware"
	"go.uber.org/zap"
)

// Dependencies holds everything the route tree needs
type Dependencies struct {
	Config     *config.Config
	Completion *handlers.CompletionHandler
	Health     *handlers.HealthHandler
	Providers  handlers.ProviderLister
	Logger     *zap.Logger
}

// SetupRoutes configures the gateway routes and middleware
func SetupRoutes(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(2 * time.Minute))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReady)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		if deps.Config.Auth.Enabled() {
			authMW := middleware.NewAuthMiddleware(deps.Config.Auth.JWTSecret, deps.Logger)
			r.Use(authMW.RequireAuth)
		}
		r.Post("/chat/completions", deps.Completion.HandleChatCompletion)
		r.Get("/providers", handlers.HandleListProviders(deps.Providers))
	})

	return r
}
