package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/plans/internal/api/handler"
	"github.com/mcoot/plans/internal/api/middleware"
	basemiddleware "github.com/mcoot/plans/internal/middleware"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Storage        storage.Storage
	AuthService    *auth.Service
	SessionManager *session.Manager
	PlansService   *plans.Service
	Metrics        *basemiddleware.Metrics // Optional
	CORSOrigins    []string                // Empty disables cross-origin access
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService, cfg.SessionManager, cfg.Logger)
	plansHandler := handler.NewPlansHandler(cfg.PlansService, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.SessionManager, cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(basemiddleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
	}

	// Account routes (no auth required for registering/logging in)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	accounts := api.PathPrefix("/accounts").Subrouter()
	accounts.Use(authMiddleware)
	accounts.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)
	accounts.HandleFunc("/logout", accountHandler.Logout).Methods(http.MethodPost)

	// Plan routes (all require auth)
	planRoutes := api.PathPrefix("/plans").Subrouter()
	planRoutes.Use(authMiddleware)
	planRoutes.HandleFunc("", plansHandler.List).Methods(http.MethodGet)
	planRoutes.HandleFunc("", plansHandler.Add).Methods(http.MethodPost)
	planRoutes.HandleFunc("", plansHandler.Remove).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	if len(cfg.CORSOrigins) == 0 {
		return r
	}

	// CORS wraps the router so preflight requests are answered before route matching
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}
