package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/plans/internal/dependencies/random"
	basemiddleware "github.com/mcoot/plans/internal/middleware"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/web/handler"
	"github.com/mcoot/plans/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	Bridge         *auth.Bridge
	StateSigner    *auth.StateSigner
	SessionManager *session.Manager
	PlansService   *plans.Service
	Random         random.Random
	Metrics        *basemiddleware.Metrics // Optional; exposes /metrics when set
	StaticDir      string                  // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	rnd := cfg.Random
	if rnd == nil {
		rnd = random.New()
	}

	// Create middleware
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.SessionManager, cfg.AuthService, cfg.Logger)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.SessionManager, cfg.AuthService, cfg.Logger)

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(basemiddleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Create handlers
	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.SessionManager, cfg.Logger)
	oauthHandler := handler.NewOAuthHandler(cfg.Bridge, cfg.StateSigner, cfg.SessionManager, rnd, cfg.Logger)
	plansHandler := handler.NewPlansHandler(cfg.PlansService, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (optional auth for showing the account in nav)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)

	// Google sign-in
	for _, path := range []string{"/auth/google", "/auth/provider"} {
		r.HandleFunc(path, oauthHandler.Begin).Methods(http.MethodGet)
	}
	for _, path := range []string{"/auth/google/plans", "/auth/provider/callback"} {
		r.HandleFunc(path, oauthHandler.Callback).Methods(http.MethodGet)
	}

	// Protected routes (require auth)
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)
	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet, http.MethodPost)
	protected.HandleFunc("/plans", plansHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/submit", plansHandler.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/delete", plansHandler.Delete).Methods(http.MethodPost)

	return r
}
