package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mcoot/plans/internal/api"
	"github.com/mcoot/plans/internal/config"
	"github.com/mcoot/plans/internal/factory"
	"github.com/mcoot/plans/internal/middleware"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/services/session"
	pgstorage "github.com/mcoot/plans/internal/storage/postgres"
	redisstorage "github.com/mcoot/plans/internal/storage/redis"
	"github.com/mcoot/plans/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.SecretGenerated {
		logger.Warn("SECRET not set; generated a random one, Google sign-in state will not survive restarts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providerCfg := auth.DefaultProviderConfig()
	providerCfg.ClientID = cfg.ClientID
	providerCfg.ClientSecret = cfg.ClientSecret
	providerCfg.CallbackURL = cfg.OAuthCallbackURL

	sessionCfg := session.DefaultConfig()
	sessionCfg.TTL = cfg.SessionTTL
	sessionCfg.SweepSpec = cfg.SessionSweep

	factoryCfg := factory.Config{
		AuthConfig:     auth.DefaultConfig(),
		ProviderConfig: providerCfg,
		SessionConfig:  sessionCfg,
		PlansConfig:    plans.Config{AllowCrossAccountDelete: cfg.AllowCrossAccountDelete},
		Secret:         cfg.Secret,
		Logger:         logger,
		StorageType:    cfg.StorageType,
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	if !app.Bridge.Enabled() {
		logger.Info("Google sign-in disabled; set CLIENT_ID and CLIENT_SECRET to enable it")
	}

	sweeper, err := session.NewSweeper(app.SessionManager, sessionCfg.SweepSpec, logger)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	metrics := middleware.NewMetrics()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Storage:        app.Storage,
		AuthService:    app.AuthService,
		SessionManager: app.SessionManager,
		PlansService:   app.PlansService,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		Bridge:         app.Bridge,
		StateSigner:    app.StateSigner,
		SessionManager: app.SessionManager,
		PlansService:   app.PlansService,
		Random:         app.Random,
		Metrics:        metrics,
		StaticDir:      staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	server := api.NewServer(mux, serverConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}
