package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/storyweave/storyweave-api/internal/config"
	"github.com/storyweave/storyweave-api/internal/handler"
	"github.com/storyweave/storyweave-api/internal/middleware"
	"github.com/storyweave/storyweave-api/internal/provider"
	"github.com/storyweave/storyweave-api/internal/ratelimit"
	"github.com/storyweave/storyweave-api/internal/repository"
	"github.com/storyweave/storyweave-api/internal/service"
	"github.com/storyweave/storyweave-api/internal/upstream"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	providers, err := provider.Load(cfg.ProvidersFile, cfg.DefaultProvider)
	if err != nil {
		slog.Error("loading provider credentials failed", "error", err)
		os.Exit(1)
	}
	if providers.Len() == 0 {
		slog.Warn("no provider credentials configured — registrations will fail until keys are set")
	} else {
		slog.Info("provider credentials loaded", "providers", providers.IDs(), "default", providers.DefaultID())
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(context.Background(), db); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	limiter := ratelimit.New(cfg.RateLimitAttempts, cfg.RateLimitWindow)
	authService := service.NewAuthService(userRepo, providers, limiter, cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handler.NewAuthHandler(authService)
	providerHandler := handler.NewProviderHandler(providers)
	healthHandler := handler.NewHealthHandler(userRepo, providers, upstream.NewClient())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/db", healthHandler.HandleDBHealth)
	r.Get("/health/providers", healthHandler.HandleProvidersHealth)

	r.Get("/api/v1/providers", providerHandler.HandleListProviders)

	r.Post("/api/v1/auth/register", authHandler.HandleRegister)
	r.Post("/api/v1/auth/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)
		r.Put("/api/v1/auth/me", authHandler.HandleUpdateMe)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
