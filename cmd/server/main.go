package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewaller/leadloop/internal"
	"github.com/ewaller/leadloop/internal/ai"
	"github.com/ewaller/leadloop/internal/ai/mock"
	"github.com/ewaller/leadloop/internal/ai/openai"
	"github.com/ewaller/leadloop/internal/handler"
	"github.com/ewaller/leadloop/internal/metrics"
	"github.com/ewaller/leadloop/internal/middleware"
	"github.com/ewaller/leadloop/internal/repository"
	"github.com/ewaller/leadloop/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize AI provider
	var provider ai.Provider
	switch cfg.AIProvider {
	case "openai":
		provider, err = openai.New(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			ProviderConfig: ai.ProviderConfig{
				MaxRetries:     cfg.AIMaxRetries,
				RetryBaseDelay: cfg.AIRetryBaseDelay,
				RequestTimeout: cfg.AIRequestTimeout,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("ai provider initialization failed: %w", err)
		}
	default:
		provider = mock.New(logger)
	}
	logger.Info("AI provider ready", "provider", cfg.AIProvider)

	// Initialize services
	userService := service.NewUserService(repo, logger)
	usageService := service.NewUsageService(repo, logger)
	leadService := service.NewLeadService(repo, usageService, logger)
	reminderService := service.NewReminderService(repo, logger)
	generationService := service.NewGenerationService(repo, provider, usageService, cfg.AIRequestTimeout, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(userService, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger, isSecure)
	usageHandler := handler.NewUsageHandler(usageService, logger)
	leadHandler := handler.NewLeadHandler(leadService, logger)
	reminderHandler := handler.NewReminderHandler(reminderService, logger)
	aiHandler := handler.NewAIHandler(generationService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Auth routes (public - no auth required)
	authHandler.RegisterRoutes(mux)

	// Protected API routes
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)
	usageHandler.RegisterRoutes(mux, requireUser)
	leadHandler.RegisterRoutes(mux, requireUser)
	reminderHandler.RegisterRoutes(mux, requireUser)
	aiHandler.RegisterRoutes(mux, requireUser)

	// Outermost middleware: metrics, then request logging
	root := metrics.Middleware(loggingMw.Handler(mux))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
