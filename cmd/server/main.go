package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/novagadgets/novadesk/internal/assistant"
	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/llm"
	"github.com/novagadgets/novadesk/internal/observability"
	"github.com/novagadgets/novadesk/internal/resilience"
	"github.com/novagadgets/novadesk/internal/server"
	"github.com/novagadgets/novadesk/internal/storage"
	"github.com/novagadgets/novadesk/internal/tramites"
	"github.com/novagadgets/novadesk/internal/webchat"
	"github.com/novagadgets/novadesk/internal/whatsapp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("gemini_model", cfg.GeminiModel).
		Bool("gemini_configured", cfg.GeminiConfigured()).
		Bool("twilio_configured", cfg.TwilioConfigured()).
		Str("db_driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("NovaDesk starting")

	if !cfg.GeminiConfigured() {
		logger.Warn().Msg("GEMINI_API_KEY not set, replies come from demo mode")
	}
	if cfg.AdminAPIKey == "" {
		logger.Warn().Msg("ADMIN_API_KEY not set, /api/whatsapp/send is unprotected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database. The chatbot keeps working without it; only the tramites API depends on it.
	db, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Database unavailable, tramites API disabled")
		db = nil
	}

	// Generative provider. The breaker guards the configured key only.
	cb := resilience.NewCircuitBreaker("gemini",
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second)
	observability.UpdateCircuitBreakerState(cb.Name(), int(cb.GetState()))

	factory := llm.NewGeminiFactory(cfg, cb)
	var provider llm.TextProvider
	if cfg.GeminiConfigured() {
		provider, err = factory(ctx, cfg.GeminiAPIKey)
		if err != nil {
			// The orchestrator builds the client on the first request instead
			logger.Error().Err(err).Msg("Failed to create Gemini client")
			provider = nil
		}
	}

	orch := assistant.NewOrchestrator(assistant.Options{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Provider: provider,
		Factory:  factory,
		Rand:     assistant.NewRandSource(uint64(time.Now().UnixNano())),
		Logger:   logger,
	})

	sender := whatsapp.NewTwilioSender(cfg, logger)

	srv := &server.Server{
		Config:   cfg,
		WhatsApp: whatsapp.NewHandler(cfg, orch, sender, logger),
		Chat:     webchat.NewHandler(orch, logger),
		ReadyChecks: []observability.DependencyCheck{
			{Name: "database", Check: storage.PingCheck(db)},
			{Name: "gemini", Check: configuredCheck(cfg.GeminiConfigured()), Optional: true},
			{Name: "gemini_circuit", Check: cb.HealthCheck, Optional: true},
			{Name: "twilio", Check: configuredCheck(cfg.TwilioConfigured()), Optional: true},
		},
		Diagnostics: observability.Diagnostics{
			Twilio:   cfg.TwilioConfigured(),
			Gemini:   cfg.GeminiConfigured(),
			Database: db != nil,
		},
		Logger: logger,
	}
	if db != nil {
		srv.Tramites = tramites.NewHandler(tramites.NewStore(db))
	}

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.GeminiTimeout)*time.Second + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("webhook", fmt.Sprintf("http://localhost:%s/api/whatsapp/webhook", cfg.Port)).
			Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := orch.Close(); err != nil {
		logger.Warn().Err(err).Msg("Error closing provider clients")
	}
	closeDB(db, logger)

	logger.Info().Msg("Server exited gracefully")
}

func configuredCheck(ok bool) observability.HealthCheckFunc {
	return func(ctx context.Context) (bool, error) {
		if !ok {
			return false, errors.New("not configured")
		}
		return true, nil
	}
}

func closeDB(db *sql.DB, logger zerolog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn().Err(err).Msg("Error closing database")
	}
}
