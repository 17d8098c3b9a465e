package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/audit"
	"github.com/hireside/proctor-gateway/internal/config"
	"github.com/hireside/proctor-gateway/internal/database"
	"github.com/hireside/proctor-gateway/internal/handler"
	"github.com/hireside/proctor-gateway/internal/logger"
	"github.com/hireside/proctor-gateway/internal/platform"
	"github.com/hireside/proctor-gateway/internal/router"
	"github.com/hireside/proctor-gateway/internal/session"
	"github.com/hireside/proctor-gateway/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("platform", cfg.PlatformBaseURL).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Proctor Gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Candidate Identity ────────────────────────────────────────────
	claims := &platform.Claims{}
	if cfg.AccessToken != "" {
		parsed, err := platform.ParseClaims(cfg.AccessToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid platform access token")
		}
		claims = parsed
		log.Info().Str("application_id", claims.ApplicationID).Msg("Candidate identity loaded")
	} else {
		log.Warn().Msg("No platform access token configured; running unauthenticated")
	}

	// ─── Platform Client ───────────────────────────────────────────────
	client := platform.NewClient(cfg.PlatformBaseURL, cfg.AccessToken, cfg.RequestTimeout, log)

	// ─── Violation Journal (optional) ──────────────────────────────────
	journalCtx, journalCancel := context.WithCancel(context.Background())
	defer journalCancel()

	var sessionOpts []session.Option
	notifier := handler.NewNotifier(log)
	sessionOpts = append(sessionOpts,
		session.WithPresenter(notifier),
		session.WithScreenLock(notifier),
	)

	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		journal := audit.NewRedisJournal(rdb, log)
		go journal.Start(journalCtx)
		sessionOpts = append(sessionOpts, session.WithViolationSink(journal))
	}

	// ─── Session Manager ───────────────────────────────────────────────
	manager := session.NewManager(client, log, sessionOpts...)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Assessment: handler.NewAssessmentHandler(manager, client, claims, cfg),
		Interview:  handler.NewInterviewHandler(client, claims, cfg, log),
		WS:         handler.NewWSHandler(manager, notifier, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the journal and let its buffer drain.
	journalCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
