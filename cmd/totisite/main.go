// Package main is the entry point for the totisite API server.
// It loads configuration, wires the upstream clients, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"totisite/internal/assistant"
	"totisite/internal/avatar"
	"totisite/internal/cache"
	"totisite/internal/chatlog"
	"totisite/internal/config"
	"totisite/internal/database"
	"totisite/internal/gateway"
	"totisite/internal/handlers"
	"totisite/internal/notify"
	"totisite/internal/postgrest"
	"totisite/internal/router"
	"totisite/internal/token"
)

func main() {
	// Structured logger. Debug level in development, info in production.
	level := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site", cfg.SiteID,
	)

	// Admin token service. A missing password fails closed at verify time.
	tokens := token.NewService(cfg.AdminSecret)
	if !tokens.Configured() {
		slog.Warn("ADMIN_PASSWORD not set — admin login disabled")
	}

	// PostgREST client for the TotiRoom backend (admin reads/writes).
	rest := postgrest.New(cfg.RestURL(), cfg.RestKey())
	if !rest.Configured() {
		slog.Warn("no TotiRoom API key set — data endpoints will return errors")
	}

	// Optional Valkey stats cache.
	var statsCache gateway.StatsCache
	if cfg.HasValkey() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		statsCache = cache.NewStatsCache(valkeyClient, cache.DefaultStatsTTL)
	}

	gw := gateway.New(rest, cfg.SiteID, statsCache)

	// Chat transcript store: direct Postgres when a DSN is configured,
	// otherwise through PostgREST.
	var transcript chatlog.Store
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		transcript = chatlog.NewPostgres(db)
	} else {
		transcript = chatlog.NewRest(postgrest.New(cfg.RestURL(), cfg.AnonKey))
	}

	// Assistant providers in failover order: the hosted TotiRoom chat
	// function first, then the direct Anthropic path. With neither
	// configured the deterministic fallback responder answers.
	var providers []assistant.Provider
	if cfg.AnonKey != "" {
		providers = append(providers, assistant.NewHosted(cfg.FunctionsURL(), cfg.AnonKey))
	}
	if cfg.AnthropicKey != "" {
		providers = append(providers, assistant.NewClaude(cfg.AnthropicKey, cfg.AnthropicModel))
	}
	assist := assistant.NewService(providers...)
	slog.Info("assistant initialized", "providers", len(providers))

	// Video-avatar sessions through the TotiRoom edge function.
	avatars := avatar.New(cfg.FunctionsURL(), cfg.AnonKey)

	// Booking notification email, best-effort.
	var mailer notify.Mailer
	if m := notify.New(cfg.ResendKey, cfg.NotifyFrom, cfg.NotifyTo); m != nil {
		mailer = m
	} else {
		slog.Warn("resend not configured — booking notifications disabled")
	}

	// Handler groups and routes.
	authHandlers := handlers.NewAuth(tokens, cfg.TOTPSecret, cfg.SiteID)
	adminHandlers := handlers.NewAdmin(gw)
	visitorHandlers := handlers.NewVisitor(assist, avatars, rest, transcript, mailer,
		cfg.FunctionsURL(), cfg.AnonKey)

	r := router.New(tokens, authHandlers, adminHandlers, visitorHandlers)

	// WriteTimeout must accommodate chat endpoints that wait on LLM
	// responses (typically 10-30s).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
