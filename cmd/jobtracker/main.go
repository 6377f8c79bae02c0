package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/api"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/config"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/cooldown"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/events"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/gemini"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("jobtracker starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Gemini client
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	llm := gemini.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	slog.Info("gemini client ready", "model", cfg.GeminiModel)

	ext := extract.New(llm, slog.Default())
	fetcher := extract.NewFetcher(time.Duration(cfg.FetchTimeout) * time.Second)

	// Redis cooldown (optional; without it every request goes to the model)
	var gate api.Gate
	if cfg.RedisURL != "" {
		rdb, err := cooldown.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		gate = cooldown.NewGate(rdb)
		slog.Info("redis cooldown gate ready")
	} else {
		slog.Warn("redis not configured — rate-limit cooldown disabled")
	}

	// NATS events (optional)
	var pub *events.Publisher
	if cfg.NatsURL != "" {
		pub, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — extraction events disabled")
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, api.Deps{
		Store:     db,
		Extractor: ext,
		Fetcher:   fetcher,
		Gate:      gate,
		Events:    pub,
		Logger:    slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("jobtracker ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("jobtracker stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
