package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nilsimda/tennis-elo/config"
	"github.com/nilsimda/tennis-elo/models"
	"github.com/nilsimda/tennis-elo/ratings"
)

var (
	//go:embed all:assets/*
	assets embed.FS
)

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", "tennis-elo")
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	provider := ratings.NewScraper(ratings.Options{
		URLs: map[models.Circuit]string{
			models.ATP: cfg.Ratings.Circuits.ATP,
			models.WTA: cfg.Ratings.Circuits.WTA,
		},
		Timeout:    cfg.Ratings.Timeout,
		Retries:    cfg.Ratings.Retries,
		RetryDelay: cfg.Ratings.RetryDelay,
		UserAgent:  cfg.Ratings.UserAgent,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newServer(provider, logger).routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
