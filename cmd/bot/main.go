package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mixelka/photoreport/internal/config"
	"github.com/mixelka/photoreport/internal/database"
	"github.com/mixelka/photoreport/internal/scheduler"
	"github.com/mixelka/photoreport/internal/sheets"
	"github.com/mixelka/photoreport/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting photo statistics bot")

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("failed to load time zone", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.New(cfg.DatabasePath, loc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Create report sink
	sink, err := sheets.NewClient(ctx, sheets.Config{
		SpreadsheetID:      cfg.SpreadsheetID,
		SheetName:          cfg.ReportSheetName,
		ServiceAccountFile: cfg.ServiceAccountFile,
		BatchSize:          cfg.SyncBatchSize,
	}, logger)
	if err != nil {
		logger.Error("failed to create sheets client", "error", err)
		os.Exit(1)
	}

	// Create scheduler
	sched := scheduler.New(db, sink, scheduler.Config{
		SyncInterval:       cfg.SyncInterval,
		CleanupInterval:    cfg.CleanupInterval,
		MessageTopicMaxAge: cfg.MessageTopicMaxAge,
	}, logger)

	// Create bot
	bot, err := telegram.NewBot(telegram.BotDeps{
		Config: cfg,
		DB:     db,
		Syncer: sched,
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		logger.Info("shutting down...")
		cancel()
	}()

	// Start scheduler and bot
	sched.Start(ctx)

	logger.Info("bot is running, press Ctrl+C to stop")
	bot.Start(ctx)

	// Bot returned: wait for in-flight cycles before exiting
	sched.Stop()
	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
