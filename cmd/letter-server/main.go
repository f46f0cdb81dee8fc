package main

import (
	"context"
	"errors"
	"fmt"
	"letter-lab/domain/event"
	"letter-lab/infrastructure/http/server"
	"letter-lab/internal"
	"letter-lab/moderation"
	"letter-lab/observability"
	"letter-lab/repositories"
	"letter-lab/runtime/workers"
	"letter-lab/services"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const debugPort = 8081

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Letter server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (stats database) always run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Stats database (BadgerDB), counters only
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	moderator, err := moderation.NewModerator(config.Words(), charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervision
	events := make(chan event.Event, config.StatsBufferSize)
	statsRepository := repositories.NewStatsRepository(db, logger)
	monitoring := observability.NewMonitoringManager(logger, config.MetricInterval)
	monitoring.WatchQueue(func() int { return len(events) }, cap(events))

	// Workers outlive the signal context so events of in-flight requests are still recorded.
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewStatsRecorder(logger, statsRepository, events),
		monitoring,
	)
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(workersCtx)
		close(supervisorDone)
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Info("Debug stats page available", "url", fmt.Sprintf("http://localhost:%d/stats", debugPort))
		internal.StartDebugServer(ctx, statsRepository, debugPort, "/stats", logger)
	}

	// 5. HTTP Server Setup
	letterService := services.NewLetterService(logger, moderator, monitoring, events, config.BaseURL, config.Limits())
	letterServer := server.NewLetterServer(logger, letterService, monitoring, config.BaseURL, config.Limits())
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           letterServer.Handler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", config.Address(), "base_url", config.BaseURL, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		stopWorkers()
		<-supervisorDone
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	// In-flight requests finish first, then the recorder drains buffered events.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}
	stopWorkers()
	<-supervisorDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	var options badger.Options
	if config.StatsFilepath == "" {
		logger.Warn("STATS_FILEPATH is empty, stats are kept in memory only")
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		options = badger.DefaultOptions(config.StatsFilepath)
	}
	options = options.WithLogger(repositories.NewBadgerLogger(logger))

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}
