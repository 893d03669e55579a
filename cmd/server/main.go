/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the receivables engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (best effort) and process environment config
  2. Initialize SQLite store
  3. Load rate book and optional ledger data file
  4. Configure HTTP router and report scheduler
  5. Start server with graceful shutdown

CONFIGURATION (environment, prefix RECEIVABLES_):
  RECEIVABLES_PORT          HTTP server port (default: 8080)
  RECEIVABLES_DB_PATH       SQLite database path (default: receivables.db)
                            Use ":memory:" for an in-memory database
  RECEIVABLES_DATA_FILE     Ledger JSON to ingest on boot (optional)
  RECEIVABLES_RATE_BOOK     Rate book JSON path (optional, default 12%)
  RECEIVABLES_CRON          Report recomputation schedule (default: hourly)
  RECEIVABLES_LOG_LEVEL     zerolog level (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close the database
  4. Exit

EXAMPLES:
  # Run against a data export
  RECEIVABLES_DATA_FILE=./data/ledger_data.json ./server

  # Run with in-memory database
  RECEIVABLES_DB_PATH=":memory:" ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Scheduled recomputation
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/petroledger/receivables-engine/api"
	"github.com/petroledger/receivables-engine/factory"
	"github.com/petroledger/receivables-engine/ingest"
	"github.com/petroledger/receivables-engine/store/sqlite"
)

type config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"receivables.db"`
	DataFile string `envconfig:"DATA_FILE"`
	RateBook string `envconfig:"RATE_BOOK"`
	Cron     string `envconfig:"CRON" default:"0 * * * *"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("receivables", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// Store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Rate book
	rates := factory.DefaultRateBook()
	if cfg.RateBook != "" {
		data, err := os.ReadFile(cfg.RateBook)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.RateBook).Msg("failed to read rate book")
		}
		if rates, err = factory.ParseRateBook(data); err != nil {
			log.Fatal().Err(err).Msg("invalid rate book")
		}
	}

	// Optional ledger data ingest
	if cfg.DataFile != "" {
		n, err := ingest.LoadFile(context.Background(), cfg.DataFile, store)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DataFile).Msg("failed to load ledger data")
		}
		log.Info().Int("customers", n).Str("path", cfg.DataFile).Msg("ledger data loaded")
	}

	// HTTP
	handler := api.NewHandler(store, rates, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Scheduler
	scheduler := api.NewReportScheduler(store, rates, log)
	if err := scheduler.Start(cfg.Cron); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Cron).Msg("invalid cron schedule")
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	scheduler.Stop()

	log.Info().Msg("server stopped")
}
