/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the LeaveDesk server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment + flags)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Wire request service, rollover and HTTP handler
  5. Start server with graceful shutdown

CONFIGURATION:
  See config/config.go for the full variable list. Highlights:
    PORT=8080
    DB_PATH=leavedesk.db        (":memory:" for in-memory)
    LOG_LEVEL=info
    EXCLUDE_PUBLIC_HOLIDAYS=true
    ROLLOVER_CRON="0 2 1 1 *"   (02:00 on Jan 1; empty disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the rollover scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/leavedesk/api"
	"github.com/warp/leavedesk/config"
	"github.com/warp/leavedesk/leave"
	"github.com/warp/leavedesk/rollover"
	"github.com/warp/leavedesk/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags override environment for the two most common knobs.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logOut io.Writer = os.Stdout
	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", cfg.LogFilePath, err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = io.MultiWriter(os.Stdout, f)
	}
	log := zerolog.New(logOut).Level(level).With().Timestamp().Logger()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Request service
	svc := leave.NewRequestService(store)
	if cfg.ExcludeHolidays {
		svc.Calendar = &storeCalendar{store: store, region: cfg.HolidayRegion}
	}

	// Rollover
	roller := rollover.NewRoller(store, log, uuid.NewString)
	if cfg.RolloverCron != "" {
		scheduler := rollover.NewScheduler(roller)
		if err := scheduler.Start(cfg.RolloverCron); err != nil {
			log.Fatal().Err(err).Msg("failed to start rollover scheduler")
		}
		defer scheduler.Stop()
	}

	// HTTP layer
	handler := api.NewHandler(store, svc, roller, log)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// storeCalendar answers holiday lookups from the holidays table so
// newly added holidays take effect without a restart.
type storeCalendar struct {
	store  leave.Store
	region string
}

func (c *storeCalendar) IsHoliday(d leave.Date) bool {
	holidays, err := c.store.ListHolidays(context.Background(), c.region, d.Year())
	if err != nil {
		return false
	}
	return leave.NewHolidaySet(holidays).IsHoliday(d)
}
