/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Smylay absence tracking server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (.env supported)
  2. Initialize SQLite store
  3. Pick the notifier (SMTP if configured, log otherwise)
  4. Wire the lifecycle manager and API handler
  5. Start server with graceful shutdown

CONFIGURATION:
  PORT           HTTP server port (default: 8080)
  DB_PATH        SQLite database path (default: absence.db)
                 Use ":memory:" for an in-memory database
  SMTP_HOST      SMTP server; leave unset to log notifications instead
  SMTP_PORT      SMTP port (default: 587)
  SMTP_USERNAME  SMTP auth user (optional)
  SMTP_PASSWORD  SMTP auth password (optional)
  SMTP_FROM      Sender address on notification mail

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
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

	"github.com/sirupsen/logrus"

	"github.com/smylay/absence-engine/absence"
	"github.com/smylay/absence-engine/api"
	"github.com/smylay/absence-engine/config"
	"github.com/smylay/absence-engine/notify"
	"github.com/smylay/absence-engine/store/sqlite"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer store.Close()

	// Pick the notifier
	var notifier absence.Notifier
	if cfg.MailEnabled() {
		notifier = notify.NewMailer(notify.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
		log.WithField("host", cfg.SMTPHost).Info("notifications via SMTP")
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Info("no SMTP configured, notifications go to the log")
	}

	// Wire the lifecycle and API
	lifecycle := absence.NewLifecycle(store, notifier, absence.SystemClock{}, log)
	handler := api.NewHandler(store, lifecycle, log)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}
