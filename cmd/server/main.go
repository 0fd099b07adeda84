/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Leaveboard WFH server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Wire engine, service, notifier and auth
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: leaveboard.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  JWT_SECRET     HMAC secret for bearer tokens (required)
  ADMIN_EMAIL    Seed admin account email (first run only)
  ADMIN_PASSWORD Seed admin account password
  SMTP_HOST      SMTP server host
  SMTP_PORT      SMTP server port
  SMTP_USERNAME  SMTP AUTH username (optional)
  SMTP_PASSWORD  SMTP AUTH password (optional)
  SMTP_FROM      Sender address for notifications

  When SMTP_HOST is unset, notifications are logged instead of mailed.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Wait for in-flight notification sends
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
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/api"
	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/mail"
	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/store/sqlite"
	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "leaveboard.db", "SQLite database path")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Notifications: SMTP when configured, log fallback otherwise.
	smtpCfg := mail.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	var notifier wfh.Notifier
	if smtpCfg.Configured() {
		notifier = mail.NewSMTPNotifier(smtpCfg)
		log.Printf("Notifications via SMTP %s:%s", smtpCfg.Host, smtpCfg.Port)
	} else {
		notifier = wfh.LogNotifier{}
		log.Print("SMTP not configured, notifications will be logged")
	}
	dispatcher := wfh.NewDispatcher(notifier)

	// Wire domain
	engine := wfh.NewEngine(store, store, store)
	service := &wfh.Service{
		Users:      store,
		Ledger:     store,
		Engine:     engine,
		Dispatcher: dispatcher,
	}

	// First-run bootstrap: without at least one admin nobody can log in
	// or register anyone else.
	if err := seedAdmin(store); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// Wire HTTP
	auth := api.NewAuth(secret, store)
	handler := api.NewHandler(service, auth, store, store, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight notification sends finish before the store closes.
	dispatcher.Wait()

	log.Println("Server stopped")
}

// seedAdmin creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when that email is not registered yet. A no-op when the
// variables are unset or the account already exists.
func seedAdmin(store *sqlite.Store) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := wfh.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         wfh.RoleAdmin,
		WfhWeekly:    wfh.DefaultWfhWeekly,
		SickDays:     decimal.NewFromInt(wfh.DefaultLeaveDays),
		TimeOffDays:  decimal.NewFromInt(wfh.DefaultLeaveDays),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.SaveUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", email)
	return nil
}
