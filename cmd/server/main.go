/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the claims engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Seed default questionnaire templates for pairs without one
  4. Create the claims service and API handler
  5. Start server with graceful shutdown

CONFIGURATION:
  -port / PORT          HTTP server port (default: 8080)
  -db   / CLAIMS_DB     SQLite database path (default: claims.db)
                        Use ":memory:" for in-memory database
  Flags win over environment variables; .env supplies the environment
  in development.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/claims.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

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
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coverline/claims-engine/api"
	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/factory"
	"github.com/coverline/claims-engine/store/sqlite"
)

func main() {
	// .env is optional; flags below still win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("CLAIMS_DB", "claims.db"), "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed the built-in questionnaire templates so every claim option can
	// bind out of the box. Pairs that already have an active template are
	// left alone.
	if err := seedTemplates(context.Background(), store); err != nil {
		log.Fatalf("Failed to seed templates: %v", err)
	}

	// Wire service and handler. One SQLite store backs claims, policies
	// and templates.
	service := claims.NewService(store, store, store)
	handler := api.NewHandler(service)

	// Create router
	router := api.NewRouter(handler)

	// Create server
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

	log.Println("Server stopped")
}

// seedTemplates installs a default active template for every claim
// type/option pair that has none yet.
func seedTemplates(ctx context.Context, store *sqlite.Store) error {
	for _, tpl := range factory.DefaultTemplates(time.Now()) {
		if _, err := store.FindActiveTemplate(ctx, tpl.ClaimType, tpl.ClaimOption); err == nil {
			continue
		}
		if err := store.SaveTemplate(ctx, tpl); err != nil {
			return fmt.Errorf("seeding %s: %w", tpl.ID, err)
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
