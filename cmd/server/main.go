/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the stay comparison server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Initialize the FX rates provider and background refresher
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: stays.db)
              Use ":memory:" for in-memory database
  -rates-url  FX rates endpoint (default: open.er-api.com USD table)
              Empty string disables rate fetching; conversions then
              pass amounts through unchanged
  -redis      Redis address for the rates cache (default: empty,
              cache in SQLite alongside the records)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the rates refresher
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/stays.db"

  # Run with a Redis rates cache
  ./server -redis="localhost:6379"

  # Run offline (no FX fetching)
  ./server -rates-url=""

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - rates/provider.go: FX rate fetching and caching
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

	"github.com/warp/stay-engine/api"
	"github.com/warp/stay-engine/rates"
	"github.com/warp/stay-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "stays.db", "SQLite database path")
	ratesURL := flag.String("rates-url", rates.DefaultURL, "FX rates endpoint (empty disables fetching)")
	redisAddr := flag.String("redis", "", "Redis address for the rates cache (empty uses SQLite)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize rates provider. A stale or unreachable endpoint never
	// blocks startup; the engine degrades to pass-through conversion.
	var provider *rates.Provider
	if *ratesURL != "" {
		var cache rates.Cache
		if *redisAddr != "" {
			cache = rates.NewRedisCache(*redisAddr)
			log.Printf("Caching FX rates in Redis at %s", *redisAddr)
		} else {
			cache = rates.NewStoreCache(store)
		}

		provider = rates.NewProvider(*ratesURL, cache)
		provider.LoadCached(context.Background())
		provider.RefreshIfStale(context.Background())

		refresher := rates.NewRefresher(provider)
		refresher.Start()
		defer refresher.Stop()
	} else {
		log.Println("FX rate fetching disabled; currency conversion is pass-through")
	}

	// Initialize handler and router
	handler := api.NewHandler(store, provider)
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
