/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the repayment planning server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Initialize SQLite store
  3. Pick the lender-rule cache (Redis when configured, in-memory otherwise)
  4. Create API handler with dependencies
  5. Start the plan-refresh scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (default: config.yaml)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/paydown.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  PORT, SQLITE_PATH, REDIS_ADDR, CORS_ORIGINS, REFRESH_CRON,
  HORIZON_MONTHS override the config file.

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

	"github.com/finlayjack89/PaydownPilot-sub001/api"
	"github.com/finlayjack89/PaydownPilot-sub001/config"
	"github.com/finlayjack89/PaydownPilot-sub001/enrich"
	"github.com/finlayjack89/PaydownPilot-sub001/scheduler"
	"github.com/finlayjack89/PaydownPilot-sub001/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.SQLitePath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Lender-rule cache
	var cache enrich.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache := enrich.NewRedisCache(cfg.Cache.RedisAddr)
		defer redisCache.Close()
		cache = redisCache
		log.Printf("Using Redis cache at %s", cfg.Cache.RedisAddr)
	} else {
		cache = enrich.NewMemoryCache()
	}

	// Initialize handler
	handler := api.NewHandler(store, cache)
	handler.Options.HorizonMonths = cfg.Engine.HorizonMonths

	// Plan refresh scheduler
	refresher := scheduler.New(store, handler.Options, cfg.Schedule.RefreshCron)
	if err := refresher.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer refresher.Stop()

	// Create router
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
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
