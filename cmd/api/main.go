// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/api"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/feature"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/service"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/storage"
)

func main() {
	// Server flags
	addr := flag.String("addr", ":8080", "Server address")

	// Storage flags
	storageDriver := flag.String("storage-driver", "sqlite", "Storage driver: sqlite, postgres")
	dbPath := flag.String("db-path", "embeddings.db", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")

	// Migrate flag
	migrateOnly := flag.Bool("migrate", false, "Run schema initialization and exit")

	// Rate limiting flags
	rateLimit := flag.Int("rate-limit", 100, "Requests per minute per IP (0 to disable)")

	// CORS flags
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins (empty to disable)")

	// Request timeout; extraction is CPU-bound and runs on the request
	// goroutine, so this also bounds extraction time.
	timeout := flag.Duration("request-timeout", 60*time.Second, "Per-request timeout")

	flag.Parse()

	ctx := context.Background()

	cfg := storage.Config{
		Driver:      *storageDriver,
		SQLitePath:  *dbPath,
		PostgresDSN: *postgresDSN,
		Dimension:   feature.Dimension,
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	if *migrateOnly {
		log.Println("Schema initialized")
		return
	}

	svc := service.New(store, feature.NewPipeline())
	handlers := api.NewHandlers(svc)

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(*timeout))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)

	if *rateLimit > 0 {
		limiter := api.NewRateLimiter(*rateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		r.Use(api.CORSMiddleware(origins))
	}

	// Routes
	r.Get("/health", handlers.Health)
	r.Post("/extract-embedding", handlers.ExtractEmbedding)
	r.Get("/get-embedding/{id}", handlers.GetEmbedding)
	r.Post("/compare-voices", handlers.CompareVoices)
	r.Post("/find-similar", handlers.FindSimilar)
	r.Get("/embeddings", handlers.ListEmbeddings)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: *timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}

		close(done)
	}()

	log.Printf("Starting API server on %s", *addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	fmt.Println("Server stopped")
}
