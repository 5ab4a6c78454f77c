// cmd/server/main.go
// Command server runs the voice-embedding MCP server over stdio against a
// local store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/feature"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/service"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/storage"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/tools"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	// Storage flags
	storageDriver := flag.String("storage-driver", "sqlite", "Storage driver: sqlite, postgres")
	dbPath := flag.String("db-path", "embeddings.db", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")

	// CLI mode flags
	listFlag := flag.Bool("list", false, "List recent embeddings (CLI mode)")
	limitFlag := flag.Int("limit", 5, "Limit for list operation")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("ve-server %s\n", version)
		return
	}

	ctx := context.Background()

	cfg := storage.Config{
		Driver:      *storageDriver,
		SQLitePath:  *dbPath,
		PostgresDSN: *postgresDSN,
		Dimension:   feature.Dimension,
	}

	// CLI mode - list embeddings
	if *listFlag {
		if err := runList(ctx, cfg, *limitFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	svc := service.New(store, feature.NewPipeline())

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "voice-embedding-api",
		Version: version,
	}, nil)

	tools.Register(server, svc)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting voice-embedding MCP server...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runList(ctx context.Context, cfg storage.Config, limit int) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	embeddings, err := store.List(ctx, types.ListOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list embeddings: %w", err)
	}

	for _, emb := range embeddings {
		fmt.Printf("[%d] %d features (v%d) %s\n",
			emb.ID, len(emb.Vector), emb.FeatureVersion, emb.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
