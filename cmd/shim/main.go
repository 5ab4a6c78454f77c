// cmd/shim/main.go
// Command shim runs a stdio MCP server that proxies every tool call to a
// remote voice-embedding API instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/client"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/shim"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	apiURL := flag.String("api-url", "http://localhost:8080", "Base URL of the voice-embedding API")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ve-shim %s\n", version)
		return
	}

	c := client.New(*apiURL)

	// Ping the remote API so a bad URL is reported at startup; tool calls
	// still work if it only becomes reachable later.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := c.Health(pingCtx); err != nil {
		log.Printf("Warning: API at %s not reachable: %v", *apiURL, err)
	}
	pingCancel()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "voice-embedding-shim",
		Version: version,
	}, nil)

	shim.Register(server, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Starting voice-embedding shim (API: %s)...", *apiURL)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
