// internal/shim/tools.go
// Package shim exposes the MCP tool surface against a remote API instance
// instead of a local store.
package shim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/api"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/similarity"
)

// APIClient is the remote-API surface the shim needs. *client.Client
// satisfies it.
type APIClient interface {
	Extract(ctx context.Context, path string) (*api.ExtractResponse, error)
	Get(ctx context.Context, id int64) (*api.GetResponse, error)
	Compare(ctx context.Context, a, b []float32) (*similarity.Result, error)
	FindSimilar(ctx context.Context, vector []float32, limit int) (*api.FindSimilarResponse, error)
}

// Handler holds shim dependencies
type Handler struct {
	client APIClient
}

// NewHandler creates a new shim handler
func NewHandler(c APIClient) *Handler {
	return &Handler{client: c}
}

// Input/Output types (same surface as the tools package)
type ExtractInput struct {
	Path string `json:"path" jsonschema:"required"`
}

type ExtractOutput struct {
	Result *api.ExtractResponse `json:"result"`
}

type GetInput struct {
	ID int64 `json:"id" jsonschema:"required"`
}

type GetOutput struct {
	Result *api.GetResponse `json:"result"`
}

type CompareInput struct {
	Embedding1 []float32 `json:"embedding1" jsonschema:"required"`
	Embedding2 []float32 `json:"embedding2" jsonschema:"required"`
}

type CompareOutput struct {
	Result *similarity.Result `json:"result"`
}

type SimilarInput struct {
	Embedding []float32 `json:"embedding" jsonschema:"required"`
	Limit     int       `json:"limit,omitempty"`
}

type SimilarOutput struct {
	Result *api.FindSimilarResponse `json:"result"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// Register adds the proxied voice-embedding tools to the MCP server
func Register(server *mcp.Server, c APIClient) {
	h := NewHandler(c)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_extract",
		Description: "Extract and store the acoustic embedding of a local audio file (uploads to the remote API)",
	}, h.Extract)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_get",
		Description: "Fetch a stored embedding by id from the remote API",
	}, h.Get)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_compare",
		Description: "Compare two embedding vectors via the remote API",
	}, h.Compare)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_similar",
		Description: "Find stored embeddings nearest to a query vector via the remote API",
	}, h.Similar)
}

func (h *Handler) Extract(ctx context.Context, req *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), ExtractOutput{}, nil
	}

	result, err := h.client.Extract(ctx, input.Path)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to extract embedding: %v", err)), ExtractOutput{}, nil
	}

	return textResult(fmt.Sprintf("Stored embedding %d with %d features.", result.FileID, result.FeatureCount)), ExtractOutput{Result: result}, nil
}

func (h *Handler) Get(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetOutput, error) {
	if input.ID == 0 {
		return errorResult("id is required"), GetOutput{}, nil
	}

	result, err := h.client.Get(ctx, input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to get embedding: %v", err)), GetOutput{}, nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), GetOutput{}, nil
	}
	return textResult(string(out)), GetOutput{Result: result}, nil
}

func (h *Handler) Compare(ctx context.Context, req *mcp.CallToolRequest, input CompareInput) (*mcp.CallToolResult, CompareOutput, error) {
	if len(input.Embedding1) == 0 || len(input.Embedding2) == 0 {
		return errorResult("both embedding1 and embedding2 are required"), CompareOutput{}, nil
	}

	result, err := h.client.Compare(ctx, input.Embedding1, input.Embedding2)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to compare: %v", err)), CompareOutput{}, nil
	}

	return textResult(fmt.Sprintf(
		"cosine_similarity=%.6f euclidean_distance=%.6f match_probability=%.6f",
		result.CosineSimilarity, result.EuclideanDistance, result.MatchProbability,
	)), CompareOutput{Result: result}, nil
}

func (h *Handler) Similar(ctx context.Context, req *mcp.CallToolRequest, input SimilarInput) (*mcp.CallToolResult, SimilarOutput, error) {
	if len(input.Embedding) == 0 {
		return errorResult("embedding is required"), SimilarOutput{}, nil
	}

	result, err := h.client.FindSimilar(ctx, input.Embedding, input.Limit)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to search: %v", err)), SimilarOutput{}, nil
	}

	out, err := json.MarshalIndent(result.Matches, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), SimilarOutput{}, nil
	}
	return textResult(string(out)), SimilarOutput{Result: result}, nil
}
