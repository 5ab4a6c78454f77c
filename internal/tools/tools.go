// internal/tools/tools.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/service"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/similarity"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// Handler holds dependencies for tool handlers
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new tool handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ExtractInput defines the input schema for ve_extract
type ExtractInput struct {
	Path string `json:"path" jsonschema:"required" jsonschema_description:"Path to a local audio file (.wav, .mp3, .m4a, .flac)"`
}

// ExtractOutput defines the output schema for ve_extract
type ExtractOutput struct {
	Embedding *types.Embedding `json:"embedding"`
}

// GetInput defines the input schema for ve_get
type GetInput struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"ID of the stored embedding"`
}

// GetOutput defines the output schema for ve_get
type GetOutput struct {
	Embedding *types.Embedding `json:"embedding"`
}

// CompareInput defines the input schema for ve_compare
type CompareInput struct {
	Embedding1 []float32 `json:"embedding1" jsonschema:"required" jsonschema_description:"First embedding vector"`
	Embedding2 []float32 `json:"embedding2" jsonschema:"required" jsonschema_description:"Second embedding vector"`
}

// CompareOutput defines the output schema for ve_compare
type CompareOutput struct {
	Result similarity.Result `json:"result"`
}

// SimilarInput defines the input schema for ve_similar
type SimilarInput struct {
	Embedding []float32 `json:"embedding" jsonschema:"required" jsonschema_description:"Query embedding vector"`
	Limit     int       `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default: 5)"`
}

// SimilarOutput defines the output schema for ve_similar
type SimilarOutput struct {
	Matches []types.Match `json:"matches"`
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

// Register adds all voice-embedding tools to the MCP server
func Register(server *mcp.Server, svc *service.Service) {
	h := NewHandler(svc)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_extract",
		Description: "Extract and store the acoustic embedding of a local audio file",
	}, h.Extract)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_get",
		Description: "Fetch a stored embedding by id",
	}, h.Get)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_compare",
		Description: "Compare two embedding vectors (cosine similarity, Euclidean distance)",
	}, h.Compare)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ve_similar",
		Description: "Find stored embeddings nearest to a query vector",
	}, h.Similar)
}

func (h *Handler) Extract(ctx context.Context, req *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), ExtractOutput{}, nil
	}

	emb, err := h.svc.ExtractFromFile(ctx, input.Path)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to extract embedding: %v", err)), ExtractOutput{}, nil
	}

	return textResult(fmt.Sprintf("Stored embedding %d with %d features.", emb.ID, len(emb.Vector))), ExtractOutput{Embedding: emb}, nil
}

func (h *Handler) Get(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetOutput, error) {
	if input.ID == 0 {
		return errorResult("id is required"), GetOutput{}, nil
	}

	emb, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to get embedding: %v", err)), GetOutput{}, nil
	}

	result, err := json.MarshalIndent(emb, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), GetOutput{}, nil
	}
	return textResult(string(result)), GetOutput{Embedding: emb}, nil
}

func (h *Handler) Compare(ctx context.Context, req *mcp.CallToolRequest, input CompareInput) (*mcp.CallToolResult, CompareOutput, error) {
	if len(input.Embedding1) == 0 || len(input.Embedding2) == 0 {
		return errorResult("both embedding1 and embedding2 are required"), CompareOutput{}, nil
	}

	result, err := h.svc.Compare(input.Embedding1, input.Embedding2)
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

	matches, err := h.svc.FindSimilar(ctx, input.Embedding, input.Limit)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to search: %v", err)), SimilarOutput{}, nil
	}

	if len(matches) == 0 {
		return textResult("No stored embeddings found."), SimilarOutput{Matches: []types.Match{}}, nil
	}

	result, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), SimilarOutput{}, nil
	}
	return textResult(string(result)), SimilarOutput{Matches: matches}, nil
}
