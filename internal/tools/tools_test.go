package tools_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/service"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/tools"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// mockStorage implements storage.Storage for testing
type mockStorage struct {
	embeddings map[int64]*types.Embedding
	nextID     int64
}

func newMockStorage() *mockStorage {
	return &mockStorage{embeddings: make(map[int64]*types.Embedding)}
}

func (m *mockStorage) Save(ctx context.Context, vector []float32, featureVersion int) (*types.Embedding, error) {
	m.nextID++
	emb := &types.Embedding{
		ID:             m.nextID,
		Vector:         vector,
		FeatureVersion: featureVersion,
		CreatedAt:      time.Now(),
	}
	m.embeddings[emb.ID] = emb
	return emb, nil
}

func (m *mockStorage) GetByID(ctx context.Context, id int64) (*types.Embedding, error) {
	emb, ok := m.embeddings[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return emb, nil
}

func (m *mockStorage) List(ctx context.Context, opts types.ListOpts) ([]types.Embedding, error) {
	var out []types.Embedding
	for _, emb := range m.embeddings {
		out = append(out, *emb)
	}
	return out, nil
}

func (m *mockStorage) FindSimilar(ctx context.Context, vector []float32, limit int) ([]types.Match, error) {
	var out []types.Match
	for id, emb := range m.embeddings {
		if len(out) >= limit {
			break
		}
		out = append(out, types.Match{ID: id, CreatedAt: emb.CreatedAt})
	}
	return out, nil
}

func (m *mockStorage) Close() error { return nil }

// mockExtractor implements feature.Extractor for testing
type mockExtractor struct {
	vector []float32
	err    error
}

func (m *mockExtractor) Extract(ctx context.Context, path string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func newTestHandler(store *mockStorage, ext *mockExtractor) *tools.Handler {
	return tools.NewHandler(service.New(store, ext))
}

func TestExtract_Success(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store, &mockExtractor{vector: []float32{0.1, 0.2, 0.3}})

	result, output, err := h.Extract(context.Background(), nil, tools.ExtractInput{Path: "voice.wav"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Extract returned error result: %v", result.Content)
	}
	if output.Embedding == nil {
		t.Fatal("Extract returned nil embedding")
	}
	if output.Embedding.ID != 1 {
		t.Errorf("expected id 1, got %d", output.Embedding.ID)
	}
	if len(output.Embedding.Vector) != 3 {
		t.Errorf("expected 3 features, got %d", len(output.Embedding.Vector))
	}
}

func TestExtract_MissingPath(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Extract(context.Background(), nil, tools.ExtractInput{})
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestExtract_ExtractorError(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store, &mockExtractor{err: errors.New("decode failed")})

	result, _, _ := h.Extract(context.Background(), nil, tools.ExtractInput{Path: "bad.wav"})
	if !result.IsError {
		t.Error("expected error result when extraction fails")
	}
	if len(store.embeddings) != 0 {
		t.Error("nothing should be persisted when extraction fails")
	}
}

func TestGet_Success(t *testing.T) {
	store := newMockStorage()
	saved, _ := store.Save(context.Background(), []float32{1, 2}, 1)
	h := newTestHandler(store, &mockExtractor{})

	result, output, err := h.Get(context.Background(), nil, tools.GetInput{ID: saved.ID})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Get returned error result: %v", result.Content)
	}
	if output.Embedding == nil || output.Embedding.ID != saved.ID {
		t.Errorf("expected embedding %d, got %+v", saved.ID, output.Embedding)
	}
}

func TestGet_MissingID(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Get(context.Background(), nil, tools.GetInput{})
	if !result.IsError {
		t.Error("expected error for missing id")
	}
}

func TestGet_NotFound(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Get(context.Background(), nil, tools.GetInput{ID: 999})
	if !result.IsError {
		t.Error("expected error result for unknown id")
	}
}

func TestCompare_Success(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, output, err := h.Compare(context.Background(), nil, tools.CompareInput{
		Embedding1: []float32{1, 0},
		Embedding2: []float32{1, 0},
	})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Compare returned error result: %v", result.Content)
	}
	if output.Result.CosineSimilarity < 0.999 {
		t.Errorf("expected cosine ~1, got %v", output.Result.CosineSimilarity)
	}
	if output.Result.EuclideanDistance != 0 {
		t.Errorf("expected zero distance, got %v", output.Result.EuclideanDistance)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected text content")
	}
	if !strings.Contains(text.Text, "cosine_similarity") {
		t.Errorf("unexpected result text: %q", text.Text)
	}
}

func TestCompare_MissingInput(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Compare(context.Background(), nil, tools.CompareInput{
		Embedding1: []float32{1, 0},
	})
	if !result.IsError {
		t.Error("expected error for missing embedding2")
	}
}

func TestCompare_DimensionMismatch(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Compare(context.Background(), nil, tools.CompareInput{
		Embedding1: []float32{1, 0},
		Embedding2: []float32{1, 0, 0},
	})
	if !result.IsError {
		t.Error("expected error result for mismatched dimensions")
	}
}

func TestSimilar_Success(t *testing.T) {
	store := newMockStorage()
	store.Save(context.Background(), []float32{1, 0}, 1)
	h := newTestHandler(store, &mockExtractor{})

	result, output, err := h.Similar(context.Background(), nil, tools.SimilarInput{
		Embedding: []float32{1, 0},
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("Similar returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Similar returned error result: %v", result.Content)
	}
	if len(output.Matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(output.Matches))
	}
}

func TestSimilar_MissingEmbedding(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, _, _ := h.Similar(context.Background(), nil, tools.SimilarInput{})
	if !result.IsError {
		t.Error("expected error for missing embedding")
	}
}

func TestSimilar_NoResults(t *testing.T) {
	h := newTestHandler(newMockStorage(), &mockExtractor{})

	result, output, _ := h.Similar(context.Background(), nil, tools.SimilarInput{
		Embedding: []float32{1, 0},
	})
	if result.IsError {
		t.Error("empty store should not be an error")
	}
	if len(output.Matches) != 0 {
		t.Errorf("expected 0 matches, got %d", len(output.Matches))
	}
}

func TestRegister(t *testing.T) {
	svc := service.New(newMockStorage(), &mockExtractor{})

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-server",
		Version: "0.0.1",
	}, nil)

	// Should not panic
	tools.Register(server, svc)
}
