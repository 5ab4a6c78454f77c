package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/api"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.HealthResponse{Status: "healthy", Service: "voice-embedding-api"})
	})
	mux.HandleFunc("/extract-embedding", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("audio"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "no audio file provided"})
			return
		}
		json.NewEncoder(w).Encode(api.ExtractResponse{
			FileID:       7,
			Embedding:    []float32{0.1, 0.2},
			FeatureCount: 2,
		})
	})
	mux.HandleFunc("/get-embedding/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/404") {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "embedding not found"})
			return
		}
		json.NewEncoder(w).Encode(api.GetResponse{FileID: 7, Embedding: []float32{0.1, 0.2}, FeatureVersion: 1})
	})
	mux.HandleFunc("/compare-voices", func(w http.ResponseWriter, r *http.Request) {
		var req api.CompareRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Embedding1 == nil || req.Embedding2 == nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "both embedding1 and embedding2 are required"})
			return
		}
		w.Write([]byte(`{"cosine_similarity":1,"euclidean_distance":0,"match_probability":1}`))
	})
	mux.HandleFunc("/find-similar", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.FindSimilarResponse{
			Matches: []api.MatchEntry{{FileID: 7, Distance: 0.01}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientHealth(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestClientExtract(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	path := filepath.Join(t.TempDir(), "voice.wav")
	if err := os.WriteFile(path, []byte("fake wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := c.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if resp.FileID != 7 {
		t.Errorf("expected file_id 7, got %d", resp.FileID)
	}
	if resp.FeatureCount != 2 {
		t.Errorf("expected feature_count 2, got %d", resp.FeatureCount)
	}
}

func TestClientExtractMissingFile(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	_, err := c.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestClientGet(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	resp, err := c.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.FileID != 7 {
		t.Errorf("expected file_id 7, got %d", resp.FileID)
	}
}

func TestClientGetNotFound(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	_, err := c.Get(context.Background(), 404)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "embedding not found") {
		t.Errorf("expected server error surfaced, got %v", err)
	}
}

func TestClientCompare(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	result, err := c.Compare(context.Background(), []float32{1, 0}, []float32{1, 0})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.CosineSimilarity != 1 {
		t.Errorf("expected cosine 1, got %v", result.CosineSimilarity)
	}
}

func TestClientFindSimilar(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	resp, err := c.FindSimilar(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(resp.Matches))
	}
	if resp.Matches[0].FileID != 7 {
		t.Errorf("expected file_id 7, got %d", resp.Matches[0].FileID)
	}
}
