// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/audio"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/service"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/similarity"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

// ServiceName identifies this API in health responses.
const ServiceName = "voice-embedding-api"

// Handlers holds HTTP handler dependencies
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates new API handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg})
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

// ExtractEmbedding handles POST /extract-embedding. The upload is copied to
// a temporary file which is removed on every exit path; extraction runs
// synchronously on the request goroutine.
func (h *Handlers) ExtractEmbedding(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !audio.Extensions[ext] {
		h.respondError(w, http.StatusBadRequest, "supported formats: WAV, MP3, M4A, FLAC")
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		h.respondError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	tmp.Close()

	emb, err := h.svc.ExtractFromFile(r.Context(), tmp.Name())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, ExtractResponse{
		FileID:       emb.ID,
		Embedding:    emb.Vector,
		FeatureCount: len(emb.Vector),
	})
}

// GetEmbedding handles GET /get-embedding/{id}
func (h *Handlers) GetEmbedding(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid embedding id")
		return
	}

	emb, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, types.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "embedding not found")
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, GetResponse{
		FileID:         emb.ID,
		Embedding:      emb.Vector,
		FeatureVersion: emb.FeatureVersion,
		CreatedAt:      emb.CreatedAt,
	})
}

// CompareVoices handles POST /compare-voices
func (h *Handlers) CompareVoices(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Embedding1 == nil || req.Embedding2 == nil {
		h.respondError(w, http.StatusBadRequest, "both embedding1 and embedding2 are required")
		return
	}

	result, err := h.svc.Compare(*req.Embedding1, *req.Embedding2)
	if errors.Is(err, similarity.ErrDimensionMismatch) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// FindSimilar handles POST /find-similar
func (h *Handlers) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req FindSimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Embedding) == 0 {
		h.respondError(w, http.StatusBadRequest, "embedding is required")
		return
	}

	matches, err := h.svc.FindSimilar(r.Context(), req.Embedding, req.Limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := FindSimilarResponse{Matches: make([]MatchEntry, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchEntry{
			FileID:    m.ID,
			Distance:  m.Distance,
			CreatedAt: m.CreatedAt,
		})
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// ListEmbeddings handles GET /embeddings
func (h *Handlers) ListEmbeddings(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	embeddings, err := h.svc.List(r.Context(), types.ListOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ListResponse{
		Embeddings: make([]EmbeddingSummary, 0, len(embeddings)),
		Pagination: PaginationInfo{Limit: limit, Offset: offset, Count: len(embeddings)},
	}
	for _, emb := range embeddings {
		resp.Embeddings = append(resp.Embeddings, EmbeddingSummary{
			FileID:         emb.ID,
			FeatureCount:   len(emb.Vector),
			FeatureVersion: emb.FeatureVersion,
			CreatedAt:      emb.CreatedAt,
		})
	}
	h.respondJSON(w, http.StatusOK, resp)
}
