//go:build cgo

package storage_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/storage"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

const testDim = 4

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()

	// Use temp file for test database
	f, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	f.Close()

	store, err := storage.NewSQLite(f.Name(), testDim)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vector := []float32{0.1, -0.2, 0.3, 0.4}
	saved, err := store.Save(ctx, vector, 1)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected non-zero CreatedAt")
	}

	got, err := store.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FeatureVersion != 1 {
		t.Errorf("expected feature version 1, got %d", got.FeatureVersion)
	}
	if len(got.Vector) != len(vector) {
		t.Fatalf("expected %d elements, got %d", len(vector), len(got.Vector))
	}
	for i := range vector {
		if got.Vector[i] != vector[i] {
			t.Errorf("element %d: expected %v, got %v", i, vector[i], got.Vector[i])
		}
	}
}

func TestSQLiteIDsMonotonic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 3; i++ {
		saved, err := store.Save(ctx, []float32{1, 2, 3, 4}, 1)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ID <= lastID {
			t.Errorf("expected id > %d, got %d", lastID, saved.ID)
		}
		lastID = saved.ID
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), 99999)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Save(ctx, []float32{float32(i), 0, 0, 1}, 1); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	embeddings, err := store.List(ctx, types.ListOpts{Limit: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(embeddings) != 3 {
		t.Fatalf("expected 3 results, got %d", len(embeddings))
	}
	// Newest first.
	if embeddings[0].ID < embeddings[1].ID {
		t.Error("expected descending id order")
	}
}

func TestSQLiteFindSimilar(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Save(ctx, []float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(ctx, []float32{0, 1, 0, 0}, 1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	matches, err := store.FindSimilar(ctx, []float32{0.9, 0.1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].ID != a.ID {
		t.Errorf("expected nearest id %d, got %d", a.ID, matches[0].ID)
	}
}
