package storage_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/storage"
	"github.com/Kingvic300/Voice-Embedding-Api/internal/types"
)

const pgTestDim = 4

// newPostgresStore connects to the database named by TEST_POSTGRES_DSN,
// skipping the test when it is unset, and clears any data left by earlier
// runs.
func newPostgresStore(t *testing.T) *storage.Postgres {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping Postgres tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect for cleanup: %v", err)
	}
	// The index table references embeddings, so it goes first.
	pool.Exec(ctx, "DELETE FROM embedding_index")
	pool.Exec(ctx, "DELETE FROM embeddings")
	pool.Close()

	store, err := storage.NewPostgres(ctx, dsn, pgTestDim)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresSaveAndGet(t *testing.T) {
	store := newPostgresStore(t)
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

func TestPostgresGetMissing(t *testing.T) {
	store := newPostgresStore(t)

	_, err := store.GetByID(context.Background(), 99999)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresList(t *testing.T) {
	store := newPostgresStore(t)
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

func TestPostgresFindSimilar(t *testing.T) {
	store := newPostgresStore(t)
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
