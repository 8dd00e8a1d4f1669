package memory

import (
	"context"
	"testing"

	"talentsearch/internal/vectorstore"
)

func TestStore_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.EnsureSchema(ctx, 2); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	// 2D toy embeddings so ranking is obvious
	err := store.Upsert(ctx, []vectorstore.Record{
		{ID: "a#0", Vector: []float32{1, 0}, Content: "go engineer", Title: "Go Engineer"},
		{ID: "a#1", Vector: []float32{0, 1}, Content: "data analyst", Title: "Data Analyst"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Search(ctx, []float32{0.9, 0.1}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].ID != "a#0" {
		t.Fatalf("expected best candidate a#0, got %s", got[0].ID)
	}
	if got[0].Similarity < 0.9 {
		t.Fatalf("expected high similarity, got %f", got[0].Similarity)
	}
}

func TestStore_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	store := New()

	rec := vectorstore.Record{ID: "a#0", Vector: []float32{1, 0}, Content: "first"}
	if err := store.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec.Content = "second"
	if err := store.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after re-upsert, got %d", count)
	}

	got, err := store.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got[0].Content != "second" {
		t.Fatalf("expected overwritten content, got %q", got[0].Content)
	}
}

func TestStore_SearchKBounds(t *testing.T) {
	ctx := context.Background()
	store := New()
	_ = store.Upsert(ctx, []vectorstore.Record{
		{ID: "1", Vector: []float32{1, 0}},
		{ID: "2", Vector: []float32{0, 1}},
	})

	got, err := store.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected all 2 candidates when k exceeds store size, got %d", len(got))
	}

	got, err = store.Search(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("search with k=0: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates for k=0, got %d", len(got))
	}
}

func TestStore_DimensionAndReset(t *testing.T) {
	ctx := context.Background()
	store := New()

	dim, err := store.Dimension(ctx)
	if err != nil {
		t.Fatalf("dimension: %v", err)
	}
	if dim != 0 {
		t.Fatalf("expected dimension 0 for empty store, got %d", dim)
	}

	if err := store.EnsureSchema(ctx, 3); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	// the bound dimension is visible before the first write
	dim, _ = store.Dimension(ctx)
	if dim != 3 {
		t.Fatalf("expected dimension 3 while still empty, got %d", dim)
	}
	if err := store.EnsureSchema(ctx, 4); err == nil {
		t.Fatal("expected error on conflicting dimension")
	}

	_ = store.Upsert(ctx, []vectorstore.Record{{ID: "1", Vector: []float32{1, 0, 0}}})
	dim, _ = store.Dimension(ctx)
	if dim != 3 {
		t.Fatalf("expected dimension 3, got %d", dim)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Fatalf("expected empty store after reset, got %d records", count)
	}
	if err := store.EnsureSchema(ctx, 4); err != nil {
		t.Fatalf("expected new dimension accepted after reset: %v", err)
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	if got := vectorstore.Cosine(a, []float32{1, 0}); got < 0.99 {
		t.Fatalf("expected cosine of identical vectors ~1, got %f", got)
	}
	if got := vectorstore.Cosine(a, []float32{0, 1}); got > 0.01 {
		t.Fatalf("expected cosine of orthogonal vectors ~0, got %f", got)
	}
	if got := vectorstore.Cosine(a, []float32{-1, 0}); got > -0.99 {
		t.Fatalf("expected cosine of opposite vectors ~-1, got %f", got)
	}
	if got := vectorstore.Cosine(a, []float32{0, 0}); got != 0 {
		t.Fatalf("expected 0 for zero vector, got %f", got)
	}
	if got := vectorstore.Cosine(a, []float32{1}); got != 0 {
		t.Fatalf("expected 0 for mismatched lengths, got %f", got)
	}
}
