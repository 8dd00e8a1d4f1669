package app

import (
	"context"
	"errors"
	"testing"

	"talentsearch/internal/vectorstore"
	"talentsearch/internal/vectorstore/memory"
)

// fakeEmbedder maps known texts to fixed vectors, so similarity scores in
// tests are fully predictable. Unknown texts embed to fallback.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// failingStore errors on every search.
type failingStore struct {
	vectorstore.Store
}

func (failingStore) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	return nil, errors.New("connection refused")
}

func seededStore(t *testing.T) vectorstore.Store {
	t.Helper()
	store := memory.New()
	err := store.Upsert(context.Background(), []vectorstore.Record{
		{ID: "jobs.csv#0", Vector: []float32{1, 0, 0}, Title: "Data Scientist", Content: "predictive modeling and statistics"},
		{ID: "jobs.csv#1", Vector: []float32{0.6, 0.8, 0}, Title: "ML Engineer", Content: "model deployment pipelines"},
		{ID: "jobs.csv#2", Vector: []float32{0, 0, 1}, Title: "Office Manager", Content: "scheduling and supplies"},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestRetrieve_RanksByDescendingScore(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"who has predictive modeling experience": {1, 0, 0},
	}}
	svc := NewRetrievalService(embedder, seededStore(t), 0.3, 5)

	matches, err := svc.Retrieve(context.Background(), "who has predictive modeling experience", 5)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	// Office Manager is orthogonal to the query and falls below the floor.
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Title != "Data Scientist" || matches[1].Title != "ML Engineer" {
		t.Fatalf("unexpected order: %q then %q", matches[0].Title, matches[1].Title)
	}
	if matches[0].Score != 1 {
		t.Fatalf("expected exact match score 1, got %v", matches[0].Score)
	}
	if matches[1].Score != 0.6 {
		t.Fatalf("expected second score 0.6, got %v", matches[1].Score)
	}
}

func TestRetrieve_FloorDropsWeakMatches(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{0, 0, 1}}
	svc := NewRetrievalService(embedder, seededStore(t), 0.3, 5)

	// The query aligns only with the Office Manager chunk; the other two
	// score 0 and must not appear.
	matches, err := svc.Retrieve(context.Background(), "who orders the office supplies", 5)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Title != "Office Manager" {
		t.Fatalf("expected Office Manager, got %q", matches[0].Title)
	}
}

func TestRetrieve_NoMatchesIsNotAnError(t *testing.T) {
	// Opposite vector: similarity -1 clamps to score 0, below any floor.
	embedder := &fakeEmbedder{fallback: []float32{-1, 0, 0}}
	store := memory.New()
	_ = store.Upsert(context.Background(), []vectorstore.Record{
		{ID: "1", Vector: []float32{1, 0, 0}, Title: "Data Scientist"},
	})
	svc := NewRetrievalService(embedder, store, 0.3, 5)

	matches, err := svc.Retrieve(context.Background(), "completely unrelated nonsense", 5)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(&fakeEmbedder{}, memory.New(), 0.3, 5)
	if _, err := svc.Retrieve(context.Background(), "   ", 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrieve_KDefaultsAndBounds(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(embedder, seededStore(t), 0, 2)

	// k <= 0 falls back to the configured top-k of 2.
	matches, err := svc.Retrieve(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected configured top-k of 2, got %d", len(matches))
	}

	// k larger than the number of qualifying chunks returns them all.
	matches, err = svc.Retrieve(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches with floor 0, got %d", len(matches))
	}
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("api quota exceeded")}
	svc := NewRetrievalService(embedder, memory.New(), 0.3, 5)

	_, err := svc.Retrieve(context.Background(), "any query", 5)
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestRetrieve_StoreFailure(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(embedder, failingStore{}, 0.3, 5)

	_, err := svc.Retrieve(context.Background(), "any query", 5)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestNormalizeScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.29996, 0.3},
		{0.123456, 0.1235},
		{1, 1},
		{1.0000001, 1},
	}
	for _, c := range cases {
		if got := normalizeScore(c.in); got != c.want {
			t.Fatalf("normalizeScore(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
