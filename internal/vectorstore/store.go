// Package vectorstore defines the vector store contract shared by all
// backends. A store holds chunk records keyed by chunk ID and answers
// nearest-neighbor queries by cosine similarity. All vectors in one store
// must share the same dimensionality; the ingestion pipeline resets the
// store when the embedder's dimensionality changes.
package vectorstore

import (
	"context"
	"math"
)

// Record is one chunk as persisted in the store.
type Record struct {
	ID      string
	Vector  []float32
	Content string
	Source  string
	Title   string
}

// Candidate is one raw search result before threshold filtering.
// Similarity is cosine similarity, in [-1, 1].
type Candidate struct {
	ID         string
	Content    string
	Source     string
	Title      string
	Similarity float64
}

type Store interface {
	// EnsureSchema prepares the store for vectors of the given dimension.
	EnsureSchema(ctx context.Context, dimension int) error
	// Upsert writes records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, records []Record) error
	// Search returns up to k candidates ordered by descending similarity.
	Search(ctx context.Context, vector []float32, k int) ([]Candidate, error)
	// Dimension reports the dimensionality the store is bound to, from its
	// schema or stored vectors; 0 when neither exists yet.
	Dimension(ctx context.Context) (int, error)
	// Reset drops all records and any dimension-bound schema.
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
