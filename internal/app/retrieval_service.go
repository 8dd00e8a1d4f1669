package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"talentsearch/internal/ai"
	"talentsearch/internal/model"
	"talentsearch/internal/vectorstore"
)

const defaultTopK = 5

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmbedding and ErrStore let callers distinguish "retrieval could not
	// execute" from an empty (but successful) result.
	ErrEmbedding = errors.New("embedding provider failed")
	ErrStore     = errors.New("vector store unavailable")
)

// RetrievalService is the retrieval core: embed the query, ask the store
// for the k nearest chunks, normalize scores to [0, 1] and drop everything
// below the relevance floor. The store is read-only here.
type RetrievalService struct {
	embedder ai.Embedder
	store    vectorstore.Store
	floor    float64
	topK     int
}

func NewRetrievalService(embedder ai.Embedder, store vectorstore.Store, floor float64, topK int) *RetrievalService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		floor:    floor,
		topK:     topK,
	}
}

// Retrieve returns above-floor matches for the query, sorted by descending
// score; ties keep the store's return order. An empty result is not an
// error. Scores are cosine similarity clamped to [0, 1], rounded to four
// decimals.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]model.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	if k <= 0 {
		k = s.topK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	candidates, err := s.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	matches := make([]model.Match, 0, len(candidates))
	for _, c := range candidates {
		score := normalizeScore(c.Similarity)
		if score < s.floor {
			continue
		}
		matches = append(matches, model.Match{
			ID:      c.ID,
			Title:   c.Title,
			Score:   score,
			Content: c.Content,
			Source:  c.Source,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// normalizeScore maps cosine similarity onto [0, 1]. Negative similarities
// clamp to 0 and thus always fall below any positive relevance floor.
func normalizeScore(similarity float64) float64 {
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return math.Round(similarity*10000) / 10000
}
