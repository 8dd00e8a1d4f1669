// Package memory implements an in-process vector store. It backs tests and
// throwaway runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"talentsearch/internal/vectorstore"
)

type Store struct {
	mu        sync.RWMutex
	dimension int
	records   []vectorstore.Record
	index     map[string]int // chunk ID -> position in records
}

func New() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("store holds %d-dimensional vectors, requested %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if s.dimension != 0 && len(r.Vector) != s.dimension {
			return fmt.Errorf("record %s has dimension %d, store expects %d", r.ID, len(r.Vector), s.dimension)
		}
		if pos, ok := s.index[r.ID]; ok {
			s.records[pos] = r
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]vectorstore.Candidate, 0, len(s.records))
	for _, r := range s.records {
		candidates = append(candidates, vectorstore.Candidate{
			ID:         r.ID,
			Content:    r.Content,
			Source:     r.Source,
			Title:      r.Title,
			Similarity: vectorstore.Cosine(vector, r.Vector),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Dimension reports the bound dimensionality even while the store is still
// empty, so a dimension change between schema setup and the first write is
// caught as a rebuild rather than a schema conflict.
func (s *Store) Dimension(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension, nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = 0
	s.records = nil
	s.index = make(map[string]int)
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
