// Package mysqlstore implements the vector store on MySQL. Embeddings are
// stored as JSON alongside the chunk text and similarity is computed with a
// brute-force scan in process, which is adequate for collections that fit
// the typical ingestion sizes here.
package mysqlstore

import (
	"context"
	"sort"

	"talentsearch/internal/model"
	"talentsearch/internal/repository"
	"talentsearch/internal/vectorstore"
)

type Store struct {
	repo *repository.ChunkRepository
}

func New(repo *repository.ChunkRepository) *Store {
	return &Store{repo: repo}
}

func (s *Store) EnsureSchema(ctx context.Context, dimension int) error {
	// The table schema is dimension-agnostic; migration is enough.
	return s.repo.Migrate()
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	chunks := make([]model.ChunkRecord, len(records))
	for i, r := range records {
		chunks[i] = model.ChunkRecord{
			ChunkID: r.ID,
			Content: r.Content,
			Source:  r.Source,
			Title:   r.Title,
		}
		chunks[i].SetEmbedding(r.Vector)
	}
	return s.repo.UpsertBatch(chunks)
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	chunks, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	candidates := make([]vectorstore.Candidate, 0, len(chunks))
	for i := range chunks {
		candidates = append(candidates, vectorstore.Candidate{
			ID:         chunks[i].ChunkID,
			Content:    chunks[i].Content,
			Source:     chunks[i].Source,
			Title:      chunks[i].Title,
			Similarity: vectorstore.Cosine(vector, chunks[i].EmbeddingVector()),
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

func (s *Store) Dimension(ctx context.Context) (int, error) {
	chunk, err := s.repo.First()
	if err != nil {
		return 0, err
	}
	if chunk == nil {
		return 0, nil
	}
	return len(chunk.EmbeddingVector()), nil
}

func (s *Store) Reset(ctx context.Context) error {
	return s.repo.DeleteAll()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.repo.Count()
}
