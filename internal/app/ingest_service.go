package app

import (
	"context"
	"errors"
	"fmt"

	"talentsearch/internal/ai"
	"talentsearch/internal/pkg/docload"
	"talentsearch/internal/pkg/textsplit"
	"talentsearch/internal/vectorstore"
	"talentsearch/pkg/log"
)

var ErrNoChunks = errors.New("no chunks produced from source documents")

// IngestService loads documents from a directory, splits them into
// overlapping chunks, embeds the chunks in batches and writes them to the
// vector store. When the store's existing vector dimensionality differs
// from the embedder's output, the store is dropped and rebuilt before
// writing; appending mixed-dimension vectors would corrupt similarity
// search.
type IngestService struct {
	embedder     ai.Embedder
	store        vectorstore.Store
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Documents    int  `json:"documents"`
	Chunks       int  `json:"chunks"`
	SkippedFiles int  `json:"skipped_files"`
	Rebuilt      bool `json:"rebuilt"`
}

func NewIngestService(embedder ai.Embedder, store vectorstore.Store, chunkSize, chunkOverlap, batchSize int) *IngestService {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &IngestService{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}
}

// Ingest runs the pipeline for one source directory. Chunk IDs are derived
// from the source filename and chunk position, so re-running against the
// same directory with the same configuration overwrites rather than
// duplicates.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*IngestReport, error) {
	docs, skipped, err := docload.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	log.Infow("documents loaded", "dir", dir, "documents", len(docs), "skipped", skipped)

	var (
		records []vectorstore.Record
		texts   []string
	)
	ordinals := make(map[string]int)
	for _, doc := range docs {
		for _, chunk := range textsplit.Split(doc.Text, s.chunkSize, s.chunkOverlap) {
			n := ordinals[doc.Source]
			ordinals[doc.Source] = n + 1
			records = append(records, vectorstore.Record{
				ID:      fmt.Sprintf("%s#%d", doc.Source, n),
				Content: chunk,
				Source:  doc.Source,
				Title:   doc.Title,
			})
			texts = append(texts, chunk)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoChunks
	}

	rebuilt := false
	schemaReady := false
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("%w: embedding count mismatch", ErrEmbedding)
		}

		if !schemaReady {
			dim := len(vectors[0])
			existing, err := s.store.Dimension(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStore, err)
			}
			if existing != 0 && existing != dim {
				log.Warnf("store holds %d-dimensional vectors but embedder produces %d, rebuilding store", existing, dim)
				if err := s.store.Reset(ctx); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrStore, err)
				}
				rebuilt = true
			}
			if err := s.store.EnsureSchema(ctx, dim); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStore, err)
			}
			schemaReady = true
		}

		for i := range vectors {
			records[start+i].Vector = vectors[i]
		}
		if err := s.store.Upsert(ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
	}

	report := &IngestReport{
		Documents:    len(docs),
		Chunks:       len(records),
		SkippedFiles: skipped,
		Rebuilt:      rebuilt,
	}
	log.Infow("ingestion complete", "documents", report.Documents, "chunks", report.Chunks, "rebuilt", report.Rebuilt)
	return report, nil
}
