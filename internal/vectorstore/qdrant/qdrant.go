// Package qdrant implements the vector store against a Qdrant instance via
// its REST API. Collections are created with cosine distance, so Qdrant's
// search score is the cosine similarity directly.
package qdrant

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentsearch/internal/vectorstore"
)

type Store struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Store) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	existing, err := s.Dimension(ctx)
	if err != nil {
		return err
	}
	if existing == dimension {
		return nil
	}
	if existing != 0 {
		return fmt.Errorf("collection %s holds %d-dimensional vectors, requested %d", s.collection, existing, dimension)
	}
	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.doJSON(ctx, http.MethodPut, s.collectionURL(), body, nil)
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]interface{}, len(records))
	for i, r := range records {
		points[i] = map[string]interface{}{
			"id":     pointID(r.ID),
			"vector": r.Vector,
			"payload": map[string]interface{}{
				"chunk_id": r.ID,
				"content":  r.Content,
				"source":   r.Source,
				"title":    r.Title,
			},
		}
	}
	body := map[string]interface{}{"points": points}
	return s.doJSON(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil)
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, s.collectionURL()+"/points/search", body, &resp); err != nil {
		return nil, err
	}

	candidates := make([]vectorstore.Candidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		c := vectorstore.Candidate{Similarity: r.Score}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			c.ID = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			c.Content = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			c.Source = v
		}
		if v, ok := r.Payload["title"].(string); ok {
			c.Title = v
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Dimension reads the collection config; a missing collection reports 0.
func (s *Store) Dimension(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, &resp)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return resp.Result.Config.Params.Vectors.Size, nil
}

func (s *Store) Reset(ctx context.Context) error {
	err := s.doJSON(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost, s.collectionURL()+"/points/count", map[string]interface{}{"exact": true}, &resp)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant response status %d: %s", e.code, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: string(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse qdrant json failed: %w", err)
		}
	}
	return nil
}

// pointID derives a deterministic UUID from the chunk ID, since Qdrant only
// accepts UUIDs or unsigned integers as point IDs. The original chunk ID is
// kept in the payload.
func pointID(chunkID string) string {
	sum := sha1.Sum([]byte(chunkID))
	h := hex.EncodeToString(sum[:16])
	return fmt.Sprintf("%s-%s-%s-%s-%s", h[0:8], h[8:12], h[12:16], h[16:20], h[20:32])
}
