package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// point Load away from any real config file and neutralize ambient keys
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("HUGGINGFACE_API_KEY", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Embedding.Provider != ProviderHuggingFace {
		t.Fatalf("expected default embedding provider huggingface, got %q", cfg.Embedding.Provider)
	}
	if cfg.LLM.Provider != "" {
		t.Fatalf("expected retrieval-only mode by default, got llm provider %q", cfg.LLM.Provider)
	}
	if cfg.Vector.Type != VectorTypeQdrant {
		t.Fatalf("expected default vector store qdrant, got %q", cfg.Vector.Type)
	}
	if cfg.Retrieval.RelevanceFloor != 0.3 {
		t.Fatalf("expected default relevance floor 0.3, got %v", cfg.Retrieval.RelevanceFloor)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Fatalf("expected default top-k 5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Fatalf("expected default chunking 1000/200, got %d/%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	// huggingface provider defaults are filled in
	if cfg.Embedding.BaseURL == "" || cfg.Embedding.Model == "" {
		t.Fatalf("expected provider defaults filled, got base %q model %q", cfg.Embedding.BaseURL, cfg.Embedding.Model)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[retrieval]
top_k = 8
relevance_floor = 0.5

[vector]
type = "memory"

[ingest]
chunk_size = 400
chunk_overlap = 40
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retrieval.TopK != 8 || cfg.Retrieval.RelevanceFloor != 0.5 {
		t.Fatalf("file values not applied: top_k=%d floor=%v", cfg.Retrieval.TopK, cfg.Retrieval.RelevanceFloor)
	}
	if cfg.Vector.Type != VectorTypeMemory {
		t.Fatalf("expected memory store from file, got %q", cfg.Vector.Type)
	}
	if cfg.Ingest.ChunkSize != 400 {
		t.Fatalf("expected chunk size 400 from file, got %d", cfg.Ingest.ChunkSize)
	}
	// untouched sections keep their defaults
	if cfg.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.App.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[retrieval]\ntop_k = 8\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RETRIEVAL_TOP_K", "3")
	t.Setenv("RELEVANCE_FLOOR", "0.7")
	t.Setenv("VECTOR_DB_TYPE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Fatalf("env should beat file, got top_k %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.RelevanceFloor != 0.7 {
		t.Fatalf("expected floor 0.7 from env, got %v", cfg.Retrieval.RelevanceFloor)
	}
	if cfg.Vector.Type != VectorTypeMemory {
		t.Fatalf("expected memory store from env, got %q", cfg.Vector.Type)
	}
}

func TestLoad_OpenAIRequiresKey(t *testing.T) {
	isolate(t)
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected missing API key error, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with key: %v", err)
	}
	if cfg.Embedding.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("expected openai default base url, got %q", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.Model == "" {
		t.Fatal("expected default openai embedding model")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown embedding provider", map[string]string{"EMBEDDING_PROVIDER": "hal9000"}},
		{"unknown llm provider", map[string]string{"LLM_PROVIDER": "hal9000"}},
		{"unknown vector store", map[string]string{"VECTOR_DB_TYPE": "chroma"}},
		{"overlap not below size", map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "100"}},
		{"floor above one", map[string]string{"RELEVANCE_FLOOR": "1.5"}},
		{"negative floor", map[string]string{"RELEVANCE_FLOOR": "-0.1"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			isolate(t)
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
