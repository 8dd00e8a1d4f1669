// Package ai provides the embedding and generation provider clients.
// Providers are selected once at configuration-load time; the rest of the
// application only sees the Embedder and Generator interfaces.
package ai

import (
	"context"
	"fmt"

	"talentsearch/internal/config"
)

// Embedder converts text into a fixed-dimension vector. All texts embedded
// by one provider/model share the same dimensionality; queries must be
// embedded with the same Embedder that produced the stored vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// NewEmbedder returns the embedder for the configured provider.
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case config.ProviderGoogle:
		return NewGoogleClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case config.ProviderHuggingFace:
		return NewHuggingFaceEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewGenerator returns the generator for the configured provider, or nil
// when no LLM provider is configured (retrieval-only mode).
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case config.ProviderGoogle:
		return NewGoogleClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
