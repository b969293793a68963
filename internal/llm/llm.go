// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package llm wraps the OpenAI-compatible API used for embeddings, Korean
// recommendation-text generation, and free-text translation.
//
// Generation runs behind a circuit breaker so a degraded model endpoint
// cannot stall the recommendation pipeline; callers substitute deterministic
// fallback text when generation fails. Embedding and translation failures
// are likewise survivable: callers fall back to a zero vector or the
// original text.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config holds the connection and model settings shared by the embedder,
// generator, and translator. BaseURL is optional and supports
// OpenAI-compatible endpoints.
type Config struct {
	APIKey     string `koanf:"api_key"`
	BaseURL    string `koanf:"base_url"`
	EmbedModel string `koanf:"embed_model"`
	ChatModel  string `koanf:"chat_model"`

	// Dimension is the embedding dimension; it must match the prebuilt
	// index artifact.
	Dimension int `koanf:"dimension"`

	// MaxTokens caps generated recommendation text.
	MaxTokens int `koanf:"max_tokens"`

	// FailureThreshold is the consecutive-failure count that opens the
	// generation circuit breaker.
	FailureThreshold uint32 `koanf:"failure_threshold"`

	// ResetTimeout is how long the breaker stays open before probing.
	ResetTimeout time.Duration `koanf:"reset_timeout"`
}

// withDefaults fills unset fields with production defaults.
func (c Config) withDefaults() Config {
	if c.EmbedModel == "" {
		c.EmbedModel = "text-embedding-3-small"
	}
	if c.ChatModel == "" {
		c.ChatModel = "gpt-4o-mini"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 512
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 3
	}
	if c.ResetTimeout == 0 {
		c.ResetTimeout = 30 * time.Second
	}
	return c
}

// Validate checks that the settings required to reach the API are present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("llm: api_key is required")
	}
	return nil
}

// embeddingsClient is the slice of the OpenAI SDK the embedder needs.
// Satisfied by *openai.EmbeddingService; tests substitute fakes.
type embeddingsClient interface {
	New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

// chatClient is the slice of the OpenAI SDK the generator and translator
// need. Satisfied by *openai.ChatCompletionService.
type chatClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// newAPIClient builds the underlying SDK client from config.
func newAPIClient(cfg Config) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return openai.NewClient(opts...)
}
