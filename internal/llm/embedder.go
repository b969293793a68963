// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog"
)

// Embedder turns query text into a vector in the index's embedding space.
type Embedder struct {
	api       embeddingsClient
	model     string
	dimension int
	log       zerolog.Logger
}

// NewEmbedder creates an embedder backed by the OpenAI embeddings API.
func NewEmbedder(cfg Config, log zerolog.Logger) *Embedder {
	cfg = cfg.withDefaults()
	client := newAPIClient(cfg)
	return &Embedder{
		api:       &client.Embeddings,
		model:     cfg.EmbedModel,
		dimension: cfg.Dimension,
		log:       log.With().Str("component", "embedder").Logger(),
	}
}

// Dimension returns the configured embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Zero returns the all-zeros vector used when embedding fails; querying
// with it degrades to the catalog's natural order rather than erroring the
// whole request.
func (e *Embedder) Zero() []float32 {
	return make([]float32, e.dimension)
}

// Embed converts text to a vector. The returned slice always has the
// configured dimension or an error is returned.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.api.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	raw := resp.Data[0].Embedding
	if len(raw) != e.dimension {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(raw), e.dimension)
	}

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}

	e.log.Debug().Int("dimension", len(vec)).Msg("embedded query text")
	return vec, nil
}
