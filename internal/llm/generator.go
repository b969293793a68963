// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kooala/somnographus/internal/catalog"
)

// Generator produces the Korean recommendation essay for a set of candidate
// sounds. All calls go through a circuit breaker; once the endpoint fails
// FailureThreshold times in a row the breaker opens and calls fail fast for
// ResetTimeout, after which a single probe is allowed through.
type Generator struct {
	api       chatClient
	model     string
	maxTokens int64
	breaker   *gobreaker.CircuitBreaker[string]
	log       zerolog.Logger
}

// NewGenerator creates a generator backed by the OpenAI chat API.
func NewGenerator(cfg Config, log zerolog.Logger) *Generator {
	cfg = cfg.withDefaults()
	client := newAPIClient(cfg)
	g := &Generator{
		api:       &client.Chat.Completions,
		model:     cfg.ChatModel,
		maxTokens: int64(cfg.MaxTokens),
		log:       log.With().Str("component", "generator").Logger(),
	}
	g.breaker = newGenerationBreaker(cfg, g.log)
	return g
}

func newGenerationBreaker(cfg Config, log zerolog.Logger) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm-generation",
		MaxRequests: 1,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("generation circuit breaker state changed")
		},
	})
}

// Generate writes the recommendation essay for the given user status and
// candidate sounds. Callers are expected to substitute fallback text when
// this fails; generation is best-effort by design of the pipeline.
func (g *Generator) Generate(ctx context.Context, userStatus string, sounds []catalog.Entry) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		resp, err := g.api.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(g.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(therapistPersona),
				openai.UserMessage(recommendationPrompt(userStatus, sounds)),
			},
			MaxTokens:   openai.Int(g.maxTokens),
			Temperature: openai.Float(0.7),
		})
		if err != nil {
			return "", fmt.Errorf("generation request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("generation response contained no choices")
		}

		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return "", fmt.Errorf("generation response was empty")
		}
		return text, nil
	})
}

// BreakerState reports the circuit breaker state for health reporting.
func (g *Generator) BreakerState() string {
	return g.breaker.State().String()
}
