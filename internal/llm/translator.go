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
)

// translatorInstruction keeps the model from editorializing; the reply must
// be the translation and nothing else.
const translatorInstruction = "Translate the user's text to English. " +
	"Reply with only the translation, no quotes and no commentary."

// Translator converts Korean free-text survey answers to English so they
// embed into the same space as the catalog descriptions. Failures are
// recoverable; callers keep the original text.
type Translator struct {
	api   chatClient
	model string
	log   zerolog.Logger
}

// NewTranslator creates a translator backed by the OpenAI chat API.
func NewTranslator(cfg Config, log zerolog.Logger) *Translator {
	cfg = cfg.withDefaults()
	client := newAPIClient(cfg)
	return &Translator{
		api:   &client.Chat.Completions,
		model: cfg.ChatModel,
		log:   log.With().Str("component", "translator").Logger(),
	}
}

// Translate returns the English rendering of text.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	resp, err := t.api.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translatorInstruction),
			openai.UserMessage(text),
		},
		MaxTokens:   openai.Int(128),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translation response contained no choices")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translation response was empty")
	}

	t.log.Debug().Msg("translated free-text answer")
	return translated, nil
}
