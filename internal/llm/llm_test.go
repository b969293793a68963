// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kooala/somnographus/internal/catalog"
	"github.com/kooala/somnographus/internal/logging"
)

type fakeEmbeddings struct {
	vector []float64
	err    error
	calls  int
}

func (f *fakeEmbeddings) New(_ context.Context, _ openai.EmbeddingNewParams, _ ...option.RequestOption) (*openai.CreateEmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &openai.CreateEmbeddingResponse{
		Data: []openai.Embedding{{Embedding: f.vector}},
	}, nil
}

type fakeChat struct {
	content  string
	err      error
	calls    int
	lastBody openai.ChatCompletionNewParams
}

func (f *fakeChat) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testEmbedder(api embeddingsClient, dim int) *Embedder {
	return &Embedder{
		api:       api,
		model:     "text-embedding-3-small",
		dimension: dim,
		log:       logging.NewTestLogger(io.Discard),
	}
}

func testGenerator(api chatClient, threshold uint32) *Generator {
	log := logging.NewTestLogger(io.Discard)
	g := &Generator{
		api:       api,
		model:     "gpt-4o-mini",
		maxTokens: 512,
		log:       log,
	}
	g.breaker = newGenerationBreaker(Config{
		FailureThreshold: threshold,
		ResetTimeout:     time.Minute,
	}.withDefaults(), log)
	return g
}

func TestEmbedder_Embed(t *testing.T) {
	fake := &fakeEmbeddings{vector: []float64{0.1, 0.2, 0.3}}
	e := testEmbedder(fake, 3)

	vec, err := e.Embed(context.Background(), "a sleepless user")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len(vec) = %d, want 3", len(vec))
	}
	if vec[1] != float32(0.2) {
		t.Errorf("vec[1] = %f, want 0.2", vec[1])
	}
}

func TestEmbedder_DimensionMismatch(t *testing.T) {
	fake := &fakeEmbeddings{vector: []float64{0.1, 0.2}}
	e := testEmbedder(fake, 3)

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("Embed() = nil error, want dimension mismatch")
	}
}

func TestEmbedder_RequestError(t *testing.T) {
	fake := &fakeEmbeddings{err: errors.New("upstream down")}
	e := testEmbedder(fake, 3)

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("Embed() = nil error, want wrapped request error")
	}
}

func TestEmbedder_Zero(t *testing.T) {
	e := testEmbedder(&fakeEmbeddings{}, 4)
	zero := e.Zero()
	if len(zero) != 4 {
		t.Fatalf("len(Zero()) = %d, want 4", len(zero))
	}
	for i, v := range zero {
		if v != 0 {
			t.Errorf("Zero()[%d] = %f, want 0", i, v)
		}
	}
}

func TestGenerator_Generate(t *testing.T) {
	fake := &fakeChat{content: "  오늘 밤은 푹 주무시길 바랄게요.  "}
	g := testGenerator(fake, 3)

	sounds := []catalog.Entry{
		{ID: "rain.mp3", Effect: "Steady rain masks sudden noises."},
		{ID: "cricket.mp3", Effect: "Night crickets bring a calm field ambience."},
	}

	text, err := g.Generate(context.Background(), "A user who has a 'high' stress level.", sounds)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "오늘 밤은 푹 주무시길 바랄게요." {
		t.Errorf("Generate() = %q, want trimmed content", text)
	}
}

func TestGenerator_PromptIncludesSoundsAndStatus(t *testing.T) {
	fake := &fakeChat{content: "ok"}
	g := testGenerator(fake, 3)

	sounds := []catalog.Entry{{ID: "rain.mp3", Effect: "Steady rain."}}
	if _, err := g.Generate(context.Background(), "A user who wants deeper sleep.", sounds); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(fake.lastBody.Messages) != 2 {
		t.Fatalf("got %d messages, want system+user", len(fake.lastBody.Messages))
	}
	user := fake.lastBody.Messages[1].OfUser.Content.OfString.Value
	for _, frag := range []string{"A user who wants deeper sleep.", "Title: rain.mp3", "Description: Steady rain."} {
		if !strings.Contains(user, frag) {
			t.Errorf("user prompt missing %q", frag)
		}
	}
}

func TestGenerator_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake := &fakeChat{err: errors.New("endpoint degraded")}
	g := testGenerator(fake, 3)

	for i := 0; i < 3; i++ {
		if _, err := g.Generate(context.Background(), "status", nil); err == nil {
			t.Fatalf("attempt %d: expected failure", i)
		}
	}

	_, err := g.Generate(context.Background(), "status", nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want %v", err, gobreaker.ErrOpenState)
	}
	if fake.calls != 3 {
		t.Errorf("upstream calls = %d, want 3 (open breaker fails fast)", fake.calls)
	}
	if g.BreakerState() != gobreaker.StateOpen.String() {
		t.Errorf("BreakerState() = %q, want open", g.BreakerState())
	}
}

func TestGenerator_EmptyResponseIsError(t *testing.T) {
	fake := &fakeChat{content: "   "}
	g := testGenerator(fake, 3)

	if _, err := g.Generate(context.Background(), "status", nil); err == nil {
		t.Error("Generate() = nil error, want empty-response error")
	}
}

func TestTranslator_Translate(t *testing.T) {
	fake := &fakeChat{content: "pop songs\n"}
	tr := &Translator{api: fake, model: "gpt-4o-mini", log: logging.NewTestLogger(io.Discard)}

	got, err := tr.Translate(context.Background(), "팝송")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "pop songs" {
		t.Errorf("Translate() = %q, want %q", got, "pop songs")
	}
}

func TestTranslator_RequestError(t *testing.T) {
	fake := &fakeChat{err: errors.New("upstream down")}
	tr := &Translator{api: fake, model: "gpt-4o-mini", log: logging.NewTestLogger(io.Discard)}

	if _, err := tr.Translate(context.Background(), "팝송"); err == nil {
		t.Error("Translate() = nil error, want wrapped request error")
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()
	if cfg.EmbedModel == "" || cfg.ChatModel == "" {
		t.Error("models not defaulted")
	}
	if cfg.Dimension != 1536 {
		t.Errorf("Dimension = %d, want 1536", cfg.Dimension)
	}
	if cfg.FailureThreshold != 3 || cfg.ResetTimeout != 30*time.Second {
		t.Errorf("breaker defaults = (%d, %s)", cfg.FailureThreshold, cfg.ResetTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("Validate() = nil, want missing api_key error")
	}
	if err := (Config{APIKey: "k"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
