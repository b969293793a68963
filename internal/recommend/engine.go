// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package recommend orchestrates the retrieval pipeline: render user signals
// to text, embed, query the sound index, re-rank, and generate the Korean
// recommendation essay.
//
// The pipeline is resilient to model failures by construction. A failed
// embedding degrades to the zero vector (catalog-order results), a failed
// generation degrades to deterministic fallback text, and a failed
// translation keeps the original answer. None of these abort a request.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kooala/somnographus/internal/catalog"
	"github.com/kooala/somnographus/internal/metrics"
	"github.com/kooala/somnographus/internal/models"
	"github.com/kooala/somnographus/internal/scoring"
	"github.com/kooala/somnographus/internal/summarize"
)

// Embedder turns query text into a vector. Zero returns the degraded-mode
// vector used when embedding fails.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Zero() []float32
}

// Generator writes the recommendation essay.
type Generator interface {
	Generate(ctx context.Context, userStatus string, sounds []catalog.Entry) (string, error)
}

// Searcher answers nearest-neighbor queries over the sound catalog.
type Searcher interface {
	Query(vec []float32, k int) ([]catalog.Candidate, error)
	Size() int
}

// Options tunes the pipeline.
type Options struct {
	// SurveyTopK is the candidate count for the survey-only flow.
	SurveyTopK int

	// GenerationTopN is how many top candidates feed the essay generator.
	GenerationTopN int

	// DiversifyEnabled caps per-category candidates before re-ranking.
	DiversifyEnabled bool

	// DiversifyPerCategory is the per-category cap when diversifying.
	DiversifyPerCategory int
}

// Engine runs the recommendation pipeline. Collaborators are interfaces so
// tests can run the full pipeline without network access.
type Engine struct {
	index      Searcher
	embedder   Embedder
	generator  Generator
	translator summarize.Translator
	opts       Options
	log        zerolog.Logger
}

// NewEngine assembles the pipeline. translator may be nil; free-text survey
// answers then pass through untranslated.
func NewEngine(index Searcher, embedder Embedder, generator Generator, translator summarize.Translator, opts Options, log zerolog.Logger) *Engine {
	if opts.SurveyTopK <= 0 {
		opts.SurveyTopK = 5
	}
	if opts.GenerationTopN <= 0 {
		opts.GenerationTopN = 3
	}
	if opts.DiversifyPerCategory <= 0 {
		opts.DiversifyPerCategory = 2
	}
	if translator != nil {
		translator = countingTranslator{inner: translator}
	}
	return &Engine{
		index:      index,
		embedder:   embedder,
		generator:  generator,
		translator: translator,
		opts:       opts,
		log:        log.With().Str("component", "recommend").Logger(),
	}
}

// RecommendSurvey runs the survey-only flow: the rendered survey sentence
// drives retrieval, no sleep history is consulted, and no re-ranking is
// applied. The returned list carries positional ranks with every preference
// marker set to "none".
func (e *Engine) RecommendSurvey(ctx context.Context, req *models.SurveyRecommendationRequest) (*models.RecommendationResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := e.log.With().Str("request_id", requestID).Str("flow", metrics.FlowSurvey).Logger()

	surveyText := summarize.Survey(ctx, req.SurveySignals, e.translator)
	vec := e.embedOrZero(ctx, log, surveyText)

	candidates, err := e.queryIndex(vec, e.opts.SurveyTopK)
	if err != nil {
		metrics.ObservePipeline(metrics.FlowSurvey, err, time.Since(start))
		return nil, fmt.Errorf("index query: %w", err)
	}

	text := e.generateOrFallback(ctx, log, surveyText, topEntries(candidates, e.opts.GenerationTopN))

	sounds := make([]models.RecommendedSound, len(candidates))
	for i, c := range candidates {
		sounds[i] = models.RecommendedSound{
			Filename:   c.Entry.ID,
			Category:   c.Entry.Category,
			Effect:     c.Entry.Effect,
			Similarity: c.Similarity,
			Rank:       i + 1,
			Preference: scoring.PreferenceNone,
		}
	}

	log.Info().Int("candidates", len(sounds)).Dur("elapsed", time.Since(start)).Msg("survey recommendation complete")
	metrics.ObservePipeline(metrics.FlowSurvey, nil, time.Since(start))

	return &models.RecommendationResponse{
		RecommendationText: text,
		RecommendedSounds:  sounds,
	}, nil
}

// SummarizeSleep evaluates sleep metrics without producing recommendations.
func (e *Engine) SummarizeSleep(req *models.SleepSummaryRequest) *summarize.Report {
	start := time.Now()
	report := summarize.SleepMetrics(req.Previous, *req.Current)
	metrics.ObservePipeline(metrics.FlowSleep, nil, time.Since(start))
	return &report
}

// RecommendCombined runs the full flow: sleep summary and survey sentence
// are combined into one query, every catalog entry is scored with the
// preference and effectiveness terms, and the full re-ranked list is
// returned alongside the sleep report.
func (e *Engine) RecommendCombined(ctx context.Context, req *models.CombinedRecommendationRequest) (*models.RecommendationResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := e.log.With().Str("request_id", requestID).Str("flow", metrics.FlowCombined).Logger()

	report := summarize.SleepMetrics(req.Previous, *req.Current)
	surveyText := summarize.Survey(ctx, req.SurveySignals, e.translator)
	combined := summarize.Combined(report.Summary, surveyText)

	vec := e.embedOrZero(ctx, log, combined)

	candidates, err := e.queryIndex(vec, e.index.Size())
	if err != nil {
		metrics.ObservePipeline(metrics.FlowCombined, err, time.Since(start))
		return nil, fmt.Errorf("index query: %w", err)
	}
	if e.opts.DiversifyEnabled {
		candidates = catalog.Diversify(candidates, e.opts.DiversifyPerCategory, 0)
	}

	eff := effectivenessInput(req)
	scored := scoring.ComputeFinalScores(candidates, req.PreferredSounds, eff, scoring.Mode(req.PreferenceMode), req.PreferenceBalance)
	scoring.Annotate(scored, req.PreferredSounds)

	text := e.generateOrFallback(ctx, log, combined, topScoredEntries(scored, e.opts.GenerationTopN))

	sounds := make([]models.RecommendedSound, len(scored))
	for i, s := range scored {
		sounds[i] = models.RecommendedSound{
			Filename:   s.Candidate.Entry.ID,
			Category:   s.Candidate.Entry.Category,
			Effect:     s.Candidate.Entry.Effect,
			Similarity: s.Candidate.Similarity,
			Score:      s.Score,
			Rank:       s.Rank,
			Preference: s.Preference,
		}
	}

	log.Info().
		Int("candidates", len(sounds)).
		Str("mode", req.PreferenceMode).
		Bool("first_session", req.Previous == nil).
		Dur("elapsed", time.Since(start)).
		Msg("combined recommendation complete")
	metrics.ObservePipeline(metrics.FlowCombined, nil, time.Since(start))

	return &models.RecommendationResponse{
		RecommendationText: text,
		RecommendedSounds:  sounds,
		SleepReport:        &report,
	}, nil
}

// effectivenessInput derives the scoring inputs from the request. With no
// previous session the score delta is zero and the effectiveness term
// vanishes. The first prior recommendation is the main sound; the rest are
// sub sounds.
func effectivenessInput(req *models.CombinedRecommendationRequest) scoring.EffectivenessInput {
	prevScore := req.Current.SleepScore
	if req.Previous != nil {
		prevScore = req.Previous.SleepScore
	}

	var main, sub []string
	if len(req.PreviousRecommendations) > 0 {
		main = req.PreviousRecommendations[:1]
		sub = req.PreviousRecommendations[1:]
	}

	return scoring.EffectivenessInput{
		PrevScore:  prevScore,
		CurrScore:  req.Current.SleepScore,
		MainSounds: main,
		SubSounds:  sub,
	}
}

// queryIndex runs a nearest-neighbor query, recording its latency.
func (e *Engine) queryIndex(vec []float32, k int) ([]catalog.Candidate, error) {
	start := time.Now()
	candidates, err := e.index.Query(vec, k)
	metrics.IndexQueryDuration.Observe(time.Since(start).Seconds())
	return candidates, err
}

// countingTranslator counts failed translations. The caller keeps the
// original text on error, so every counted failure is a served fallback.
type countingTranslator struct {
	inner summarize.Translator
}

func (t countingTranslator) Translate(ctx context.Context, text string) (string, error) {
	out, err := t.inner.Translate(ctx, text)
	if err != nil {
		metrics.TranslationFallbacks.Inc()
	}
	return out, err
}

// embedOrZero embeds the query text, degrading to the zero vector on
// failure so retrieval still produces a deterministic list.
func (e *Engine) embedOrZero(ctx context.Context, log zerolog.Logger, text string) []float32 {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("embedding failed, using zero vector")
		metrics.EmbeddingFailures.Inc()
		return e.embedder.Zero()
	}
	return vec
}

// generateOrFallback asks the generator for the essay, substituting the
// deterministic Korean fallback when generation fails.
func (e *Engine) generateOrFallback(ctx context.Context, log zerolog.Logger, userStatus string, sounds []catalog.Entry) string {
	text, err := e.generator.Generate(ctx, userStatus, sounds)
	if err != nil {
		log.Warn().Err(err).Msg("generation failed, using fallback text")
		metrics.GenerationFallbacks.Inc()
		return fallbackText(sounds)
	}
	return text
}

func topEntries(candidates []catalog.Candidate, n int) []catalog.Entry {
	if n > len(candidates) {
		n = len(candidates)
	}
	entries := make([]catalog.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = candidates[i].Entry
	}
	return entries
}

func topScoredEntries(scored []scoring.ScoredCandidate, n int) []catalog.Entry {
	if n > len(scored) {
		n = len(scored)
	}
	entries := make([]catalog.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = scored[i].Candidate.Entry
	}
	return entries
}
