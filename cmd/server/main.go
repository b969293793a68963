// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package main is the entry point for the Somnographus server.
//
// Somnographus recommends sleep sounds by embedding a user's sleep state and
// survey answers, retrieving the closest entries from a prebuilt sound index,
// re-ranking them with preference and effectiveness signals, and wrapping the
// result in a generated Korean recommendation essay.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from config file and environment (Koanf v2)
//  2. Catalog: load the sound catalog and its embedding index from disk
//  3. Model clients: OpenAI-compatible embedding, generation, and translation
//  4. Recommendation engine: the retrieval and re-ranking pipeline
//  5. Profile client: optional main-server integration for per-user data
//  6. HTTP server: versioned REST API plus Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables, config file (config.yaml), built-in defaults.
// OPENAI_API_KEY is the only setting without a usable default.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits for in-flight requests up to the
// configured shutdown timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kooala/somnographus/internal/api"
	"github.com/kooala/somnographus/internal/catalog"
	"github.com/kooala/somnographus/internal/config"
	"github.com/kooala/somnographus/internal/llm"
	"github.com/kooala/somnographus/internal/logging"
	"github.com/kooala/somnographus/internal/profile"
	"github.com/kooala/somnographus/internal/recommend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.Logger()

	cat, err := catalog.Load(cfg.Catalog.SoundsPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.SoundsPath).Msg("Failed to load sound catalog")
	}
	index, err := catalog.LoadIndex(cfg.Catalog.IndexPath, cat)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.IndexPath).Msg("Failed to load sound index")
	}
	logging.Info().
		Int("sounds", cat.Size()).
		Int("categories", cat.Categories()).
		Int("dimension", index.Dimension()).
		Msg("Sound catalog loaded")

	embedder := llm.NewEmbedder(cfg.LLM, log)
	generator := llm.NewGenerator(cfg.LLM, log)
	translator := llm.NewTranslator(cfg.LLM, log)

	engine := recommend.NewEngine(index, embedder, generator, translator, recommend.Options{
		SurveyTopK:           cfg.Recommend.SurveyTopK,
		GenerationTopN:       cfg.Recommend.GenerationTopN,
		DiversifyEnabled:     cfg.Recommend.DiversifyEnabled,
		DiversifyPerCategory: cfg.Recommend.DiversifyPerCategory,
	}, log)

	profiles := profile.NewClient(profile.Config{
		BaseURL: cfg.Profile.BaseURL,
		Timeout: cfg.Profile.Timeout,
	}, log)
	if profiles.SampleMode() {
		logging.Warn().Msg("No profile server configured, serving built-in sample profiles")
	}

	handler := api.NewHandler(engine, profiles, index, generator.BreakerState)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown did not complete")
	}

	logging.Info().Msg("Application stopped gracefully")
}
