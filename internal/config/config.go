// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package config loads and validates service configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kooala/somnographus/internal/llm"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	LLM       llm.Config      `koanf:"llm"`
	Profile   ProfileConfig   `koanf:"profile"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CatalogConfig points at the prebuilt catalog and index artifacts. Both
// files are produced offline by the embedding pipeline and loaded read-only
// at startup.
type CatalogConfig struct {
	SoundsPath string `koanf:"sounds_path" validate:"required"`
	IndexPath  string `koanf:"index_path" validate:"required"`
}

// ProfileConfig holds the user-profile service connection. When BaseURL is
// empty the profile-backed endpoint serves built-in sample data.
type ProfileConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig tunes the retrieval pipeline.
type RecommendConfig struct {
	// SurveyTopK is the number of candidates retrieved for the
	// survey-only flow.
	SurveyTopK int `koanf:"survey_top_k" validate:"min=1"`

	// GenerationTopN is how many candidates feed the essay generator.
	GenerationTopN int `koanf:"generation_top_n" validate:"min=1"`

	// DiversifyEnabled caps per-category results before re-ranking.
	DiversifyEnabled bool `koanf:"diversify_enabled"`

	// DiversifyPerCategory is the per-category cap when diversifying.
	DiversifyPerCategory int `koanf:"diversify_per_category" validate:"min=1"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for consistency. Struct tags cover the
// per-field rules; cross-field rules are checked explicitly.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Recommend.GenerationTopN > c.Recommend.SurveyTopK {
		return fmt.Errorf("config validation: generation_top_n %d exceeds survey_top_k %d",
			c.Recommend.GenerationTopN, c.Recommend.SurveyTopK)
	}
	return nil
}
