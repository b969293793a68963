// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/kooala/somnographus/internal/llm"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/somnographus/config.yaml",
	"/etc/somnographus/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. File and env
// layers override these.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			SoundsPath: "/data/sounds.json",
			IndexPath:  "/data/sound_index.json",
		},
		LLM: llm.Config{
			EmbedModel:       "text-embedding-3-small",
			ChatModel:        "gpt-4o-mini",
			Dimension:        1536,
			MaxTokens:        512,
			FailureThreshold: 3,
			ResetTimeout:     30 * time.Second,
		},
		Profile: ProfileConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Recommend: RecommendConfig{
			SurveyTopK:           5,
			GenerationTopN:       3,
			DiversifyEnabled:     false,
			DiversifyPerCategory: 2,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration using koanf v2 with layered sources:
//  1. Defaults: built-in struct defaults
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are config paths parsed as comma-separated slices when
// they arrive as env-var strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are skipped so unrelated environment noise never
// pollutes the config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - OPENAI_API_KEY -> llm.api_key
//   - SOUNDS_PATH -> catalog.sounds_path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":        "server.host",
		"http_port":        "server.port",
		"http_timeout":     "server.timeout",
		"shutdown_timeout": "server.shutdown_timeout",

		// Catalog artifact mappings
		"sounds_path":      "catalog.sounds_path",
		"sound_index_path": "catalog.index_path",

		// LLM mappings
		"openai_api_key":        "llm.api_key",
		"openai_base_url":       "llm.base_url",
		"embed_model":           "llm.embed_model",
		"chat_model":            "llm.chat_model",
		"embed_dimension":       "llm.dimension",
		"llm_max_tokens":        "llm.max_tokens",
		"llm_failure_threshold": "llm.failure_threshold",
		"llm_reset_timeout":     "llm.reset_timeout",

		// Profile service mappings
		"profile_base_url": "profile.base_url",
		"profile_timeout":  "profile.timeout",

		// Recommendation pipeline mappings
		"recommend_survey_top_k":           "recommend.survey_top_k",
		"recommend_generation_top_n":       "recommend.generation_top_n",
		"recommend_diversify_enabled":      "recommend.diversify_enabled",
		"recommend_diversify_per_category": "recommend.diversify_per_category",

		// Security mappings
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
