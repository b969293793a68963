// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package profile fetches user sleep history and survey answers from the
// main Kooala server. When no server is configured the client serves
// built-in sample payloads so the profile-backed endpoint works in
// development and demos.
package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kooala/somnographus/internal/metrics"
	"github.com/kooala/somnographus/internal/models"
	"github.com/kooala/somnographus/internal/summarize"
)

// SleepProfile is a user's sleep history as served by the main server.
type SleepProfile struct {
	Previous                *summarize.Metrics `json:"previous,omitempty"`
	Current                 *summarize.Metrics `json:"current"`
	PreferredSounds         []string           `json:"preferredSounds,omitempty"`
	PreviousRecommendations []string           `json:"previousRecommendations,omitempty"`
}

// Config holds the main-server connection settings.
type Config struct {
	// BaseURL of the main server. Empty enables sample-data mode.
	BaseURL string
	Timeout time.Duration
}

// Client fetches user profiles over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a profile client. A zero Timeout defaults to 10s.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "profile").Logger(),
	}
}

// SampleMode reports whether the client serves built-in sample data.
func (c *Client) SampleMode() bool {
	return c.baseURL == ""
}

// FetchSleep returns the user's last sleep sessions.
// Route: GET {base}/sleep-data/user/{userID}/last
func (c *Client) FetchSleep(ctx context.Context, userID string) (*SleepProfile, error) {
	if c.SampleMode() {
		c.log.Debug().Str("user_id", userID).Msg("serving sample sleep profile")
		return sampleSleepProfile(), nil
	}

	var p SleepProfile
	url := fmt.Sprintf("%s/sleep-data/user/%s/last", c.baseURL, userID)
	if err := c.getJSON(ctx, url, &p); err != nil {
		metrics.ProfileFetchErrors.WithLabelValues("sleep").Inc()
		return nil, fmt.Errorf("fetch sleep profile: %w", err)
	}
	return &p, nil
}

// FetchSurvey returns the user's survey answers.
// Route: GET {base}/users/survey/{userID}/result
func (c *Client) FetchSurvey(ctx context.Context, userID string) (*summarize.SurveySignals, error) {
	if c.SampleMode() {
		c.log.Debug().Str("user_id", userID).Msg("serving sample survey answers")
		return sampleSurveySignals(), nil
	}

	var s summarize.SurveySignals
	url := fmt.Sprintf("%s/users/survey/%s/result", c.baseURL, userID)
	if err := c.getJSON(ctx, url, &s); err != nil {
		metrics.ProfileFetchErrors.WithLabelValues("survey").Inc()
		return nil, fmt.Errorf("fetch survey answers: %w", err)
	}
	return &s, nil
}

// FetchCombined fetches sleep history and survey answers concurrently and
// merges them into one combined recommendation request.
func (c *Client) FetchCombined(ctx context.Context, userID string) (req *models.CombinedRecommendationRequest, err error) {
	start := time.Now()
	defer func() {
		metrics.ObservePipeline(metrics.FlowProfile, err, time.Since(start))
	}()

	var (
		wg        sync.WaitGroup
		sleep     *SleepProfile
		survey    *summarize.SurveySignals
		sleepErr  error
		surveyErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sleep, sleepErr = c.FetchSleep(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		survey, surveyErr = c.FetchSurvey(ctx, userID)
	}()
	wg.Wait()

	if sleepErr != nil {
		return nil, sleepErr
	}
	if surveyErr != nil {
		return nil, surveyErr
	}

	return &models.CombinedRecommendationRequest{
		UserID:                  userID,
		PreferredSounds:         sleep.PreferredSounds,
		PreviousRecommendations: sleep.PreviousRecommendations,
		Previous:                sleep.Previous,
		Current:                 sleep.Current,
		SurveySignals:           *survey,
	}, nil
}

// getJSON fetches url and decodes the payload into out. The main server
// wraps some responses in {"success": true, "data": {...}}; both the
// wrapped and the direct form are accepted.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success != nil && envelope.Data != nil {
		body = envelope.Data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
