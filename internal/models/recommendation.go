// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package models

import (
	"fmt"

	"github.com/kooala/somnographus/internal/summarize"
)

// SurveyRecommendationRequest is the body of POST /api/v1/recommendations.
// Survey answers alone drive retrieval; no sleep history is involved and no
// re-ranking is applied.
type SurveyRecommendationRequest struct {
	UserID string `json:"userId,omitempty"`

	summarize.SurveySignals
}

// SleepSummaryRequest is the body of POST /api/v1/sleep/summary.
// Previous is nil on a user's first recorded session.
type SleepSummaryRequest struct {
	UserID   string             `json:"userId,omitempty"`
	Previous *summarize.Metrics `json:"previous,omitempty"`
	Current  *summarize.Metrics `json:"current"`
}

// Validate checks the fields the summary pipeline cannot proceed without.
func (r SleepSummaryRequest) Validate() error {
	if r.Current == nil {
		return fmt.Errorf("current sleep metrics are required")
	}
	return nil
}

// CombinedRecommendationRequest is the body of POST
// /api/v1/recommendations/sleep, and the profile-backed flow's internal
// representation. It carries both sleep history and survey answers.
type CombinedRecommendationRequest struct {
	UserID string `json:"userId,omitempty"`

	// PreferenceMode selects the discrete weighting preset: "preference"
	// or "effectiveness". Any other value falls back to balanced weights.
	PreferenceMode string `json:"preferenceMode,omitempty"`

	// PreferenceBalance, when present, overrides PreferenceMode with a
	// continuous 0-10 knob (0 = all preference, 10 = all effectiveness).
	PreferenceBalance *float64 `json:"preferenceBalance,omitempty"`

	// PreferredSounds is ordered least-preferred first.
	PreferredSounds []string `json:"preferredSounds,omitempty"`

	// PreviousRecommendations are the sounds recommended last session;
	// the first is treated as the main sound, the rest as sub sounds.
	PreviousRecommendations []string `json:"previousRecommendations,omitempty"`

	Previous *summarize.Metrics `json:"previous,omitempty"`
	Current  *summarize.Metrics `json:"current"`

	summarize.SurveySignals
}

// Validate checks the fields the combined pipeline cannot proceed without.
func (r CombinedRecommendationRequest) Validate() error {
	if r.Current == nil {
		return fmt.Errorf("current sleep metrics are required")
	}
	if r.PreferenceBalance != nil {
		if b := *r.PreferenceBalance; b < 0 || b > 10 {
			return fmt.Errorf("preferenceBalance %v out of range [0,10]", b)
		}
	}
	return nil
}

// RecommendedSound is one catalog entry annotated for display.
type RecommendedSound struct {
	Filename   string  `json:"filename"`
	Category   string  `json:"category"`
	Effect     string  `json:"effect"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score,omitempty"`
	Rank       int     `json:"rank"`
	Preference string  `json:"preference"`
}

// RecommendationResponse is the payload of every recommendation endpoint.
// RecommendedSounds holds the full ranked list, not just the sounds the
// essay mentions. SleepReport is present only for flows that consumed sleep
// metrics.
type RecommendationResponse struct {
	RecommendationText string             `json:"recommendation_text"`
	RecommendedSounds  []RecommendedSound `json:"recommended_sounds"`
	SleepReport        *summarize.Report  `json:"sleep_report,omitempty"`
}
