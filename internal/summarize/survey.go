// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package summarize renders structured user signals into natural language.
//
// Survey answers become a single English sentence suitable for embedding;
// sleep-stage measurements become a Korean diagnostic summary plus tier
// evaluations and session-over-session deltas. All rendering is
// deterministic: identical input produces byte-identical output (with the
// translation collaborator held fixed).
package summarize

import (
	"context"
	"fmt"
	"strings"
)

// Translator converts native-language free text to English. Implementations
// may fail; callers always fall back to the original text so the pipeline
// never blocks on translation.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// SurveySignals is the recognized subset of a user's survey answers. Every
// field is optional; absent fields are skipped without placeholders.
type SurveySignals struct {
	SleepGoal               string   `json:"sleepGoal,omitempty"`
	SleepIssues             []string `json:"sleepIssues,omitempty"`
	StressLevel             string   `json:"stressLevel,omitempty"`
	PreferredSleepSound     string   `json:"preferredSleepSound,omitempty"`
	CalmingSoundType        string   `json:"calmingSoundType,omitempty"`
	NoisePreference         string   `json:"noisePreference,omitempty"`
	NoisePreferenceOther    string   `json:"noisePreferenceOther,omitempty"`
	YoutubeContentTypeOther string   `json:"youtubeContentTypeOther,omitempty"`
	UsualBedtime            string   `json:"usualBedtime,omitempty"`
	UsualWakeupTime         string   `json:"usualWakeupTime,omitempty"`
	DayActivityType         string   `json:"dayActivityType,omitempty"`
	CaffeineIntakeLevel     string   `json:"caffeineIntakeLevel,omitempty"`
	ExerciseFrequency       string   `json:"exerciseFrequency,omitempty"`
	ScreenTimeBeforeSleep   string   `json:"screenTimeBeforeSleep,omitempty"`
}

// fallbackSentence is returned when no recognized field is present.
const fallbackSentence = "A user seeking better sleep."

// Survey renders survey signals into one English sentence. Fields are
// appended in a fixed order so output is stable for identical input. The two
// free-text "other" fields pass through the translator; on translation
// failure the original text is used unchanged.
func Survey(ctx context.Context, s SurveySignals, tr Translator) string {
	noiseOther := translateOrKeep(ctx, tr, s.NoisePreferenceOther)
	youtubeOther := translateOrKeep(ctx, tr, s.YoutubeContentTypeOther)

	var phrases []string
	if s.SleepGoal != "" {
		phrases = append(phrases, fmt.Sprintf("wants to achieve the goal of '%s'", s.SleepGoal))
	}
	if len(s.SleepIssues) > 0 {
		phrases = append(phrases, fmt.Sprintf("is experiencing sleep issues like '%s'", strings.Join(s.SleepIssues, ", ")))
	}
	if s.StressLevel != "" {
		phrases = append(phrases, fmt.Sprintf("and has a '%s' stress level.", s.StressLevel))
	}
	if s.PreferredSleepSound != "" {
		phrases = append(phrases, fmt.Sprintf("They generally prefer '%s' sounds.", s.PreferredSleepSound))
	}
	if s.CalmingSoundType != "" {
		phrases = append(phrases, fmt.Sprintf("They find '%s' sounds calming.", s.CalmingSoundType))
	}
	if noiseOther != "" {
		phrases = append(phrases, fmt.Sprintf("and also likes '%s'.", noiseOther))
	}
	if youtubeOther != "" {
		phrases = append(phrases, fmt.Sprintf("They also watch '%s' on YouTube.", youtubeOther))
	}
	if s.UsualBedtime != "" {
		phrases = append(phrases, fmt.Sprintf("They usually go to bed around '%s'.", s.UsualBedtime))
	}
	if s.UsualWakeupTime != "" {
		phrases = append(phrases, fmt.Sprintf("They usually wake up around '%s'.", s.UsualWakeupTime))
	}
	if s.DayActivityType != "" {
		phrases = append(phrases, fmt.Sprintf("Their daytime activity is mostly '%s'.", s.DayActivityType))
	}
	if s.CaffeineIntakeLevel != "" {
		phrases = append(phrases, fmt.Sprintf("Their caffeine intake is '%s'.", s.CaffeineIntakeLevel))
	}
	if s.ExerciseFrequency != "" {
		phrases = append(phrases, fmt.Sprintf("They exercise '%s'.", s.ExerciseFrequency))
	}
	if s.ScreenTimeBeforeSleep != "" {
		phrases = append(phrases, fmt.Sprintf("They spend '%s' on screens before sleep.", s.ScreenTimeBeforeSleep))
	}

	if len(phrases) == 0 {
		return fallbackSentence
	}

	return "A user who " + strings.Join(phrases, " ")
}

// Combined joins the sleep-metrics summary and the survey sentence; the
// combined text (not the raw fields) is what gets embedded for
// combined-mode requests.
func Combined(sleepSummary, surveyText string) string {
	return sleepSummary + " " + surveyText
}

// translateOrKeep runs text through the translator, keeping the original on
// failure or when no translator is configured.
func translateOrKeep(ctx context.Context, tr Translator, text string) string {
	if text == "" || tr == nil {
		return text
	}
	translated, err := tr.Translate(ctx, text)
	if err != nil || translated == "" {
		return text
	}
	return translated
}
