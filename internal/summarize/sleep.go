// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package summarize

import (
	"math"
	"strings"
)

// Tier classifies a sleep metric against fixed clinical-style thresholds.
type Tier string

const (
	// TierGood means the metric is in the healthy range.
	TierGood Tier = "good"
	// TierWarning means the metric is borderline.
	TierWarning Tier = "warning"
	// TierBad means the metric is outside the acceptable range.
	TierBad Tier = "bad"
)

// Metrics is one session's sleep-stage measurements. Ratios are fractions of
// total sleep time in [0,1]; SleepScore is 0-100.
type Metrics struct {
	DeepSleepRatio  float64 `json:"deepSleepRatio"`
	RemSleepRatio   float64 `json:"remSleepRatio"`
	LightSleepRatio float64 `json:"lightSleepRatio"`
	AwakeRatio      float64 `json:"awakeRatio"`
	SleepScore      int     `json:"sleepScore"`
}

// Evaluation holds the per-metric tier classification of a session.
type Evaluation struct {
	Deep  Tier `json:"deep"`
	Rem   Tier `json:"rem"`
	Light Tier `json:"light"`
	Awake Tier `json:"awake"`
	Score Tier `json:"score"`
}

// Deltas are the signed session-over-session changes (current - previous).
// Ratio deltas are rounded to 4 decimal places, the score delta to 1.
type Deltas struct {
	Deep  float64 `json:"deep_delta"`
	Rem   float64 `json:"rem_delta"`
	Light float64 `json:"light_delta"`
	Awake float64 `json:"awake_delta"`
	Score float64 `json:"score_delta"`
}

// Report is the result of summarizing a sleep-metrics pair.
type Report struct {
	// Summary is the Korean-language diagnostic sentence.
	Summary string `json:"summary"`

	// Deltas is nil on a user's first recorded session.
	Deltas *Deltas `json:"improvement,omitempty"`

	// Evaluation is the tier classification of the current session.
	Evaluation Evaluation `json:"evaluation"`
}

// firstSessionNote is appended when there is no previous session to
// compare against.
const firstSessionNote = " 이번이 첫 수면 기록입니다."

// stableSentence is emitted when no metric is classified bad.
const stableSentence = "수면 상태는 전반적으로 안정적입니다."

// classify maps a metric value to a tier given good/warning floor thresholds.
func classify(value, good, warning float64) Tier {
	switch {
	case value >= good:
		return TierGood
	case value >= warning:
		return TierWarning
	default:
		return TierBad
	}
}

// classifyInverted maps a metric where lower is better (awake ratio).
func classifyInverted(value, good, warning float64) Tier {
	switch {
	case value <= good:
		return TierGood
	case value <= warning:
		return TierWarning
	default:
		return TierBad
	}
}

// Evaluate classifies each metric of a session. A zero light ratio means the
// tracker did not report the stage; it is never flagged, since light sleep
// dominates any real session.
func Evaluate(m Metrics) Evaluation {
	light := TierGood
	if m.LightSleepRatio > 0 {
		light = classify(m.LightSleepRatio, 0.50, 0.40)
	}
	return Evaluation{
		Deep:  classify(m.DeepSleepRatio, 0.20, 0.13),
		Rem:   classify(m.RemSleepRatio, 0.22, 0.20),
		Light: light,
		Awake: classifyInverted(m.AwakeRatio, 0.10, 0.15),
		Score: classify(float64(m.SleepScore), 80, 65),
	}
}

// SleepMetrics summarizes a session, optionally against the previous one.
// Every metric classified bad contributes a Korean clause; with none, the
// fixed stable sentence is used. When previous is nil this is the user's
// first recorded session: a note is appended and no deltas are computed.
func SleepMetrics(previous *Metrics, current Metrics) Report {
	eval := Evaluate(current)

	var clauses []string
	if eval.Rem == TierBad {
		clauses = append(clauses, "렘수면 부족")
	}
	if eval.Awake == TierBad {
		clauses = append(clauses, "잦은 각성")
	}
	if eval.Deep == TierBad {
		clauses = append(clauses, "깊은 수면 부족")
	}
	if eval.Light == TierBad {
		clauses = append(clauses, "얕은 수면 부족")
	}
	if eval.Score == TierBad {
		clauses = append(clauses, "전반적인 수면 질 저하")
	}

	summary := stableSentence
	if len(clauses) > 0 {
		summary = strings.Join(clauses, " 및 ") + "이 관찰되었습니다."
	}

	if previous == nil {
		return Report{
			Summary:    summary + firstSessionNote,
			Evaluation: eval,
		}
	}

	return Report{
		Summary: summary,
		Deltas: &Deltas{
			Deep:  roundTo(current.DeepSleepRatio-previous.DeepSleepRatio, 4),
			Rem:   roundTo(current.RemSleepRatio-previous.RemSleepRatio, 4),
			Light: roundTo(current.LightSleepRatio-previous.LightSleepRatio, 4),
			Awake: roundTo(current.AwakeRatio-previous.AwakeRatio, 4),
			Score: roundTo(float64(current.SleepScore-previous.SleepScore), 1),
		},
		Evaluation: eval,
	}
}

// roundTo rounds to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
