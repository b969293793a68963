// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package scoring combines similarity, preference, and effectiveness signals
// into a single ranking of sound candidates.
//
// The scoring law for each candidate is:
//
//	score = similarity + alpha * preference_weight(id) + beta * effectiveness_weight(id)
//
// where alpha and beta come from the requested mode or balance knob.
// Components are never clamped; the full sorted list is returned so callers
// can both pick a top-N for text generation and annotate every entry with
// its rank for the UI.
package scoring

import (
	"math"
	"sort"

	"github.com/kooala/somnographus/internal/catalog"
)

// Mode selects the discrete weighting preset when no balance value is given.
type Mode string

const (
	// ModePreference emphasizes the user's stated sound preferences.
	ModePreference Mode = "preference"
	// ModeEffectiveness emphasizes measured sleep-quality improvement.
	ModeEffectiveness Mode = "effectiveness"
)

// subSoundDiscount scales effectiveness attributed to secondary prior
// recommendations: they contributed less directly to the observed outcome.
const subSoundDiscount = 0.7

// scoreScale normalizes the sleep-score delta; sleep scores are 0-100.
const scoreScale = 100.0

// PreferenceTop marks a candidate that appears in the user's preferred list.
const PreferenceTop = "top"

// PreferenceNone marks a candidate absent from the user's preferred list.
const PreferenceNone = "none"

// Components is the per-signal breakdown of a candidate's combined score.
type Components struct {
	Similarity    float64 `json:"similarity"`
	Preference    float64 `json:"preference"`
	Effectiveness float64 `json:"effectiveness"`
}

// ScoredCandidate is a catalog candidate with its combined score and the
// display annotations assigned after sorting.
type ScoredCandidate struct {
	Candidate  catalog.Candidate `json:"candidate"`
	Score      float64           `json:"score"`
	Components Components        `json:"components"`

	// Rank is the 1-based position after sorting by score descending.
	Rank int `json:"rank"`

	// Preference is "top" if the id appears in the caller's preferred
	// list, else "none". Display-only; it does not feed back into Score.
	Preference string `json:"preference"`
}

// EffectivenessInput carries the sleep-score pair and the prior
// recommendations the delta is attributed to.
type EffectivenessInput struct {
	// PrevScore and CurrScore are the sleep scores of the previous and
	// current sessions (0-100).
	PrevScore int
	CurrScore int

	// MainSounds are the primary prior recommendations (full delta).
	MainSounds []string

	// SubSounds are the secondary prior recommendations (discounted delta).
	SubSounds []string
}

// SoftmaxRankWeights computes a softmax over list positions: weight(id at
// position i) = exp(i) / sum(exp(j) for all j). Later positions get
// exponentially more weight; the convention is that the list is stored
// least-preferred first, most-preferred last. An empty list yields an empty
// map. If an id occurs twice, the later occurrence wins.
func SoftmaxRankWeights(preferredIDs []string) map[string]float64 {
	n := len(preferredIDs)
	if n == 0 {
		return map[string]float64{}
	}

	// Subtract the max exponent so large lists cannot overflow.
	var sum float64
	exps := make([]float64, n)
	for i := range preferredIDs {
		exps[i] = math.Exp(float64(i - (n - 1)))
		sum += exps[i]
	}

	weights := make(map[string]float64, n)
	for i, id := range preferredIDs {
		weights[id] = exps[i] / sum
	}
	return weights
}

// ComputeEffectiveness derives per-sound effectiveness weights from the
// sleep-score change: delta = (curr - prev) / 100, attributed in full to
// main sounds and discounted for sub sounds. Sounds in neither list get no
// entry (weight 0 at lookup). Equal scores yield exactly zero for everyone.
func ComputeEffectiveness(prevScore, currScore int, mainSounds, subSounds []string) map[string]float64 {
	delta := float64(currScore-prevScore) / scoreScale

	weights := make(map[string]float64, len(mainSounds)+len(subSounds))
	for _, id := range mainSounds {
		weights[id] = delta
	}
	for _, id := range subSounds {
		weights[id] = delta * subSoundDiscount
	}
	return weights
}

// ChooseWeights resolves the (alpha, beta) pair for preference and
// effectiveness terms. A non-nil balance in [0,10] linearly interpolates
// between pure-preference (0 -> 0.5, 0.0) and pure-effectiveness
// (10 -> 0.0, 0.5) emphasis, leaving similarity as the unweighted baseline.
// Without a balance, discrete presets keyed by mode apply.
func ChooseWeights(mode Mode, balance *float64) (alpha, beta float64) {
	if balance != nil {
		b := *balance / 10.0
		return (1.0 - b) * 0.5, b * 0.5
	}

	switch mode {
	case ModePreference:
		return 0.4, 0.1
	case ModeEffectiveness:
		return 0.1, 0.4
	default:
		return 0.25, 0.25
	}
}

// ComputeFinalScores applies the full scoring law to every candidate and
// returns them sorted by combined score descending. The sort is stable, so
// candidates with identical scores keep their index-query order. The input
// slice is not modified.
func ComputeFinalScores(candidates []catalog.Candidate, preferredIDs []string, eff EffectivenessInput, mode Mode, balance *float64) []ScoredCandidate {
	alpha, beta := ChooseWeights(mode, balance)
	prefWeights := SoftmaxRankWeights(preferredIDs)
	effWeights := ComputeEffectiveness(eff.PrevScore, eff.CurrScore, eff.MainSounds, eff.SubSounds)

	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		pref := prefWeights[c.Entry.ID]
		effW := effWeights[c.Entry.ID]
		scored[i] = ScoredCandidate{
			Candidate: c,
			Score:     c.Similarity + alpha*pref + beta*effW,
			Components: Components{
				Similarity:    c.Similarity,
				Preference:    pref,
				Effectiveness: effW,
			},
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	return scored
}

// Annotate assigns 1-based ranks and the "top"/"none" preference marker to
// an already-sorted list. The marker reflects membership in the preferred
// list only; it never alters scores or order.
func Annotate(sorted []ScoredCandidate, preferredIDs []string) {
	preferred := make(map[string]struct{}, len(preferredIDs))
	for _, id := range preferredIDs {
		preferred[id] = struct{}{}
	}

	for i := range sorted {
		sorted[i].Rank = i + 1
		if _, ok := preferred[sorted[i].Candidate.Entry.ID]; ok {
			sorted[i].Preference = PreferenceTop
		} else {
			sorted[i].Preference = PreferenceNone
		}
	}
}
