// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package profile

import (
	"github.com/kooala/somnographus/internal/summarize"
)

// sampleSleepProfile returns the built-in sleep history used when no main
// server is configured.
func sampleSleepProfile() *SleepProfile {
	return &SleepProfile{
		Previous: &summarize.Metrics{
			SleepScore:      68,
			DeepSleepRatio:  0.12,
			RemSleepRatio:   0.14,
			LightSleepRatio: 0.56,
			AwakeRatio:      0.18,
		},
		Current: &summarize.Metrics{
			SleepScore:      75,
			DeepSleepRatio:  0.17,
			RemSleepRatio:   0.19,
			LightSleepRatio: 0.51,
			AwakeRatio:      0.13,
		},
		PreferredSounds:         []string{"NATURE_1_WATER.mp3", "WHITE_2_UNDERWATER.mp3", "ASMR_2_HAIR.mp3"},
		PreviousRecommendations: []string{"ASMR_2_HAIR.mp3", "ASMR_3_TAPPING.mp3", "FIRE_2.mp3"},
	}
}

// sampleSurveySignals returns the built-in survey answers used when no main
// server is configured.
func sampleSurveySignals() *summarize.SurveySignals {
	return &summarize.SurveySignals{
		SleepGoal:             "improveSleepQuality",
		SleepIssues:           []string{"fallAsleepHard"},
		StressLevel:           "high",
		PreferredSleepSound:   "nature",
		CalmingSoundType:      "rain",
		NoisePreference:       "other",
		NoisePreferenceOther:  "파도",
		UsualBedtime:          "12to2am",
		UsualWakeupTime:       "7to9am",
		DayActivityType:       "outdoor",
		CaffeineIntakeLevel:   "none",
		ExerciseFrequency:     "sometimes",
		ScreenTimeBeforeSleep: "30minTo1hour",
	}
}
