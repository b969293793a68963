// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package profile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kooala/somnographus/internal/logging"
	"github.com/kooala/somnographus/internal/metrics"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL}, logging.NewTestLogger(io.Discard))
}

func TestSampleModeServesBuiltins(t *testing.T) {
	c := testClient("")
	require.True(t, c.SampleMode())

	sleep, err := c.FetchSleep(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, sleep.Current)
	assert.Equal(t, 75, sleep.Current.SleepScore)
	assert.Len(t, sleep.PreferredSounds, 3)

	survey, err := c.FetchSurvey(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "improveSleepQuality", survey.SleepGoal)
}

func TestFetchSleep_DirectPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sleep-data/user/user-1/last", r.URL.Path)
		w.Write([]byte(`{
			"previous": {"sleepScore": 60, "deepSleepRatio": 0.1},
			"current": {"sleepScore": 72, "deepSleepRatio": 0.2},
			"preferredSounds": ["RAIN_1.mp3"]
		}`))
	}))
	defer srv.Close()

	sleep, err := testClient(srv.URL).FetchSleep(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 72, sleep.Current.SleepScore)
	assert.Equal(t, 60, sleep.Previous.SleepScore)
	assert.Equal(t, []string{"RAIN_1.mp3"}, sleep.PreferredSounds)
}

func TestFetchSurvey_EnvelopedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/survey/user-1/result", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": {"sleepGoal": "fallAsleepFaster", "stressLevel": "low"}}`))
	}))
	defer srv.Close()

	survey, err := testClient(srv.URL).FetchSurvey(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "fallAsleepFaster", survey.SleepGoal)
	assert.Equal(t, "low", survey.StressLevel)
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchSleep(context.Background(), "user-1")
	assert.Error(t, err)

	_, err = testClient(srv.URL).FetchSurvey(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestFetchCombined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sleep-data/user/user-1/last":
			w.Write([]byte(`{
				"previous": {"sleepScore": 68},
				"current": {"sleepScore": 75},
				"preferredSounds": ["NATURE_1_WATER.mp3"],
				"previousRecommendations": ["FIRE_2.mp3"]
			}`))
		case "/users/survey/user-1/result":
			w.Write([]byte(`{"success": true, "data": {"sleepGoal": "improveSleepQuality"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	before := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.FlowProfile, "ok"))

	combined, err := testClient(srv.URL).FetchCombined(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.FlowProfile, "ok"))-before)
	assert.Equal(t, "user-1", combined.UserID)
	assert.Equal(t, 75, combined.Current.SleepScore)
	assert.Equal(t, []string{"NATURE_1_WATER.mp3"}, combined.PreferredSounds)
	assert.Equal(t, []string{"FIRE_2.mp3"}, combined.PreviousRecommendations)
	assert.Equal(t, "improveSleepQuality", combined.SleepGoal)
}

func TestFetchCombined_SleepFailureWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/survey/user-1/result" {
			w.Write([]byte(`{"sleepGoal": "improveSleepQuality"}`))
			return
		}
		http.Error(w, "unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	before := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.FlowProfile, "error"))

	_, err := testClient(srv.URL).FetchCombined(context.Background(), "user-1")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.FlowProfile, "error"))-before)
}
