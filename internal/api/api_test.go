// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/kooala/somnographus/internal/config"
	"github.com/kooala/somnographus/internal/models"
	"github.com/kooala/somnographus/internal/summarize"
)

type fakeEngine struct {
	surveyReq   *models.SurveyRecommendationRequest
	combinedReq *models.CombinedRecommendationRequest
	resp        *models.RecommendationResponse
	err         error
}

func (f *fakeEngine) RecommendSurvey(_ context.Context, req *models.SurveyRecommendationRequest) (*models.RecommendationResponse, error) {
	f.surveyReq = req
	return f.resp, f.err
}

func (f *fakeEngine) RecommendCombined(_ context.Context, req *models.CombinedRecommendationRequest) (*models.RecommendationResponse, error) {
	f.combinedReq = req
	return f.resp, f.err
}

func (f *fakeEngine) SummarizeSleep(req *models.SleepSummaryRequest) *summarize.Report {
	report := summarize.SleepMetrics(req.Previous, *req.Current)
	return &report
}

type fakeProfiles struct {
	req *models.CombinedRecommendationRequest
	err error

	gotUserID string
}

func (f *fakeProfiles) FetchCombined(_ context.Context, userID string) (*models.CombinedRecommendationRequest, error) {
	f.gotUserID = userID
	return f.req, f.err
}

type fakeIndexStats struct {
	size, dim int
}

func (f fakeIndexStats) Size() int      { return f.size }
func (f fakeIndexStats) Dimension() int { return f.dim }

func testResponse() *models.RecommendationResponse {
	return &models.RecommendationResponse{
		RecommendationText: "편안한 밤 되세요.",
		RecommendedSounds: []models.RecommendedSound{
			{Filename: "RAIN_1.mp3", Category: "nature", Effect: "calming", Similarity: 0.9, Rank: 1, Preference: "none"},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

func newTestServer(t *testing.T, engine *fakeEngine, profiles *fakeProfiles, cfg *config.Config) *httptest.Server {
	t.Helper()
	h := NewHandler(engine, profiles, fakeIndexStats{size: 42, dim: 1536}, func() string { return "closed" })
	srv := httptest.NewServer(NewRouter(h, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, models.APIResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func TestSurveyRecommendation(t *testing.T) {
	engine := &fakeEngine{resp: testResponse()}
	srv := newTestServer(t, engine, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations", `{
		"userId": "user-1",
		"sleepGoal": "improveSleepQuality",
		"stressLevel": "high"
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q, want success", envelope.Status)
	}
	if engine.surveyReq == nil {
		t.Fatal("engine was not called")
	}
	if engine.surveyReq.SleepGoal != "improveSleepQuality" {
		t.Errorf("SleepGoal = %q", engine.surveyReq.SleepGoal)
	}
	if engine.surveyReq.StressLevel != "high" {
		t.Errorf("StressLevel = %q", engine.surveyReq.StressLevel)
	}

	data, _ := json.Marshal(envelope.Data)
	var rec models.RecommendationResponse
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(rec.RecommendedSounds) != 1 || rec.RecommendedSounds[0].Filename != "RAIN_1.mp3" {
		t.Errorf("unexpected sounds: %+v", rec.RecommendedSounds)
	}
}

func TestSurveyRecommendation_BadJSON(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations", `{not json`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v, want %s", envelope.Error, models.ErrCodeValidation)
	}
}

func TestSurveyRecommendation_TrailingGarbage(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations", `{"stressLevel": "high"} {"smuggled": true}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v, want %s", envelope.Error, models.ErrCodeValidation)
	}
}

func TestSurveyRecommendation_PipelineError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("index gone")}
	srv := newTestServer(t, engine, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations", `{}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodePipeline {
		t.Errorf("error = %+v, want %s", envelope.Error, models.ErrCodePipeline)
	}
}

func TestCombinedRecommendation(t *testing.T) {
	engine := &fakeEngine{resp: testResponse()}
	srv := newTestServer(t, engine, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations/sleep", `{
		"current": {"sleepScore": 75, "deepSleepRatio": 0.2},
		"previous": {"sleepScore": 68, "deepSleepRatio": 0.1},
		"preferredSounds": ["RAIN_1.mp3"],
		"preferenceMode": "preference"
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
	if engine.combinedReq == nil {
		t.Fatal("engine was not called")
	}
	if engine.combinedReq.Current.SleepScore != 75 {
		t.Errorf("Current.SleepScore = %d", engine.combinedReq.Current.SleepScore)
	}
	if engine.combinedReq.PreferenceMode != "preference" {
		t.Errorf("PreferenceMode = %q", engine.combinedReq.PreferenceMode)
	}
}

func TestCombinedRecommendation_MissingCurrent(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations/sleep", `{"previous": {"sleepScore": 68}}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestCombinedRecommendation_BalanceOutOfRange(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, &fakeProfiles{}, testConfig())

	resp, _ := postJSON(t, srv.URL+"/api/v1/recommendations/sleep", `{
		"current": {"sleepScore": 75},
		"preferenceBalance": 11
	}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUserRecommendation(t *testing.T) {
	engine := &fakeEngine{resp: testResponse()}
	profiles := &fakeProfiles{
		req: &models.CombinedRecommendationRequest{
			UserID:  "user-7",
			Current: &summarize.Metrics{SleepScore: 80},
		},
	}
	srv := newTestServer(t, engine, profiles, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations/user/user-7", `{}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
	if profiles.gotUserID != "user-7" {
		t.Errorf("fetched userID = %q, want user-7", profiles.gotUserID)
	}
	if engine.combinedReq == nil || engine.combinedReq.UserID != "user-7" {
		t.Errorf("engine request = %+v", engine.combinedReq)
	}
}

func TestUserRecommendation_ProfileError(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("upstream down")}
	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, profiles, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/recommendations/user/user-7", `{}`)

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeProfile {
		t.Errorf("error = %+v, want %s", envelope.Error, models.ErrCodeProfile)
	}
}

func TestSleepSummary(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{}, &fakeProfiles{}, testConfig())

	resp, envelope := postJSON(t, srv.URL+"/api/v1/sleep/summary", `{
		"current": {"sleepScore": 75, "deepSleepRatio": 0.2, "remSleepRatio": 0.22, "lightSleepRatio": 0.48, "awakeRatio": 0.1},
		"previous": {"sleepScore": 68, "deepSleepRatio": 0.15, "remSleepRatio": 0.2, "lightSleepRatio": 0.5, "awakeRatio": 0.15}
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var report summarize.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary == "" {
		t.Error("empty summary")
	}
	if report.Deltas == nil {
		t.Fatal("expected deltas with previous metrics present")
	}
	if report.Deltas.Score != 7 {
		t.Errorf("score delta = %v, want 7", report.Deltas.Score)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{}, &fakeProfiles{}, testConfig())

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(envelope.Data)
	var health HealthStatus
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("health status = %q", health.Status)
	}
	if health.IndexSize != 42 || health.IndexDimension != 1536 {
		t.Errorf("index stats = %d/%d, want 42/1536", health.IndexSize, health.IndexDimension)
	}
	if health.GeneratorBreaker != "closed" {
		t.Errorf("breaker = %q, want closed", health.GeneratorBreaker)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeEngine{}, &fakeProfiles{}, testConfig())

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute

	srv := newTestServer(t, &fakeEngine{resp: testResponse()}, &fakeProfiles{}, cfg)

	var last *http.Response
	var envelope models.APIResponse
	for i := 0; i < 3; i++ {
		last, envelope = postJSON(t, srv.URL+"/api/v1/recommendations", `{}`)
	}

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeRateLimit {
		t.Errorf("error = %+v, want %s", envelope.Error, models.ErrCodeRateLimit)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("line1\nline2\tend")
	if strings.ContainsAny(got, "\n\t") {
		t.Errorf("control characters survived: %q", got)
	}
	if got != `line1\x0aline2\x09end` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
