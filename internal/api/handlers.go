// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kooala/somnographus/internal/models"
	"github.com/kooala/somnographus/internal/summarize"
)

// Recommender is the slice of the recommendation engine the handlers need.
type Recommender interface {
	RecommendSurvey(ctx context.Context, req *models.SurveyRecommendationRequest) (*models.RecommendationResponse, error)
	RecommendCombined(ctx context.Context, req *models.CombinedRecommendationRequest) (*models.RecommendationResponse, error)
	SummarizeSleep(req *models.SleepSummaryRequest) *summarize.Report
}

// ProfileSource resolves a user's survey and sleep data from the main server
// (or built-in samples when unconfigured).
type ProfileSource interface {
	FetchCombined(ctx context.Context, userID string) (*models.CombinedRecommendationRequest, error)
}

// IndexStats exposes the catalog index figures reported by the health
// endpoint.
type IndexStats interface {
	Size() int
	Dimension() int
}

// Handler contains dependencies for API handlers.
type Handler struct {
	engine   Recommender
	profiles ProfileSource
	index    IndexStats

	// breakerState reports the essay generator's circuit breaker state.
	// nil when no breaker is wired (tests).
	breakerState func() string

	startTime time.Time
}

// NewHandler creates an API handler. breakerState may be nil.
func NewHandler(engine Recommender, profiles ProfileSource, index IndexStats, breakerState func() string) *Handler {
	return &Handler{
		engine:       engine,
		profiles:     profiles,
		index:        index,
		breakerState: breakerState,
		startTime:    time.Now(),
	}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status           string `json:"status"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	IndexSize        int    `json:"index_size"`
	IndexDimension   int    `json:"index_dimension"`
	GeneratorBreaker string `json:"generator_breaker"`
}

// SurveyRecommendation handles POST /api/v1/recommendations.
func (h *Handler) SurveyRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SurveyRecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body", err)
		return
	}

	resp, err := h.engine.RecommendSurvey(r.Context(), &req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodePipeline, "recommendation pipeline failed", err)
		return
	}

	h.respondSuccess(w, r, resp, start)
}

// CombinedRecommendation handles POST /api/v1/recommendations/sleep.
func (h *Handler) CombinedRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CombinedRecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, err := h.engine.RecommendCombined(r.Context(), &req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodePipeline, "recommendation pipeline failed", err)
		return
	}

	h.respondSuccess(w, r, resp, start)
}

// UserRecommendation handles POST /api/v1/recommendations/user/{userID}: it
// resolves the user's profile bundle and runs the combined flow on it.
func (h *Handler) UserRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "userID is required", nil)
		return
	}

	req, err := h.profiles.FetchCombined(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusBadGateway, models.ErrCodeProfile, "could not fetch user profile", err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadGateway, models.ErrCodeProfile, err.Error(), nil)
		return
	}

	resp, err := h.engine.RecommendCombined(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodePipeline, "recommendation pipeline failed", err)
		return
	}

	h.respondSuccess(w, r, resp, start)
}

// SleepSummary handles POST /api/v1/sleep/summary: sleep evaluation without
// retrieval or generation.
func (h *Handler) SleepSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SleepSummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	h.respondSuccess(w, r, h.engine.SummarizeSleep(&req), start)
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	breaker := "unknown"
	if h.breakerState != nil {
		breaker = h.breakerState()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: HealthStatus{
			Status:           "ok",
			UptimeSeconds:    int64(time.Since(h.startTime).Seconds()),
			IndexSize:        h.index.Size(),
			IndexDimension:   h.index.Dimension(),
			GeneratorBreaker: breaker,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	})
}

func (h *Handler) respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:      time.Now(),
			RequestID:      chimiddleware.GetReqID(r.Context()),
			PipelineTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
