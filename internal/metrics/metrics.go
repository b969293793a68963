// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Flow label values for pipeline metrics.
const (
	FlowSurvey   = "survey"
	FlowCombined = "combined"
	FlowSleep    = "sleep"
	FlowProfile  = "profile"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Model calls dominate latency
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_pipeline_runs_total",
			Help: "Total number of recommendation pipeline executions",
		},
		[]string{"flow", "outcome"}, // outcome: "ok", "error"
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_pipeline_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"flow"},
	)

	IndexQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_query_duration_seconds",
			Help:    "Duration of nearest-neighbor index queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Model Call Metrics
	EmbeddingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_failures_total",
			Help: "Total number of embedding calls that fell back to the zero vector",
		},
	)

	GenerationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_fallbacks_total",
			Help: "Total number of recommendation texts served from the deterministic fallback",
		},
	)

	TranslationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_fallbacks_total",
			Help: "Total number of free-text answers kept untranslated after a failure",
		},
	)

	// Profile Service Metrics
	ProfileFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_fetch_errors_total",
			Help: "Total number of user-profile fetch failures",
		},
		[]string{"resource"}, // "survey", "sleep"
	)
)

// ObserveAPIRequest records one completed HTTP request.
func ObserveAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObservePipeline records one pipeline execution.
func ObservePipeline(flow string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PipelineRuns.WithLabelValues(flow, outcome).Inc()
	PipelineDuration.WithLabelValues(flow).Observe(duration.Seconds())
}
