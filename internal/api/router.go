// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package api exposes the recommendation pipeline over HTTP. Every endpoint
// answers with the APIResponse envelope; Prometheus metrics are served
// unversioned at /metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kooala/somnographus/internal/config"
	"github.com/kooala/somnographus/internal/metrics"
	"github.com/kooala/somnographus/internal/models"
)

// NewRouter assembles the chi router: global middleware, versioned API
// routes, and the metrics endpoint.
func NewRouter(h *Handler, cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(requestMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.Security.RateLimitDisabled {
			r.Use(rateLimiter(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))
		}

		r.Get("/health", h.Health)
		r.Post("/sleep/summary", h.SleepSummary)

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", h.SurveyRecommendation)
			r.Post("/sleep", h.CombinedRecommendation)
			r.Post("/user/{userID}", h.UserRecommendation)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimiter builds a per-IP limiter that answers over-limit requests with
// the standard error envelope instead of httprate's plain-text body.
func rateLimiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, models.ErrCodeRateLimit, "rate limit exceeded", nil)
		}),
	)
}

// requestMetrics records per-request counters and latency. The route pattern
// is used as the endpoint label so path parameters do not explode
// cardinality.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.ObserveAPIRequest(r.Method, endpoint, ww.Status(), time.Since(start))
	})
}
