// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package models

import (
	"time"
)

// APIResponse is the standardized wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"recommendation_text": "...", "recommended_sounds": [...]},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z", "pipeline_time_ms": 840}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "invalid request body"},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains per-response observability fields. PipelineTimeMS covers
// the whole recommendation pipeline including model calls, so values in the
// hundreds of milliseconds are normal.
type Metadata struct {
	Timestamp      time.Time `json:"timestamp"`
	RequestID      string    `json:"request_id,omitempty"`
	PipelineTimeMS int64     `json:"pipeline_time_ms,omitempty"`
}

// APIError carries structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Malformed or missing request fields
//   - PROFILE_ERROR: The user-profile service could not be reached
//   - PIPELINE_ERROR: The recommendation pipeline failed unrecoverably
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used across the API layer.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeProfile    = "PROFILE_ERROR"
	ErrCodePipeline   = "PIPELINE_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeRateLimit  = "RATE_LIMIT_EXCEEDED"
)
