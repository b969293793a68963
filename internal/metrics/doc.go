// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package metrics provides Prometheus instrumentation for the
// recommendation pipeline and its model-backed collaborators.
package metrics
