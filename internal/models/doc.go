// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

// Package models defines the wire-level request and response types shared by
// the HTTP API and the recommendation engine, plus the standardized response
// envelope every endpoint uses.
package models
