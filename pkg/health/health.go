// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package health

import "time"

// Metrics is a point-in-time snapshot of a dependency's health, safe to
// serialize to JSON.
type Metrics struct {
	Available     bool       `json:"available"`
	FailureCount  int64      `json:"failure_count"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}
