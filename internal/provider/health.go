// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package provider

import (
	"context"
	"sync"
	"time"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/prmsu-dev/handbook/pkg/health"
)

// DefaultHealthCooldown is how long a failed provider is reported as
// unavailable before it is considered worth probing again.
const DefaultHealthCooldown = 30 * time.Second

// HealthTracker records probe outcomes. A provider is healthy until a probe
// fails; after a failure it stays unhealthy for the cooldown period or until
// a probe succeeds.
type HealthTracker struct {
	mu           sync.RWMutex
	healthy      bool
	failedAt     time.Time
	succeededAt  time.Time
	lastErr      string
	cooldown     time.Duration
	failureCount int64
	nowFunc      func() time.Time
}

// NewHealthTracker creates a HealthTracker that starts healthy.
func NewHealthTracker(cooldown time.Duration) (*HealthTracker, error) {
	if cooldown <= 0 {
		return nil, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"health tracker cooldown must be positive, got %s", cooldown)
	}
	return &HealthTracker{
		healthy:  true,
		cooldown: cooldown,
		nowFunc:  time.Now,
	}, nil
}

// isHealthyLocked requires h.mu to be held.
func (h *HealthTracker) isHealthyLocked() bool {
	if h.healthy {
		return true
	}
	return h.nowFunc().Sub(h.failedAt) >= h.cooldown
}

// IsHealthy reports whether the last probe succeeded or the cooldown elapsed.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isHealthyLocked()
}

// Record stores the outcome of a probe. A nil err is a success.
func (h *HealthTracker) Record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err == nil {
		h.healthy = true
		h.succeededAt = h.nowFunc()
		h.lastErr = ""
		return
	}
	h.healthy = false
	h.failedAt = h.nowFunc()
	h.lastErr = err.Error()
	h.failureCount++
}

// SetNowFunc overrides the time source.
func (h *HealthTracker) SetNowFunc(fn func() time.Time) {
	h.mu.Lock()
	h.nowFunc = fn
	h.mu.Unlock()
}

// HealthMetrics returns a snapshot that shares no state with the tracker.
func (h *HealthTracker) HealthMetrics() health.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := health.Metrics{
		Available:    h.isHealthyLocked(),
		FailureCount: h.failureCount,
		LastError:    h.lastErr,
	}
	if !h.succeededAt.IsZero() {
		t := h.succeededAt
		m.LastSuccessAt = &t
	}
	if h.failureCount > 0 {
		t := h.failedAt
		m.LastFailureAt = &t
	}
	if !h.healthy {
		until := h.failedAt.Add(h.cooldown)
		m.CooldownUntil = &until
	}
	return m
}

// RunProbe calls fn under the configured timeout, records the outcome on h
// and wraps failures as upstream errors for name.
func RunProbe(ctx context.Context, name string, cfg Config, h *HealthTracker, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	err := fn(ctx)
	if err != nil {
		err = hberr.Wrap(err, hberr.CodeProviderUpstreamFailure, "probing provider", hberr.FieldProvider(name))
	}
	h.Record(err)
	return err
}
