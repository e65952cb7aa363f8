// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

// Package provider defines the optional generative-model collaborator. The
// handbook never sends questions to it; the service only probes the
// configured provider so that operators can see its health next to the
// knowledge base.
package provider

import (
	"context"
	"time"

	"github.com/prmsu-dev/handbook/pkg/health"
)

// Provider is a generative-model backend that can be probed for reachability.
type Provider interface {
	Name() string
	// Model is the configured model identifier, possibly empty.
	Model() string
	// Available reports the last known health without network I/O.
	Available(ctx context.Context) bool
	// Probe performs a lightweight authenticated call and records the outcome.
	Probe(ctx context.Context) error
	Status(ctx context.Context) Status
	Close() error
}

// Status is the health report for one provider.
type Status struct {
	Provider  string         `json:"provider"`
	Model     string         `json:"model,omitempty"`
	Available bool           `json:"available"`
	Message   string         `json:"message"`
	Health    health.Metrics `json:"health"`
}

// Config is shared by every provider implementation.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a proxy or a test server.
	BaseURL string
	// ProbeTimeout bounds each Probe call. Zero uses DefaultProbeTimeout.
	ProbeTimeout time.Duration
}

// DefaultProbeTimeout bounds a single Probe call.
const DefaultProbeTimeout = 10 * time.Second

// Timeout returns the effective probe timeout.
func (c Config) Timeout() time.Duration {
	if c.ProbeTimeout > 0 {
		return c.ProbeTimeout
	}
	return DefaultProbeTimeout
}

// StatusOf builds a Status from a tracker snapshot.
func StatusOf(name, model string, h *HealthTracker) Status {
	m := h.HealthMetrics()
	var msg string
	switch {
	case !m.Available:
		msg = "unavailable: " + m.LastError
	case m.LastError != "":
		msg = "cooldown elapsed after failure: " + m.LastError
	case m.LastSuccessAt == nil:
		msg = "not probed yet"
	default:
		msg = "ok"
	}
	return Status{
		Provider:  name,
		Model:     model,
		Available: m.Available,
		Message:   msg,
		Health:    m,
	}
}
