// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package anthropic

import (
	"context"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prmsu-dev/handbook/internal/provider"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

const name = "anthropic"

// DefaultModel is reported when no model is configured.
const DefaultModel = "claude-haiku-4-5"

// Provider probes the Anthropic API.
type Provider struct {
	client anthropicsdk.Client
	config provider.Config
	health *provider.HealthTracker
}

var _ provider.Provider = (*Provider)(nil)

// New creates an Anthropic provider. The API key is required.
func New(cfg provider.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, hberr.New(hberr.CodeProviderRequestInvalid, "anthropic: missing api_key", hberr.FieldProvider(name))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Probes report health; retrying would only delay the report.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	h, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: anthropicsdk.NewClient(opts...),
		config: cfg,
		health: h,
	}, nil
}

func (p *Provider) Name() string  { return name }
func (p *Provider) Model() string { return p.config.Model }

func (p *Provider) Available(_ context.Context) bool {
	return p.health.IsHealthy()
}

// Probe lists models, which authenticates the key without spending tokens.
func (p *Provider) Probe(ctx context.Context) error {
	return provider.RunProbe(ctx, name, p.config, p.health, func(ctx context.Context) error {
		_, err := p.client.Models.List(ctx, anthropicsdk.ModelListParams{})
		return err
	})
}

func (p *Provider) Status(_ context.Context) provider.Status {
	return provider.StatusOf(name, p.config.Model, p.health)
}

func (p *Provider) Close() error { return nil }
