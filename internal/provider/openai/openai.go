// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/prmsu-dev/handbook/internal/provider"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

const name = "openai"

// DefaultModel is reported when no model is configured.
const DefaultModel = "gpt-4.1-mini"

// Provider probes the OpenAI API or any compatible endpoint.
type Provider struct {
	client openaisdk.Client
	config provider.Config
	health *provider.HealthTracker
}

var _ provider.Provider = (*Provider)(nil)

// New creates an OpenAI provider. The API key is required.
func New(cfg provider.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, hberr.New(hberr.CodeProviderRequestInvalid, "openai: missing api_key", hberr.FieldProvider(name))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
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
		client: openaisdk.NewClient(opts...),
		config: cfg,
		health: h,
	}, nil
}

func (p *Provider) Name() string  { return name }
func (p *Provider) Model() string { return p.config.Model }

func (p *Provider) Available(_ context.Context) bool {
	return p.health.IsHealthy()
}

func (p *Provider) Probe(ctx context.Context) error {
	return provider.RunProbe(ctx, name, p.config, p.health, func(ctx context.Context) error {
		_, err := p.client.Models.List(ctx)
		return err
	})
}

func (p *Provider) Status(_ context.Context) provider.Status {
	return provider.StatusOf(name, p.config.Model, p.health)
}

func (p *Provider) Close() error { return nil }
