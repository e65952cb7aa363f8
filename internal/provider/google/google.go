// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package google

import (
	"context"

	"github.com/prmsu-dev/handbook/internal/provider"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"google.golang.org/genai"
)

const name = "google"

// DefaultModel is reported when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Provider probes the Gemini API.
type Provider struct {
	client *genai.Client
	config provider.Config
	health *provider.HealthTracker
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Google provider. The API key is required.
func New(cfg provider.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, hberr.New(hberr.CodeProviderRequestInvalid, "google: missing api_key", hberr.FieldProvider(name))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, hberr.Wrap(err, hberr.CodeProviderUpstreamFailure, "google: creating client", hberr.FieldProvider(name))
	}

	h, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: client,
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
		_, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
		return err
	})
}

func (p *Provider) Status(_ context.Context) provider.Status {
	return provider.StatusOf(name, p.config.Model, p.health)
}

func (p *Provider) Close() error { return nil }
