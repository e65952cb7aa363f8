// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"errors"
	"log/slog"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/config"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/prmsu-dev/handbook/internal/provider"
	anthropicprov "github.com/prmsu-dev/handbook/internal/provider/anthropic"
	googleprov "github.com/prmsu-dev/handbook/internal/provider/google"
	openaiprov "github.com/prmsu-dev/handbook/internal/provider/openai"
	"github.com/prmsu-dev/handbook/internal/secrets"
	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Config   *config.Config
	Handbook *handbook.Handbook
	Pipeline *answer.Pipeline
	// Cache is nil when the answer cache is disabled.
	Cache *answer.Cache
	// Provider is nil when no generative provider is configured or it
	// could not be created.
	Provider provider.Provider
}

// loadKnowledge loads the configured handbook and builds its pipeline.
func loadKnowledge(cfg *config.Config) (*handbook.Handbook, *answer.Pipeline, error) {
	hb, err := handbook.Load(cfg.Knowledge.Path)
	if err != nil {
		return nil, nil, err
	}
	if unreachable := hb.Retriever.Unreachable(); len(unreachable) > 0 {
		slog.Warn("topics not reachable by any retrieval rule", "topics", unreachable)
	}

	p, err := answer.FromHandbook(hb, nil)
	if err != nil {
		return nil, nil, hberr.Wrapf(err, hberr.CodeCLISetupFailure, "building answer pipeline")
	}
	return hb, p, nil
}

// WireApp creates all subsystems and wires them together. store resolves
// keyring references in the generative provider config.
func WireApp(cfg *config.Config, store secrets.Store) (*App, error) {
	hb, p, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("knowledge base loaded",
		"name", hb.Name,
		"source", hb.Source,
		"topics", hb.Store.Len(),
		"rules", len(hb.Retriever.Rules()),
	)

	app := &App{Config: cfg, Handbook: hb, Pipeline: p}

	if cfg.Cache.Enabled {
		app.Cache = answer.NewCache(p, cfg.Cache.TTL, cfg.Cache.CleanupInterval, cfg.Cache.MaxEntries)
	}

	if cfg.Generative.Enabled() {
		app.Provider = newGenerativeProvider(cfg, store)
	}

	return app, nil
}

// Asker returns the cached pipeline when caching is enabled.
func (a *App) Asker() answer.Asker {
	if a.Cache != nil {
		return a.Cache
	}
	return a.Pipeline
}

// NewServer builds the HTTP server over the wired services.
func (a *App) NewServer() (*server.Server, error) {
	var providers []server.ProviderService
	if a.Provider != nil {
		providers = append(providers, a.Provider)
	}

	services, err := server.NewServices(a.Asker(), a.Handbook.Store, a.Handbook.Source, providers...)
	if err != nil {
		return nil, hberr.Errorf(hberr.CodeCLISetupFailure, "creating services: %w", err)
	}

	net := a.Config.Networking
	srv, err := server.New(server.Config{
		ListenAddr:     net.Listen,
		CORSOrigins:    net.CORSOrigins,
		ReadTimeout:    net.ReadTimeout,
		WriteTimeout:   net.WriteTimeout,
		TrustedProxies: net.TrustedProxies,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: net.RateLimitRPS,
			Burst:             net.RateLimitBurst,
		},
		Version: version,
	}, services)
	if err != nil {
		return nil, hberr.Errorf(hberr.CodeCLISetupFailure, "creating server: %w", err)
	}
	return srv, nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	var errs []error
	if a.Provider != nil {
		if err := a.Provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Cache != nil {
		a.Cache.Flush()
	}
	return errors.Join(errs...)
}

// providerFactory builds a provider.Provider from shared provider settings.
type providerFactory func(provider.Config) (provider.Provider, error)

// builtinProviderFactories maps provider names to their constructors.
// Declared as a variable so tests can inject failing factories.
var builtinProviderFactories = map[string]providerFactory{
	"anthropic": func(pc provider.Config) (provider.Provider, error) {
		return anthropicprov.New(pc)
	},
	"google": func(pc provider.Config) (provider.Provider, error) {
		return googleprov.New(pc)
	},
	"openai": func(pc provider.Config) (provider.Provider, error) {
		return openaiprov.New(pc)
	},
}

// newGenerativeProvider resolves the API key and builds the configured
// provider. Failures are logged and leave the service without one; the
// provider never answers questions, so it is not fatal at startup.
func newGenerativeProvider(cfg *config.Config, store secrets.Store) provider.Provider {
	gen := cfg.Generative

	if secrets.IsKeyringURI(gen.APIKey) {
		if store == nil {
			slog.Warn("generative provider api_key references the keyring but no secret store is available",
				"provider", gen.Provider)
			return nil
		}
		resolved := *cfg
		if err := secrets.ResolveConfig(&resolved, store); err != nil {
			slog.Warn("failed to resolve generative provider api_key", "provider", gen.Provider, "error", err)
			return nil
		}
		gen = resolved.Generative
	}

	factory, ok := builtinProviderFactories[gen.Provider]
	if !ok {
		slog.Warn("unknown generative provider in config, skipping", "provider", gen.Provider)
		return nil
	}
	p, err := factory(provider.Config{
		APIKey:  gen.APIKey,
		Model:   gen.Model,
		BaseURL: gen.BaseURL,
	})
	if err != nil {
		slog.Warn("failed to create generative provider", "provider", gen.Provider, "error", err)
		return nil
	}
	slog.Info("registered generative provider", "provider", p.Name(), "model", p.Model())
	return p
}
