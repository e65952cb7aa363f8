// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package server

import (
	"context"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/knowledge"
	"github.com/prmsu-dev/handbook/internal/provider"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// IsNotFound reports whether err carries a not-found code, so handlers can
// distinguish "not found" from internal failures.
func IsNotFound(err error) bool {
	return hberr.IsNotFound(err)
}

// KnowledgeService exposes the read-only topic listing.
// *knowledge.Store satisfies it.
type KnowledgeService interface {
	Len() int
	Topics() []knowledge.Topic
	Lookup(key string) (knowledge.Topic, error)
}

// ProviderService reports and refreshes generative provider health.
// Any provider.Provider satisfies it.
type ProviderService interface {
	Probe(ctx context.Context) error
	Status(ctx context.Context) provider.Status
}

// CacheStatser is implemented by askers that memoize answers.
type CacheStatser interface {
	Stats() answer.CacheStats
}

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
// Use NewServices constructor to ensure all required services are provided.
type Services struct {
	asker     answer.Asker
	knowledge KnowledgeService
	source    string
	provider  ProviderService // optional; nil = no generative health
}

// NewServices creates a Services instance with validation. source names
// where the knowledge base came from ("embedded" or a file path).
// The optional providers variadic parameter sets the generative provider.
func NewServices(asker answer.Asker, kb KnowledgeService, source string, providers ...ProviderService) (*Services, error) {
	if asker == nil {
		return nil, hberr.New(hberr.CodeServerConfigInvalid, "answer service is required")
	}
	if kb == nil {
		return nil, hberr.New(hberr.CodeServerConfigInvalid, "knowledge service is required")
	}
	if len(providers) > 1 {
		return nil, hberr.New(hberr.CodeServerConfigInvalid, "at most one provider service may be supplied")
	}

	s := &Services{
		asker:     asker,
		knowledge: kb,
		source:    source,
	}
	if len(providers) > 0 && providers[0] != nil {
		s.provider = providers[0]
	}
	return s, nil
}

// Asker returns the question answering service.
func (s *Services) Asker() answer.Asker {
	return s.asker
}

// Knowledge returns the topic service.
func (s *Services) Knowledge() KnowledgeService {
	return s.knowledge
}

// Provider returns the optional generative provider, or nil.
func (s *Services) Provider() ProviderService {
	return s.provider
}

// KnowledgeBase reports "embedded" for the compiled-in handbook and "file"
// otherwise.
func (s *Services) KnowledgeBase() string {
	if s.source == "" || s.source == "embedded" {
		return "embedded"
	}
	return "file"
}
