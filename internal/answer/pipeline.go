// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package answer

import (
	"log/slog"
	"time"

	"github.com/prmsu-dev/handbook/internal/format"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/prmsu-dev/handbook/internal/relevance"
	"github.com/prmsu-dev/handbook/internal/retrieval"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// Outcome is which branch of the pipeline produced an answer.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeOutOfDomain Outcome = "out_of_domain"
	OutcomeNotFound    Outcome = "not_found"
)

// Answer is the result of one question.
type Answer struct {
	Question string
	Text     string
	// Sources is the number of candidate facts retrieved; only the first is shown.
	Sources  int
	Elapsed  time.Duration
	Outcome  Outcome
	Category string
}

// Asker answers questions. Implementations must be safe for concurrent use.
type Asker interface {
	Answer(question string) Answer
}

// Config wires a Pipeline.
type Config struct {
	Filter    *relevance.Filter
	Retriever *retrieval.Retriever
	Formatter *format.Formatter
	Refusal   string
	Fallback  string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Pipeline runs relevance filtering, retrieval and formatting. It holds no
// mutable state and is safe for concurrent use.
type Pipeline struct {
	filter    *relevance.Filter
	retriever *retrieval.Retriever
	formatter *format.Formatter
	refusal   string
	fallback  string
	now       func() time.Time
}

var _ Asker = (*Pipeline)(nil)

// NewPipeline validates cfg and returns a Pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Filter == nil || cfg.Retriever == nil || cfg.Formatter == nil {
		return nil, hberr.New(hberr.CodeKnowledgeLoadInvalidFormat, "pipeline requires filter, retriever and formatter")
	}
	if cfg.Refusal == "" || cfg.Fallback == "" {
		return nil, hberr.New(hberr.CodeKnowledgeLoadInvalidFormat, "pipeline requires refusal and fallback texts")
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		filter:    cfg.Filter,
		retriever: cfg.Retriever,
		formatter: cfg.Formatter,
		refusal:   cfg.Refusal,
		fallback:  cfg.Fallback,
		now:       now,
	}, nil
}

// FromHandbook builds a Pipeline over hb's components.
func FromHandbook(hb *handbook.Handbook, clock func() time.Time) (*Pipeline, error) {
	if hb == nil {
		return nil, hberr.New(hberr.CodeKnowledgeLoadInvalidFormat, "handbook is required")
	}
	return NewPipeline(Config{
		Filter:    hb.Filter,
		Retriever: hb.Retriever,
		Formatter: hb.Formatter,
		Refusal:   hb.Refusal,
		Fallback:  hb.Fallback,
		Clock:     clock,
	})
}

// Answer runs question through the pipeline. It never fails; blank input
// must be rejected by the caller.
func (p *Pipeline) Answer(question string) Answer {
	start := p.now()
	a := Answer{Question: question}

	if verdict := p.filter.Explain(question); !verdict.Relevant {
		slog.Debug("question out of domain", "decision", verdict.Decision, "match", verdict.Match)
		a.Text = p.refusal
		a.Outcome = OutcomeOutOfDomain
		a.Elapsed = p.now().Sub(start)
		return a
	}

	candidates := p.retriever.Retrieve(question)
	a.Category = p.formatter.Classify(question).Name
	if len(candidates) == 0 {
		// The fallback is labelled like any other answer.
		a.Text = p.formatter.Format(p.fallback, question)
		a.Outcome = OutcomeNotFound
	} else {
		a.Text = p.formatter.Format(candidates[0], question)
		a.Sources = len(candidates)
		a.Outcome = OutcomeAnswered
	}

	a.Elapsed = p.now().Sub(start)
	return a
}
