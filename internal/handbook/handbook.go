// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

// Package handbook loads a handbook document and assembles the knowledge
// store, relevance filter, retriever and formatter it describes.
package handbook

import (
	_ "embed"
	"os"
	"strings"

	"github.com/prmsu-dev/handbook/internal/format"
	"github.com/prmsu-dev/handbook/internal/knowledge"
	"github.com/prmsu-dev/handbook/internal/relevance"
	"github.com/prmsu-dev/handbook/internal/retrieval"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SourceEmbedded is reported as the source of the compiled-in handbook.
const SourceEmbedded = "embedded"

//go:embed handbook.yaml
var embeddedYAML []byte

// Document is the on-disk shape of a handbook.
type Document struct {
	Name         string            `yaml:"name"`
	Topics       []knowledge.Topic `yaml:"topics"`
	Rules        []retrieval.Rule  `yaml:"rules"`
	Relevance    RelevanceSection  `yaml:"relevance"`
	Presentation Presentation      `yaml:"presentation"`
	Responses    Responses         `yaml:"responses"`
}

// RelevanceSection holds the out-of-domain patterns and domain keywords.
type RelevanceSection struct {
	Reject []string `yaml:"reject"`
	Accept []string `yaml:"accept"`
}

// Presentation holds the answer categories in priority order.
type Presentation struct {
	Categories []format.Category `yaml:"categories"`
	Default    format.Category   `yaml:"default"`
}

// Responses holds the canned texts for the two non-answer outcomes.
type Responses struct {
	Refusal  string `yaml:"refusal"`
	Fallback string `yaml:"fallback"`
}

// Handbook is a fully validated, read-only handbook.
type Handbook struct {
	Name   string
	Source string

	Store     *knowledge.Store
	Filter    *relevance.Filter
	Retriever *retrieval.Retriever
	Formatter *format.Formatter

	Refusal  string
	Fallback string
}

// Default returns the embedded handbook.
func Default() (*Handbook, error) {
	return Parse(embeddedYAML, SourceEmbedded)
}

// EmbeddedYAML returns a copy of the embedded handbook document.
func EmbeddedYAML() []byte {
	return append([]byte(nil), embeddedYAML...)
}

// Load reads the handbook at path, or the embedded one when path is empty.
func Load(path string) (*Handbook, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hberr.Wrap(err, hberr.CodeKnowledgeLoadReadFailure, "reading handbook", hberr.FieldPath(path))
	}
	return Parse(data, path)
}

// Parse decodes and validates a handbook document. source is recorded on
// the result for health reporting.
func Parse(data []byte, source string) (*Handbook, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, hberr.Wrap(err, hberr.CodeKnowledgeLoadInvalidFormat, "decoding handbook", hberr.FieldPath(source))
	}
	return Build(doc, source)
}

// Build assembles the pipeline components described by doc.
func Build(doc Document, source string) (*Handbook, error) {
	if len(doc.Topics) == 0 {
		return nil, hberr.New(hberr.CodeKnowledgeLoadInvalidFormat, "handbook has no topics", hberr.FieldPath(source))
	}
	if strings.TrimSpace(doc.Responses.Refusal) == "" || strings.TrimSpace(doc.Responses.Fallback) == "" {
		return nil, hberr.New(hberr.CodeKnowledgeLoadInvalidFormat,
			"handbook needs both refusal and fallback responses", hberr.FieldPath(source))
	}

	store, err := knowledge.NewStore(doc.Topics)
	if err != nil {
		return nil, err
	}
	filter, err := relevance.NewFilter(doc.Relevance.Reject, doc.Relevance.Accept)
	if err != nil {
		return nil, err
	}
	retriever, err := retrieval.NewRetriever(store, doc.Rules)
	if err != nil {
		return nil, err
	}
	formatter, err := format.NewFormatter(doc.Presentation.Categories, doc.Presentation.Default)
	if err != nil {
		return nil, err
	}

	name := doc.Name
	if name == "" {
		name = "Student Handbook"
	}

	return &Handbook{
		Name:      name,
		Source:    source,
		Store:     store,
		Filter:    filter,
		Retriever: retriever,
		Formatter: formatter,
		Refusal:   doc.Responses.Refusal,
		Fallback:  doc.Responses.Fallback,
	}, nil
}
