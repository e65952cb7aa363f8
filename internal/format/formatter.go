// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package format

import (
	"strings"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// Category is a presentation template chosen by keywords in the question.
type Category struct {
	Name  string   `yaml:"name"`
	Label string   `yaml:"label"`
	Any   []string `yaml:"any,omitempty"`
}

// Formatter wraps facts with the label of the first category whose keywords
// occur in the question. The fallback category catches everything else.
type Formatter struct {
	categories []Category
	fallback   Category
}

// NewFormatter builds a Formatter. Categories are tested in the given order.
func NewFormatter(categories []Category, fallback Category) (*Formatter, error) {
	if strings.TrimSpace(fallback.Label) == "" {
		return nil, hberr.New(hberr.CodeKnowledgeFormatInvalid, "default category needs a label")
	}
	if fallback.Name == "" {
		fallback.Name = "default"
	}
	fallback.Any = nil

	f := &Formatter{
		categories: make([]Category, 0, len(categories)),
		fallback:   fallback,
	}
	for i, c := range categories {
		if c.Name == "" || strings.TrimSpace(c.Label) == "" {
			return nil, hberr.Errorf(hberr.CodeKnowledgeFormatInvalid, "category #%d needs a name and a label", i)
		}
		any := make([]string, 0, len(c.Any))
		for _, kw := range c.Any {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				any = append(any, kw)
			}
		}
		if len(any) == 0 {
			return nil, hberr.New(hberr.CodeKnowledgeFormatInvalid, "category has no keywords", hberr.Field("category", c.Name))
		}
		c.Any = any
		f.categories = append(f.categories, c)
	}

	return f, nil
}

// Classify returns the category question falls into.
func (f *Formatter) Classify(question string) Category {
	q := strings.ToLower(question)
	for _, c := range f.categories {
		for _, kw := range c.Any {
			if strings.Contains(q, kw) {
				return c
			}
		}
	}
	return f.fallback
}

// Format prefixes fact with the label of the question's category.
func (f *Formatter) Format(fact, question string) string {
	return f.Classify(question).Label + "\n" + fact
}
