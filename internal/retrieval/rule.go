// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package retrieval

import "strings"

// Rule maps keyword conditions on a question to the topics it emits.
//
// A rule is satisfied when every All keyword and, if Any is non-empty, at least
// one Any keyword occur in the lower-cased question. A satisfied rule emits
// the topics of its first matching Variant, or Emit when no variant matches.
type Rule struct {
	Name     string    `yaml:"name"`
	All      []string  `yaml:"all,omitempty"`
	Any      []string  `yaml:"any,omitempty"`
	Variants []Variant `yaml:"variants,omitempty"`
	Emit     []string  `yaml:"emit,omitempty"`
}

// Variant narrows a satisfied rule to a subset of its topics, e.g. one
// offense tier out of several.
type Variant struct {
	Any  []string `yaml:"any"`
	Emit []string `yaml:"emit"`
}

// Satisfied reports whether the rule's conditions hold for the lower-cased question q.
func (r Rule) Satisfied(q string) bool {
	for _, kw := range r.All {
		if !strings.Contains(q, kw) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	return containsAny(q, r.Any)
}

// Select returns the topic keys a satisfied rule emits for q.
func (r Rule) Select(q string) []string {
	for _, v := range r.Variants {
		if containsAny(q, v.Any) {
			return v.Emit
		}
	}
	return r.Emit
}

// topics returns every key the rule can ever emit.
func (r Rule) topics() []string {
	keys := append([]string(nil), r.Emit...)
	for _, v := range r.Variants {
		keys = append(keys, v.Emit...)
	}
	return keys
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
