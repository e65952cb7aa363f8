// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package retrieval

import (
	"strings"

	"github.com/prmsu-dev/handbook/internal/knowledge"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// Match records one satisfied rule and the topics it contributed.
type Match struct {
	Rule   string   `json:"rule"`
	Topics []string `json:"topics"`
}

// Retriever evaluates an ordered rule table against questions. Every rule is
// evaluated independently; outputs are concatenated in rule order.
type Retriever struct {
	store *knowledge.Store
	rules []Rule
}

// NewRetriever normalizes the rule table and checks that every emitted key
// resolves in store.
func NewRetriever(store *knowledge.Store, rules []Rule) (*Retriever, error) {
	if store == nil {
		return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid, "knowledge store is required")
	}

	seen := make(map[string]bool, len(rules))
	normalized := make([]Rule, 0, len(rules))
	for i, r := range rules {
		r = normalize(r)
		if r.Name == "" {
			return nil, hberr.Errorf(hberr.CodeKnowledgeRuleInvalid, "rule #%d has no name", i)
		}
		if seen[r.Name] {
			return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid, "duplicate rule name", hberr.FieldRule(r.Name))
		}
		seen[r.Name] = true

		if len(r.All) == 0 && len(r.Any) == 0 {
			return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid, "rule has no keyword conditions", hberr.FieldRule(r.Name))
		}
		if len(r.Emit) == 0 {
			return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid, "rule has no fallback emission", hberr.FieldRule(r.Name))
		}
		for j, v := range r.Variants {
			if len(v.Any) == 0 || len(v.Emit) == 0 {
				return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid,
					"variant needs keywords and topics", hberr.FieldRule(r.Name), hberr.Field("variant", j))
			}
		}
		for _, key := range r.topics() {
			if !store.Has(key) {
				return nil, hberr.New(hberr.CodeKnowledgeRuleInvalid, "rule references unknown topic",
					hberr.FieldRule(r.Name), hberr.FieldTopic(key))
			}
		}

		normalized = append(normalized, r)
	}

	return &Retriever{store: store, rules: normalized}, nil
}

// Retrieve returns the candidate facts for question in rule order. The result
// is empty when no rule fires.
func (r *Retriever) Retrieve(question string) []string {
	var facts []string
	for _, m := range r.Matches(question) {
		for _, key := range m.Topics {
			fact, _ := r.store.Fact(key)
			facts = append(facts, fact)
		}
	}
	return facts
}

// Matches reports which rules fired for question and the topic keys each emitted.
func (r *Retriever) Matches(question string) []Match {
	q := strings.ToLower(question)

	var matches []Match
	for _, rule := range r.rules {
		if !rule.Satisfied(q) {
			continue
		}
		matches = append(matches, Match{Rule: rule.Name, Topics: rule.Select(q)})
	}
	return matches
}

// Rules returns a copy of the normalized rule table.
func (r *Retriever) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Unreachable lists topic keys that no rule can emit, in store order.
func (r *Retriever) Unreachable() []string {
	reachable := make(map[string]bool)
	for _, rule := range r.rules {
		for _, key := range rule.topics() {
			reachable[key] = true
		}
	}

	var out []string
	for _, key := range r.store.Keys() {
		if !reachable[key] {
			out = append(out, key)
		}
	}
	return out
}

func normalize(r Rule) Rule {
	r.Name = strings.TrimSpace(r.Name)
	r.All = lowerAll(r.All)
	r.Any = lowerAll(r.Any)
	r.Emit = append([]string(nil), r.Emit...)

	variants := make([]Variant, len(r.Variants))
	for i, v := range r.Variants {
		variants[i] = Variant{Any: lowerAll(v.Any), Emit: append([]string(nil), v.Emit...)}
	}
	r.Variants = variants
	return r
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
