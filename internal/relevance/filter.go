// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package relevance

import (
	"regexp"
	"strings"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// Decision names which pass settled a verdict.
type Decision string

const (
	DecisionRejected Decision = "rejected"   // matched an out-of-domain pattern
	DecisionAccepted Decision = "accepted"   // matched a domain keyword
	DecisionDenied   Decision = "no_keyword" // matched neither, default deny
)

// Verdict is the full result of a relevance check.
type Verdict struct {
	Relevant bool     `json:"relevant"`
	Decision Decision `json:"decision"`
	// Match is the reject pattern or accept keyword that decided, empty on default deny.
	Match string `json:"match,omitempty"`
}

// Filter gates questions before retrieval. Reject patterns are checked first
// and always win over accept keywords.
type Filter struct {
	reject []*regexp.Regexp
	accept []string
}

// NewFilter compiles the reject patterns and lower-cases the accept keywords.
func NewFilter(reject, accept []string) (*Filter, error) {
	f := &Filter{
		reject: make([]*regexp.Regexp, 0, len(reject)),
		accept: make([]string, 0, len(accept)),
	}

	for _, pattern := range reject {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, hberr.Wrap(err, hberr.CodeKnowledgeRelevanceInvalid, "compiling reject pattern",
				hberr.Field("pattern", pattern))
		}
		f.reject = append(f.reject, re)
	}

	for _, kw := range accept {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return nil, hberr.New(hberr.CodeKnowledgeRelevanceInvalid, "accept keyword must not be empty")
		}
		f.accept = append(f.accept, kw)
	}

	return f, nil
}

// IsRelevant reports whether question belongs to the handbook domain.
func (f *Filter) IsRelevant(question string) bool {
	return f.Explain(question).Relevant
}

// Explain runs both passes and reports what decided.
func (f *Filter) Explain(question string) Verdict {
	q := strings.ToLower(question)

	for _, re := range f.reject {
		if re.MatchString(q) {
			return Verdict{Relevant: false, Decision: DecisionRejected, Match: re.String()}
		}
	}

	for _, kw := range f.accept {
		if strings.Contains(q, kw) {
			return Verdict{Relevant: true, Decision: DecisionAccepted, Match: kw}
		}
	}

	return Verdict{Relevant: false, Decision: DecisionDenied}
}

// Keywords returns the accept keywords in evaluation order.
func (f *Filter) Keywords() []string {
	out := make([]string, len(f.accept))
	copy(out, f.accept)
	return out
}
