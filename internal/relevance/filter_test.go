// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package relevance_test

import (
	"strings"
	"testing"

	"github.com/prmsu-dev/handbook/internal/relevance"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rejectPatterns = []string{
		`\d+\s*[\+\-\*\/]\s*\d+`,
		`what\s+is\s+\d+\s*[\+\-\*\/]`,
		`weather|temperature|climate`,
		`cooking|recipe|food`,
		`movie|music|celebrity`,
		`programming|code|software`,
		`health|medical|doctor`,
	}
	acceptKeywords = []string{
		"prmsu", "president ramon magsaysay", "magsaysay", "university",
		"student", "academic", "enrollment", "admission", "scholarship",
		"grade", "gwa", "graduation", "uniform", "campus", "college",
		"grading", "liquor",
	}
)

func newFilter(t *testing.T) *relevance.Filter {
	t.Helper()
	f, err := relevance.NewFilter(rejectPatterns, acceptKeywords)
	require.NoError(t, err)
	return f
}

func TestFilter_IsRelevant(t *testing.T) {
	f := newFilter(t)

	tests := []struct {
		question string
		want     bool
	}{
		{"What does PRMSU stand for?", true},
		{"What are the ADMISSION requirements?", true},
		{"Tell me about campus parking", true},
		{"second offense liquor violation", true},
		{"What is the grading system?", true},
		{"What is the penalty for drinking?", false},
		{"What is 5 + 3?", false},
		{"what is 12*", false},
		{"Is the university cafeteria food good?", false},
		{"Does the college teach programming?", false},
		{"Weather on campus today", false},
		{"Who is the best celebrity student?", false},
		{"", false},
		{"Hello there", false},
		{"Pamantasan ng Magsaysay — ano ang misyon?", true},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsRelevant(tt.question))
		})
	}
}

func TestFilter_RejectAlwaysWinsOverAccept(t *testing.T) {
	f := newFilter(t)

	for _, kw := range acceptKeywords {
		for _, poison := range []string{"2 + 2", "recipe", "medical", "software", "music", "climate"} {
			q := kw + " " + poison
			assert.False(t, f.IsRelevant(q), "reject pass must win for %q", q)
		}
	}
}

func TestFilter_AcceptKeywordWithoutRejectIsRelevant(t *testing.T) {
	f := newFilter(t)

	for _, kw := range acceptKeywords {
		q := "tell me about the " + strings.ToUpper(kw) + " please"
		assert.True(t, f.IsRelevant(q), "accept keyword %q should pass", kw)
	}
}

func TestFilter_DefaultDeny(t *testing.T) {
	f := newFilter(t)

	for _, q := range []string{"hi", "what time is it", "こんにちは", strings.Repeat("z", 100000)} {
		v := f.Explain(q)
		assert.False(t, v.Relevant)
		assert.Equal(t, relevance.DecisionDenied, v.Decision)
		assert.Empty(t, v.Match)
	}
}

func TestFilter_ExplainReportsDecidingMatch(t *testing.T) {
	f := newFilter(t)

	v := f.Explain("What is the uniform policy?")
	assert.True(t, v.Relevant)
	assert.Equal(t, relevance.DecisionAccepted, v.Decision)
	assert.Equal(t, "uniform", v.Match)

	v = f.Explain("Student health services")
	assert.False(t, v.Relevant)
	assert.Equal(t, relevance.DecisionRejected, v.Decision)
	assert.Equal(t, `health|medical|doctor`, v.Match)
}

func TestNewFilter_InvalidInput(t *testing.T) {
	_, err := relevance.NewFilter([]string{`(unclosed`}, acceptKeywords)
	require.Error(t, err)
	assert.True(t, hberr.HasCode(err, hberr.CodeKnowledgeRelevanceInvalid))

	_, err = relevance.NewFilter(nil, []string{"prmsu", "  "})
	require.Error(t, err)
	assert.True(t, hberr.HasCode(err, hberr.CodeKnowledgeRelevanceInvalid))
}

func TestNewFilter_LowercasesKeywords(t *testing.T) {
	f, err := relevance.NewFilter(nil, []string{" PRMSU "})
	require.NoError(t, err)
	assert.Equal(t, []string{"prmsu"}, f.Keywords())
	assert.True(t, f.IsRelevant("prmsu history"))
}
