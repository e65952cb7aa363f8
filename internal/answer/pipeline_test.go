// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package answer_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func newPipeline(t *testing.T) *answer.Pipeline {
	t.Helper()
	hb, err := handbook.Default()
	require.NoError(t, err)
	p, err := answer.FromHandbook(hb, stepClock(250*time.Millisecond))
	require.NoError(t, err)
	return p
}

func TestAnswer_Scenarios(t *testing.T) {
	p := newPipeline(t)

	t.Run("acronym", func(t *testing.T) {
		a := p.Answer("What does PRMSU stand for?")
		assert.Equal(t, answer.OutcomeAnswered, a.Outcome)
		assert.Equal(t, 1, a.Sources)
		assert.Equal(t, "identity", a.Category)
		assert.Equal(t, "🏫 **PRMSU Information:**\n"+
			"PRMSU stands for President Ramon Magsaysay State University. "+
			"The main campus is located in Iba, Zambales, Philippines.", a.Text)
	})

	t.Run("arithmetic is refused", func(t *testing.T) {
		a := p.Answer("What is 5 + 3?")
		assert.Equal(t, answer.OutcomeOutOfDomain, a.Outcome)
		assert.Zero(t, a.Sources)
		assert.Empty(t, a.Category)
		assert.True(t, strings.HasPrefix(a.Text, "🚫"))
	})

	t.Run("relevant without a rule falls back", func(t *testing.T) {
		a := p.Answer("Tell me about campus parking")
		assert.Equal(t, answer.OutcomeNotFound, a.Outcome)
		assert.Zero(t, a.Sources)
		assert.Equal(t, "handbook", a.Category)
	})

	t.Run("second liquor offense", func(t *testing.T) {
		a := p.Answer("second offense liquor violation")
		assert.Equal(t, answer.OutcomeAnswered, a.Outcome)
		assert.Equal(t, 1, a.Sources)
		assert.Equal(t, "disciplinary", a.Category)
		assert.Equal(t, "⚖️ **Disciplinary Policy:**\n"+
			"Second offense for liquor violations: 30 days suspension, "+
			"24 hours transformative experience, continued guidance intervention.", a.Text)
	})
}

func TestAnswer_OnlyFirstCandidateShownButAllCounted(t *testing.T) {
	p := newPipeline(t)

	a := p.Answer("What is the liquor policy?")
	assert.Equal(t, 3, a.Sources)
	assert.Contains(t, a.Text, "First offense")
	assert.NotContains(t, a.Text, "Second offense")
	assert.NotContains(t, a.Text, "Third offense")
}

func TestAnswer_ElapsedUsesClock(t *testing.T) {
	p := newPipeline(t)

	assert.Equal(t, 250*time.Millisecond, p.Answer("What does PRMSU stand for?").Elapsed)
	assert.Equal(t, 250*time.Millisecond, p.Answer("What is 5 + 3?").Elapsed)
}

func TestAnswer_TotalForOddInput(t *testing.T) {
	p := newPipeline(t)

	for _, q := range []string{"", "   ", "学生 university 🎓", strings.Repeat("student ", 20000)} {
		assert.NotPanics(t, func() {
			a := p.Answer(q)
			assert.NotEmpty(t, a.Text)
		})
	}
}

func TestAnswer_ConcurrentUse(t *testing.T) {
	p := newPipeline(t)
	want := p.Answer("graduation honors").Text

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, p.Answer("graduation honors").Text)
		}()
	}
	wg.Wait()
}

func TestAnswer_GoldenTexts(t *testing.T) {
	p := newPipeline(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "refusal", []byte(p.Answer("What is 5 + 3?").Text))
	g.Assert(t, "fallback", []byte(p.Answer("Tell me about campus parking").Text))
}

func TestNewPipeline_RequiresComponents(t *testing.T) {
	_, err := answer.NewPipeline(answer.Config{})
	require.Error(t, err)

	_, err = answer.FromHandbook(nil, nil)
	require.Error(t, err)
}
