// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package format_test

import (
	"testing"

	"github.com/prmsu-dev/handbook/internal/format"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormatter(t *testing.T) *format.Formatter {
	t.Helper()
	f, err := format.NewFormatter([]format.Category{
		{Name: "identity", Label: "ID:", Any: []string{"stands for", "acronym", "what does"}},
		{Name: "scholarship", Label: "SCH:", Any: []string{"scholarship"}},
		{Name: "uniform", Label: "UNI:", Any: []string{"uniform"}},
		{Name: "disciplinary", Label: "DIS:", Any: []string{"liquor", "penalty"}},
		{Name: "admission", Label: "ADM:", Any: []string{"admission"}},
		{Name: "academic", Label: "ACA:", Any: []string{"grade", "GWA"}},
		{Name: "graduation", Label: "GRAD:", Any: []string{"graduation", "honors"}},
	}, format.Category{Label: "HB:"})
	require.NoError(t, err)
	return f
}

func TestClassify_Priority(t *testing.T) {
	f := newFormatter(t)

	tests := []struct {
		question string
		want     string
	}{
		{"What does PRMSU stand for?", "identity"},
		{"scholarship grade requirement", "scholarship"},
		{"GWA for a scholarship", "scholarship"},
		{"uniform penalty", "uniform"},
		{"second offense liquor violation", "disciplinary"},
		{"admission grade", "admission"},
		{"what GWA do I need", "academic"},
		{"graduation honors", "graduation"},
		{"what does cum laude need for honors", "identity"},
		{"campus parking", "default"},
		{"", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Classify(tt.question).Name)
		})
	}
}

func TestFormat_PrefixesLabel(t *testing.T) {
	f := newFormatter(t)

	assert.Equal(t, "SCH:\nfact text", f.Format("fact text", "Private SCHOLARSHIP?"))
	assert.Equal(t, "HB:\nfact text", f.Format("fact text", "anything else"))
	assert.Equal(t, "HB:\n", f.Format("", "anything else"))
}

func TestNewFormatter_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		categories []format.Category
		fallback   format.Category
	}{
		{"missing default label", nil, format.Category{Name: "default"}},
		{"category without label", []format.Category{{Name: "x", Any: []string{"x"}}}, format.Category{Label: "HB:"}},
		{"category without name", []format.Category{{Label: "X:", Any: []string{"x"}}}, format.Category{Label: "HB:"}},
		{"category without keywords", []format.Category{{Name: "x", Label: "X:", Any: []string{" "}}}, format.Category{Label: "HB:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := format.NewFormatter(tt.categories, tt.fallback)
			require.Error(t, err)
			assert.True(t, hberr.HasCode(err, hberr.CodeKnowledgeFormatInvalid))
		})
	}
}

func TestNewFormatter_DefaultOnly(t *testing.T) {
	f, err := format.NewFormatter(nil, format.Category{Name: "generic", Label: "G:", Any: []string{"ignored"}})
	require.NoError(t, err)

	c := f.Classify("ignored")
	assert.Equal(t, "generic", c.Name)
	assert.Empty(t, c.Any)
}
