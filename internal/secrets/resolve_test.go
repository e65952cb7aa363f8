// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package secrets_test

import (
	"testing"

	"github.com/prmsu-dev/handbook/internal/config"
	"github.com/prmsu-dev/handbook/internal/secrets"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyringURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"keyring://anthropic", "anthropic", false},
		{"keyring://", "", true},
		{"keyring://handbook/anthropic", "", true},
		{"sk-plain", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := secrets.ParseKeyringURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, hberr.HasCode(err, hberr.CodeSecretInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURI_RoundTrips(t *testing.T) {
	key, err := secrets.ParseKeyringURI(secrets.URI("openai"))
	require.NoError(t, err)
	assert.Equal(t, "openai", key)
	assert.True(t, secrets.IsKeyringURI(secrets.URI("openai")))
}

func TestResolve(t *testing.T) {
	k := secrets.NewKeyring("test-resolve")
	require.NoError(t, k.Set("anthropic", "sk-ant-resolved"))

	got, err := secrets.Resolve(k, "keyring://anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-resolved", got)

	got, err = secrets.Resolve(k, "sk-literal")
	require.NoError(t, err)
	assert.Equal(t, "sk-literal", got)

	_, err = secrets.Resolve(k, "keyring://missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring://missing")
}

func TestResolveConfig(t *testing.T) {
	k := secrets.NewKeyring("test-resolve-config")
	require.NoError(t, k.Set("google", "g-key"))

	cfg := &config.Config{Generative: config.GenerativeConfig{Provider: "google", APIKey: "keyring://google"}}
	require.NoError(t, secrets.ResolveConfig(cfg, k))
	assert.Equal(t, "g-key", cfg.Generative.APIKey)

	literal := &config.Config{Generative: config.GenerativeConfig{APIKey: "sk-x"}}
	require.NoError(t, secrets.ResolveConfig(literal, k))
	assert.Equal(t, "sk-x", literal.Generative.APIKey)

	missing := &config.Config{Generative: config.GenerativeConfig{APIKey: "keyring://openai"}}
	err := secrets.ResolveConfig(missing, k)
	require.Error(t, err)
	assert.Equal(t, "generative.api_key", hberr.FieldsOf(err)["config_key"])
}
