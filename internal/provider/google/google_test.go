// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package google_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prmsu-dev/handbook/internal/provider"
	"github.com/prmsu-dev/handbook/internal/provider/google"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelsServer(t *testing.T, key string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("X-Goog-Api-Key") != key && r.URL.Query().Get("key") != key {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-pro"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := google.New(provider.Config{})
	require.Error(t, err)
	assert.True(t, hberr.HasCode(err, hberr.CodeProviderRequestInvalid))
}

func TestNew_DefaultsModel(t *testing.T) {
	p, err := google.New(provider.Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.Equal(t, google.DefaultModel, p.Model())

	st := p.Status(context.Background())
	assert.True(t, st.Available)
	assert.Equal(t, "not probed yet", st.Message)
}

func TestProbe_Success(t *testing.T) {
	srv := modelsServer(t, "sk-good")
	p, err := google.New(provider.Config{APIKey: "sk-good", BaseURL: srv.URL, Model: "gemini-2.5-pro"})
	require.NoError(t, err)

	require.NoError(t, p.Probe(context.Background()))

	st := p.Status(context.Background())
	assert.True(t, st.Available)
	assert.Equal(t, "ok", st.Message)
	assert.Equal(t, "gemini-2.5-pro", st.Model)
	assert.NotNil(t, st.Health.LastSuccessAt)
}

func TestProbe_RejectedKeyMarksUnavailable(t *testing.T) {
	srv := modelsServer(t, "sk-good")
	p, err := google.New(provider.Config{APIKey: "sk-bad", BaseURL: srv.URL})
	require.NoError(t, err)

	err = p.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, hberr.IsUpstreamFailure(err))
	assert.Equal(t, "google", hberr.FieldsOf(err)["provider"])

	assert.False(t, p.Available(context.Background()))
	st := p.Status(context.Background())
	assert.False(t, st.Available)
	assert.Equal(t, int64(1), st.Health.FailureCount)
	assert.Contains(t, st.Message, "unavailable")
}
