// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/prmsu-dev/handbook/internal/provider"
	"github.com/prmsu-dev/handbook/internal/server"
	"github.com/stretchr/testify/require"
)

// fixedClock advances by 40ms on every call so response_time is stable.
func fixedClock() func() time.Time {
	var n atomic.Int64
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * 40 * time.Millisecond)
	}
}

func newTestServices(t *testing.T, providers ...server.ProviderService) *server.Services {
	t.Helper()
	hb, err := handbook.Default()
	require.NoError(t, err)
	p, err := answer.FromHandbook(hb, fixedClock())
	require.NoError(t, err)
	svc, err := server.NewServices(p, hb.Store, hb.Source, providers...)
	require.NoError(t, err)
	return svc
}

func newTestServerWith(t *testing.T, cfg server.Config, svc *server.Services) *server.Server {
	t.Helper()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	srv, err := server.New(cfg, svc)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	return newTestServerWith(t, server.Config{}, newTestServices(t))
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type fakeProvider struct {
	probes atomic.Int64
	fail   bool
}

func (f *fakeProvider) Probe(_ context.Context) error {
	f.probes.Add(1)
	if f.fail {
		return errors.New("401 unauthorized")
	}
	return nil
}

func (f *fakeProvider) Status(_ context.Context) provider.Status {
	if f.probes.Load() == 0 {
		return provider.Status{Provider: "fake", Available: true, Message: "not probed yet"}
	}
	if f.fail {
		return provider.Status{Provider: "fake", Available: false, Message: "unavailable: 401 unauthorized"}
	}
	return provider.Status{Provider: "fake", Available: true, Message: "ok"}
}
