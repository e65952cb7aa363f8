// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by server commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// serverClient provides HTTP access to a running handbook server.
type serverClient struct {
	baseURL string
	http    *http.Client
}

// newServerClient creates a client targeting a host:port address or a full URL.
func newServerClient(addr string) *serverClient {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &serverClient{
		baseURL: strings.TrimRight(base, "/"),
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *serverClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return c.requestError(err)
	}
	return decodeResponse(resp, dest)
}

// postJSON sends body as JSON and decodes the JSON response into dest.
func (c *serverClient) postJSON(path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return hberr.Errorf(hberr.CodeCLIInputInvalid, "encoding request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return c.requestError(err)
	}
	return decodeResponse(resp, dest)
}

func (c *serverClient) requestError(err error) error {
	if isDialError(err) {
		return hberr.Errorf(hberr.CodeCLIGatewayNotRunning, "server at %s is not running (connection refused)", c.baseURL)
	}
	return hberr.Errorf(hberr.CodeCLIRequestFailure, "request failed: %w", err)
}

func decodeResponse(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// Prefer the problem detail when the server sent one.
		var problem struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil && problem.Detail != "" {
			return hberr.Errorf(hberr.CodeCLIRequestFailure, "server returned status %d: %s", resp.StatusCode, problem.Detail)
		}
		return hberr.Errorf(hberr.CodeCLIRequestFailure, "server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return hberr.Errorf(hberr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
