// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// parseTrustedProxies parses CIDR ranges, skipping blank entries.
func parseTrustedProxies(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, hberr.Errorf(hberr.CodeServerConfigInvalid,
				"invalid trusted proxy CIDR %q: %w", cidr, err)
		}
		nets = append(nets, ipNet)
	}
	if len(nets) == 0 {
		return nil, hberr.New(hberr.CodeServerConfigInvalid,
			"trusted proxies must contain at least one CIDR range")
	}
	return nets, nil
}

func isTrustedProxy(ip net.IP, trusted []*net.IPNet) bool {
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// trustedProxyRealIP rewrites r.RemoteAddr to the client named in
// X-Forwarded-For (or X-Real-IP) only when the connecting peer is inside a
// trusted range. Headers from any other peer are ignored, so the rate
// limiter keys on the address that actually connected.
func trustedProxyRealIP(trusted []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			connectingIP, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				connectingIP = r.RemoteAddr
			}

			ip := net.ParseIP(connectingIP)
			if ip == nil {
				slog.Warn("unparsable connecting address, ignoring proxy headers",
					"remote_addr", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}
			if !isTrustedProxy(ip, trusted) {
				next.ServeHTTP(w, r)
				return
			}

			if client, ok := forwardedClient(r); ok {
				r.RemoteAddr = net.JoinHostPort(client, "0")
			} else if r.Header.Get("X-Forwarded-For") != "" {
				slog.Warn("invalid X-Forwarded-For from trusted proxy, using connecting address",
					"xff", r.Header.Get("X-Forwarded-For"),
					"connecting_ip", connectingIP)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient returns the leftmost X-Forwarded-For address, falling
// back to X-Real-IP when no X-Forwarded-For header is present.
func forwardedClient(r *http.Request) (string, bool) {
	candidate := ""
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		candidate, _, _ = strings.Cut(xff, ",")
	} else {
		candidate = r.Header.Get("X-Real-IP")
	}
	candidate = strings.TrimSpace(candidate)
	if net.ParseIP(candidate) == nil {
		return "", false
	}
	return candidate, true
}
