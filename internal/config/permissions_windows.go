// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

//go:build windows

package config

import "log/slog"

// WarnInsecurePermissions only logs on Windows: file access there is governed
// by ACLs, which mode bits do not describe.
func WarnInsecurePermissions(path string, cfg *Config) {
	if path == "" || cfg == nil || !cfg.Generative.HasLiteralKey() {
		return
	}
	slog.Debug("skipping config permission check on windows", "path", path)
}
