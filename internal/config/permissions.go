// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// readableByOthers covers the group and other read bits.
const readableByOthers fs.FileMode = 0o044

// WarnInsecurePermissions logs a warning when the config file at path holds a
// literal provider API key and can be read by group or others. A nil cfg is
// treated as holding one. Startup continues either way.
func WarnInsecurePermissions(path string, cfg *Config) {
	if path == "" || (cfg != nil && !cfg.Generative.HasLiteralKey()) {
		return
	}

	mode, exposed, err := exposure(path)
	switch {
	case err != nil:
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
	case exposed:
		slog.Warn("config file has insecure permissions and holds an API key",
			"path", path,
			"mode", mode,
			"recommended", "0600",
		)
	}
}

// exposure reports the mode of path and whether others can read it.
func exposure(path string) (fs.FileMode, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	perm := info.Mode().Perm()
	return perm, perm&readableByOthers != 0, nil
}
