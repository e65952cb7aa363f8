// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

//go:embed handbook.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/handbook/handbook.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", hberr.Errorf(hberr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "handbook", "handbook.yaml"), nil
}

// WriteDefault writes the commented default config to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return hberr.New(hberr.CodeConfigAlreadyExists, "config file already exists", hberr.FieldPath(path))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return hberr.Wrap(err, hberr.CodeConfigLoadReadFailure, "creating config directory", hberr.FieldPath(path))
	}
	if err := os.WriteFile(path, DefaultConfigYAML, 0o600); err != nil {
		return hberr.Wrap(err, hberr.CodeConfigLoadReadFailure, "writing config", hberr.FieldPath(path))
	}
	return nil
}

// BootstrapConfig writes the default commented config to the default path if
// it does not already exist. Returns the path written, or empty string if the
// file already existed or could not be written (non-fatal, logged at debug).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if err := WriteDefault(cfgPath, false); err != nil {
		slog.Debug("skipping config bootstrap", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}
