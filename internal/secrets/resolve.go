// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package secrets

import (
	"strings"

	"github.com/prmsu-dev/handbook/internal/config"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

const keyringScheme = "keyring://"

// IsKeyringURI reports whether value uses the keyring:// scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// URI returns the keyring reference for key.
func URI(key string) string {
	return keyringScheme + key
}

// ParseKeyringURI extracts the key from keyring://<key>.
func ParseKeyringURI(uri string) (string, error) {
	if !IsKeyringURI(uri) {
		return "", hberr.Errorf(hberr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}
	key := strings.TrimPrefix(uri, keyringScheme)
	if key == "" || strings.Contains(key, "/") {
		return "", hberr.Errorf(hberr.CodeSecretInvalidInput, "invalid keyring URI %q: expected keyring://<key>", uri)
	}
	return key, nil
}

// Resolve returns value unchanged unless it is a keyring URI, in which case
// the referenced secret is read from store.
func Resolve(store Store, value string) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}

	key, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}
	secret, err := store.Get(key)
	if err != nil {
		return "", hberr.Wrapf(err, hberr.CodeSecretResolveFailure, "resolving %s", value)
	}
	return secret, nil
}

// ResolveConfig replaces keyring references in cfg with their secrets.
func ResolveConfig(cfg *config.Config, store Store) error {
	if !IsKeyringURI(cfg.Generative.APIKey) {
		return nil
	}

	key, err := Resolve(store, cfg.Generative.APIKey)
	if err != nil {
		return hberr.With(err, hberr.Field("config_key", "generative.api_key"))
	}
	cfg.Generative.APIKey = key
	return nil
}
