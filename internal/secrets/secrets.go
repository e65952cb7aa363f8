// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package secrets

// Service is the keyring service under which handbook secrets live.
const Service = "handbook"

// Store holds named secrets, typically provider API keys.
type Store interface {
	// Set saves value under key, replacing any previous value.
	Set(key, value string) error

	// Get returns the value for key, or an error with code
	// CodeSecretNotFound when the key does not exist.
	Get(key string) (string, error)

	// Delete removes key. Missing keys report CodeSecretNotFound.
	Delete(key string) error

	// List returns the stored key names in insertion order.
	List() ([]string, error)
}
