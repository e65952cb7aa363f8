// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/zalando/go-keyring"
)

// indexKey holds a JSON list of stored key names, since go-keyring cannot
// enumerate entries.
const indexKey = "::keys-index"

// Keyring implements Store on the OS keyring (Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows).
type Keyring struct {
	service string
}

var _ Store = (*Keyring)(nil)

// NewKeyring returns a Keyring scoped to service. An empty service uses
// Service.
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = Service
	}
	return &Keyring{service: service}
}

func (k *Keyring) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if value == "" {
		return hberr.New(hberr.CodeSecretInvalidInput, "secret value must not be empty", hberr.Field("key", key))
	}

	if err := keyring.Set(k.service, key, value); err != nil {
		return hberr.Wrap(err, hberr.CodeSecretStoreFailure, "storing secret", hberr.Field("key", key))
	}

	keys, err := k.List()
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return k.saveIndex(append(keys, key))
}

func (k *Keyring) Get(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	val, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", hberr.New(hberr.CodeSecretNotFound, "secret not found", hberr.Field("key", key))
	}
	if err != nil {
		return "", hberr.Wrap(err, hberr.CodeSecretStoreFailure, "reading secret", hberr.Field("key", key))
	}
	return val, nil
}

func (k *Keyring) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	err := keyring.Delete(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return hberr.New(hberr.CodeSecretNotFound, "secret not found", hberr.Field("key", key))
	}
	if err != nil {
		return hberr.Wrap(err, hberr.CodeSecretDeleteFailure, "deleting secret", hberr.Field("key", key))
	}

	keys, err := k.List()
	if err != nil {
		return err
	}
	return k.saveIndex(slices.DeleteFunc(keys, func(s string) bool { return s == key }))
}

func (k *Keyring) List() ([]string, error) {
	raw, err := keyring.Get(k.service, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, hberr.Wrap(err, hberr.CodeSecretListFailure, "loading key index")
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, hberr.Wrap(err, hberr.CodeSecretListFailure, "decoding key index")
	}
	return keys, nil
}

func (k *Keyring) saveIndex(keys []string) error {
	if len(keys) == 0 {
		if err := keyring.Delete(k.service, indexKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("failed to remove empty key index", "service", k.service, "error", err)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return hberr.Wrap(err, hberr.CodeSecretListFailure, "encoding key index")
	}
	if err := keyring.Set(k.service, indexKey, string(data)); err != nil {
		return hberr.Wrap(err, hberr.CodeSecretListFailure, "saving key index")
	}
	return nil
}

func validKey(key string) error {
	if key == "" || key == indexKey {
		return hberr.Errorf(hberr.CodeSecretInvalidInput, "invalid secret key %q", key)
	}
	return nil
}
