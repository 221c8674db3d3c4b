/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hotspot

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "netcoord"
	keyringUser    = "hotspot-password"
)

// SecretBackend selects where the hotspot password is kept.
type SecretBackend string

const (
	// SecretsFile keeps the password in the configuration file.
	SecretsFile SecretBackend = "file"
	// SecretsKeyring keeps it in the session keyring.
	SecretsKeyring SecretBackend = "keyring"
)

// Validate accepts the known backends; empty means SecretsFile.
func (b SecretBackend) Validate() error {
	switch b {
	case "", SecretsFile, SecretsKeyring:
		return nil
	default:
		return fmt.Errorf("unknown hotspot secret backend %q", string(b))
	}
}

// SecretStore holds the hotspot password outside the configuration file.
type SecretStore interface {
	// Get returns "" when nothing is stored.
	Get() (string, error)
	Set(secret string) error
	// Delete succeeds when nothing is stored.
	Delete() error
}

// KeyringSecrets stores the password through the platform keyring: the
// Secret Service over D-Bus on Linux.
type KeyringSecrets struct {
	service string
	user    string
}

var _ SecretStore = (*KeyringSecrets)(nil)

// NewKeyringSecrets returns the store used by the daemon.
func NewKeyringSecrets() *KeyringSecrets {
	return &KeyringSecrets{service: keyringService, user: keyringUser}
}

func (k *KeyringSecrets) Get() (string, error) {
	secret, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("read hotspot password from keyring: %w", err)
	}

	return secret, nil
}

func (k *KeyringSecrets) Set(secret string) error {
	if err := keyring.Set(k.service, k.user, secret); err != nil {
		return fmt.Errorf("store hotspot password in keyring: %w", err)
	}

	return nil
}

func (k *KeyringSecrets) Delete() error {
	err := keyring.Delete(k.service, k.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete hotspot password from keyring: %w", err)
	}

	return nil
}
