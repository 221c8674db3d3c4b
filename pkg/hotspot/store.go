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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"golang.org/x/sys/unix"
)

const (
	configDirPerms  = 0o700
	configFilePerms = 0o600
	configFileName  = "hotspot.json"
)

// ConfigStore persists the hotspot configuration as JSON. Writes go to a
// temporary file that replaces the target by rename, under an advisory
// lock shared with other processes using the same path. With a SecretStore
// the password is kept there and never written to the file.
type ConfigStore struct {
	path    string
	logger  logger.Logger
	secrets SecretStore
}

// StoreOption customizes a ConfigStore.
type StoreOption func(*ConfigStore)

// WithSecretStore moves the password out of the configuration file.
func WithSecretStore(s SecretStore) StoreOption {
	return func(c *ConfigStore) { c.secrets = s }
}

// NewConfigStore returns a store backed by path.
func NewConfigStore(path string, log logger.Logger, opts ...StoreOption) (*ConfigStore, error) {
	if path == "" {
		return nil, errors.New("hotspot config path is required")
	}

	s := &ConfigStore{path: path, logger: logger.Component(log, "hotspot-config")}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/netcoord/hotspot.json, falling
// back to ~/.config.
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "netcoord", configFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "netcoord", configFileName)
	}

	return filepath.Join(home, ".config", "netcoord", configFileName)
}

// Path returns the backing file.
func (s *ConfigStore) Path() string {
	return s.path
}

// Load reads the stored configuration. A missing file yields the defaults;
// fields absent from the file keep their default values. A password found
// in the file while a SecretStore is configured is moved into it.
func (s *ConfigStore) Load() (models.HotspotConfig, error) {
	cfg, found, err := s.read()
	if err != nil || !found {
		return cfg, err
	}

	if s.secrets != nil {
		if cfg.Password != "" {
			s.migratePassword(&cfg)
		} else if cfg.Password, err = s.secrets.Get(); err != nil {
			return models.DefaultHotspotConfig(), err
		}
	}

	if err := cfg.Validate(); err != nil {
		return models.DefaultHotspotConfig(), fmt.Errorf("stored hotspot config: %w", err)
	}

	return cfg, nil
}

func (s *ConfigStore) read() (models.HotspotConfig, bool, error) {
	cfg := models.DefaultHotspotConfig()

	unlock, err := s.lock(unix.LOCK_SH)
	if err != nil {
		return cfg, false, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}

		return cfg, false, fmt.Errorf("read hotspot config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return models.DefaultHotspotConfig(), false, fmt.Errorf("decode hotspot config: %w", err)
	}

	return cfg, true, nil
}

// migratePassword rewrites a file that still carries the password. The
// loaded configuration is used as is when the move fails.
func (s *ConfigStore) migratePassword(cfg *models.HotspotConfig) {
	if err := s.Save(cfg); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Could not move hotspot password out of config file")

		return
	}

	s.logger.Info().Str("path", s.path).Msg("Moved hotspot password to secret store")
}

// Save atomically replaces the stored configuration. With a SecretStore the
// password is written there first; an empty password clears it.
func (s *ConfigStore) Save(cfg *models.HotspotConfig) error {
	onDisk := *cfg

	if s.secrets != nil {
		var err error
		if cfg.Password == "" {
			err = s.secrets.Delete()
		} else {
			err = s.secrets.Set(cfg.Password)
		}

		if err != nil {
			return err
		}

		onDisk.Password = ""
	}

	payload, err := json.MarshalIndent(&onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("encode hotspot config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, configDirPerms); err != nil {
		return fmt.Errorf("create hotspot config directory: %w", err)
	}

	unlock, err := s.lock(unix.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, "."+configFileName+".*")
	if err != nil {
		return fmt.Errorf("create temporary hotspot config: %w", err)
	}

	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, payload); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write temporary hotspot config: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("persist hotspot config: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Msg("Hotspot config saved")

	return nil
}

func writeAndSync(f *os.File, payload []byte) error {
	if err := f.Chmod(configFilePerms); err != nil {
		_ = f.Close()

		return err
	}

	if _, err := f.Write(payload); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// lock takes an advisory flock on a sidecar file so the rename of the
// config itself never invalidates the lock.
func (s *ConfigStore) lock(how int) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), configDirPerms); err != nil {
		return nil, fmt.Errorf("create hotspot config directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, configFilePerms)
	if err != nil {
		return nil, fmt.Errorf("open hotspot config lock: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("lock hotspot config: %w", err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
