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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carverauto/netcoord/pkg/api"
	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/coordinator"
	"github.com/carverauto/netcoord/pkg/devices"
	"github.com/carverauto/netcoord/pkg/events"
	"github.com/carverauto/netcoord/pkg/hotspot"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/carverauto/netcoord/pkg/wireless"
)

const (
	daemonConfigFile       = "netcoord.json"
	defaultShutdownTimeout = 10 * time.Second
)

var errNegativeSetting = errors.New("must not be negative")

// DaemonConfig is the on-disk configuration of the netcoord daemon.
type DaemonConfig struct {
	Logging           *logger.Config        `json:"logging"`
	Bridge            bridge.Config         `json:"bridge"`
	Wireless          wireless.Config       `json:"wireless"`
	Devices           devices.Config        `json:"devices"`
	HotspotConfigPath string                `json:"hotspot_config_path"`
	HotspotSecrets    hotspot.SecretBackend `json:"hotspot_secrets"`
	API               api.Config            `json:"api"`
	Events            events.Config         `json:"events"`
	ShutdownTimeout   models.Duration       `json:"shutdown_timeout"`
}

// DefaultDaemonConfig returns the configuration used when no file exists.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Logging:           logger.DefaultConfig(),
		Bridge:            bridge.DefaultConfig(),
		Wireless:          wireless.DefaultConfig(),
		Devices:           devices.DefaultConfig(),
		HotspotConfigPath: hotspot.DefaultConfigPath(),
		HotspotSecrets:    hotspot.SecretsKeyring,
		API:               api.DefaultConfig(),
		Events:            events.DefaultConfig(),
		ShutdownTimeout:   models.Duration(defaultShutdownTimeout),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/netcoord/netcoord.json, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "netcoord", daemonConfigFile)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/etc", "netcoord", daemonConfigFile)
	}

	return filepath.Join(home, ".config", "netcoord", daemonConfigFile)
}

// Validate implements Validator.
func (c *DaemonConfig) Validate() error {
	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidArgument, err)
	}

	if c.HotspotConfigPath == "" {
		return fmt.Errorf("%w: hotspot_config_path is required", models.ErrInvalidArgument)
	}

	if err := c.HotspotSecrets.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidArgument, err)
	}

	if c.Bridge.CommandTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: timeouts %w", models.ErrInvalidArgument, errNegativeSetting)
	}

	if c.Devices.RefreshInterval < 0 || c.Devices.FreshnessFactor < 0 {
		return fmt.Errorf("%w: devices settings %w", models.ErrInvalidArgument, errNegativeSetting)
	}

	if err := c.Wireless.Validate(); err != nil {
		return fmt.Errorf("wireless: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}

	return nil
}

// Coordinator returns the facade configuration carried by c.
func (c *DaemonConfig) Coordinator(buildInfo string) *coordinator.Config {
	return &coordinator.Config{
		Wireless:          c.Wireless,
		Devices:           c.Devices,
		HotspotConfigPath: c.HotspotConfigPath,
		HotspotSecrets:    c.HotspotSecrets,
		BuildInfo:         buildInfo,
	}
}
