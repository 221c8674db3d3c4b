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

package wireless

import (
	"fmt"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
)

const (
	defaultScanInterval      = 30 * time.Second
	defaultScanMinInterval   = 5 * time.Second
	defaultReconnectAttempts = 4
	defaultReconnectInitial  = 2 * time.Second
	defaultReconnectMax      = 30 * time.Second
	reconnectMultiplier      = 2.0
)

// Config tunes scanning and automatic reconnection.
type Config struct {
	// ScanInterval is the period of background scans. Zero disables them.
	ScanInterval models.Duration `json:"scan_interval"`
	// ScanMinInterval is the minimum spacing of explicit scans; requests
	// arriving faster are answered from the last result.
	ScanMinInterval   models.Duration `json:"scan_min_interval"`
	AutoReconnect     bool            `json:"auto_reconnect"`
	ReconnectAttempts int             `json:"reconnect_attempts"`
	ReconnectInitial  models.Duration `json:"reconnect_initial"`
	ReconnectMax      models.Duration `json:"reconnect_max"`
	// ReconnectJitter is the backoff randomization factor in [0, 1).
	ReconnectJitter float64 `json:"reconnect_jitter"`
}

// DefaultConfig returns the manager defaults.
func DefaultConfig() Config {
	return Config{
		ScanInterval:      models.Duration(defaultScanInterval),
		ScanMinInterval:   models.Duration(defaultScanMinInterval),
		AutoReconnect:     true,
		ReconnectAttempts: defaultReconnectAttempts,
		ReconnectInitial:  models.Duration(defaultReconnectInitial),
		ReconnectMax:      models.Duration(defaultReconnectMax),
		ReconnectJitter:   0.1,
	}
}

// Validate checks the configuration for values the manager cannot run with.
func (c *Config) Validate() error {
	if c.ScanInterval < 0 || c.ScanMinInterval < 0 {
		return fmt.Errorf("%w: scan intervals must not be negative", models.ErrInvalidArgument)
	}

	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("%w: reconnect_attempts must not be negative", models.ErrInvalidArgument)
	}

	if c.ReconnectJitter < 0 || c.ReconnectJitter >= 1 {
		return fmt.Errorf("%w: reconnect_jitter must be in [0, 1)", models.ErrInvalidArgument)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.ReconnectAttempts == 0 {
		c.ReconnectAttempts = defaultReconnectAttempts
	}

	if c.ReconnectInitial <= 0 {
		c.ReconnectInitial = models.Duration(defaultReconnectInitial)
	}

	if c.ReconnectMax <= 0 {
		c.ReconnectMax = models.Duration(defaultReconnectMax)
	}

	if c.ReconnectMax < c.ReconnectInitial {
		c.ReconnectMax = c.ReconnectInitial
	}
}
