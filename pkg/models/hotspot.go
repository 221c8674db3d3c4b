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

package models

import (
	"fmt"
	"time"
)

const (
	maxSSIDLength      = 32
	minSecretLength    = 8
	maxSecretLength    = 63
	maxChannel         = 196
	defaultHotspotSSID = "netcoord-hotspot"
)

// HotspotConfig is the persisted access point configuration. An empty
// Password means an open network; an empty Interface means auto-detect.
type HotspotConfig struct {
	SSID      string `json:"ssid"`
	Password  string `json:"password,omitempty"`
	Band      Band   `json:"band"`
	Channel   int    `json:"channel,omitempty"`
	Hidden    bool   `json:"hidden"`
	Interface string `json:"interface,omitempty"`
}

// DefaultHotspotConfig is used when nothing has been saved yet.
func DefaultHotspotConfig() HotspotConfig {
	return HotspotConfig{SSID: defaultHotspotSSID, Band: BandAuto}
}

// Open reports whether the access point runs without a password.
func (c *HotspotConfig) Open() bool {
	return c.Password == ""
}

// Validate checks the configuration against what the daemon accepts for an
// access point.
func (c *HotspotConfig) Validate() error {
	if err := ValidateSSID(c.SSID); err != nil {
		return err
	}

	if !printableASCII(c.SSID) {
		return fmt.Errorf("%w: hotspot ssid must be printable ASCII", ErrInvalidArgument)
	}

	if err := ValidateSecret(c.Password); err != nil {
		return err
	}

	if !printableASCII(c.Password) {
		return fmt.Errorf("%w: hotspot password must be printable ASCII", ErrInvalidArgument)
	}

	switch c.Band {
	case BandAuto, Band24, Band5, "":
	default:
		return fmt.Errorf("%w: unknown band %q", ErrInvalidArgument, c.Band)
	}

	if c.Channel < 0 || c.Channel > maxChannel {
		return fmt.Errorf("%w: channel %d out of range", ErrInvalidArgument, c.Channel)
	}

	return nil
}

// ValidateSSID rejects empty or over-long network names.
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return fmt.Errorf("%w: ssid must not be empty", ErrInvalidArgument)
	}

	if len(ssid) > maxSSIDLength {
		return fmt.Errorf("%w: ssid longer than %d bytes", ErrInvalidArgument, maxSSIDLength)
	}

	return nil
}

// ValidateSecret accepts an absent secret or one of 8 to 63 characters.
func ValidateSecret(secret string) error {
	if secret == "" {
		return nil
	}

	if n := len(secret); n < minSecretLength || n > maxSecretLength {
		return fmt.Errorf("%w: secret must be %d-%d characters", ErrInvalidArgument, minSecretLength, maxSecretLength)
	}

	return nil
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}

	return true
}

// HotspotPhase tags the active variant of a HotspotRuntimeState.
type HotspotPhase string

const (
	HotspotStopped  HotspotPhase = "stopped"
	HotspotStarting HotspotPhase = "starting"
	HotspotRunning  HotspotPhase = "running"
	HotspotStopping HotspotPhase = "stopping"
	HotspotError    HotspotPhase = "error"
)

// HotspotRuntimeState is the access point lifecycle state. Interface,
// StartedAt and, when known, the gateway Address are set while Running;
// Reason while in Error.
type HotspotRuntimeState struct {
	Phase     HotspotPhase `json:"phase"`
	Interface string       `json:"interface,omitempty"`
	Address   string       `json:"address,omitempty"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Since     time.Time    `json:"since"`
}

func HotspotStateStopped(now time.Time) HotspotRuntimeState {
	return HotspotRuntimeState{Phase: HotspotStopped, Since: now}
}

func HotspotStateStarting(now time.Time) HotspotRuntimeState {
	return HotspotRuntimeState{Phase: HotspotStarting, Since: now}
}

func HotspotStateRunning(iface string, startedAt time.Time) HotspotRuntimeState {
	return HotspotRuntimeState{Phase: HotspotRunning, Interface: iface, StartedAt: &startedAt, Since: startedAt}
}

func HotspotStateStopping(iface string, now time.Time) HotspotRuntimeState {
	return HotspotRuntimeState{Phase: HotspotStopping, Interface: iface, Since: now}
}

func HotspotStateError(reason string, now time.Time) HotspotRuntimeState {
	return HotspotRuntimeState{Phase: HotspotError, Reason: reason, Since: now}
}

func (s HotspotRuntimeState) String() string {
	switch s.Phase {
	case HotspotRunning:
		return fmt.Sprintf("running(%s)", s.Interface)
	case HotspotError:
		return fmt.Sprintf("error(%s)", s.Reason)
	case HotspotStopped, HotspotStarting, HotspotStopping:
		return string(s.Phase)
	default:
		return string(s.Phase)
	}
}

// AccessPointHandle identifies a running access point on the daemon side.
type AccessPointHandle struct {
	Interface  string `json:"interface"`
	Connection string `json:"connection"`
	SSID       string `json:"ssid"`
}
