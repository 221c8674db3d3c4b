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
	"net"
	"strings"
	"time"
)

// DeviceClass is a best-effort guess at what kind of client a device is.
type DeviceClass string

const (
	DevicePhone    DeviceClass = "phone"
	DeviceComputer DeviceClass = "computer"
	DeviceUnknown  DeviceClass = "unknown"
)

// DeviceSource names a discovery source that reported a device.
type DeviceSource string

const (
	SourceLease    DeviceSource = "lease"
	SourceNeighbor DeviceSource = "neighbor"
)

// DeviceEntry is a client attached to the local access point, keyed by MAC.
type DeviceEntry struct {
	MAC       string         `json:"mac"`
	IP        string         `json:"ip,omitempty"`
	Hostname  string         `json:"hostname,omitempty"`
	Vendor    string         `json:"vendor,omitempty"`
	Class     DeviceClass    `json:"class"`
	Sources   []DeviceSource `json:"sources,omitempty"`
	FirstSeen time.Time      `json:"first_seen"`
	LastSeen  time.Time      `json:"last_seen"`
}

// Lease is one DHCP lease handed out by the access point.
type Lease struct {
	MAC      string    `json:"mac"`
	IP       string    `json:"ip"`
	Hostname string    `json:"hostname,omitempty"`
	Expiry   time.Time `json:"expiry,omitempty"`
}

// Neighbor is one address-resolution table entry.
type Neighbor struct {
	IP    string `json:"ip"`
	MAC   string `json:"mac"`
	State string `json:"state"`
}

// NormalizeMAC returns mac in lower-case colon form. The second result is
// false when mac is not a 48-bit hardware address.
func NormalizeMAC(mac string) (string, bool) {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil || len(hw) != 6 {
		return "", false
	}

	return hw.String(), true
}
