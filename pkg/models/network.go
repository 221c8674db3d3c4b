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

// SecurityKind is the authentication scheme advertised by a network.
type SecurityKind string

const (
	SecurityOpen    SecurityKind = "open"
	SecurityWPA2    SecurityKind = "wpa2"
	SecurityWPA3    SecurityKind = "wpa3"
	SecurityUnknown SecurityKind = "unknown"
)

// Band is a wireless frequency band. BandAuto is only meaningful as a
// hotspot preference.
type Band string

const (
	BandAuto Band = "auto"
	Band24   Band = "2.4GHz"
	Band5    Band = "5GHz"
)

// NetworkDescriptor is one scan result. The (SSID, Band) pair identifies it
// for display; it is not a stable key across scans.
type NetworkDescriptor struct {
	SSID      string       `json:"ssid"`
	Signal    int          `json:"signal"`
	Security  SecurityKind `json:"security"`
	Band      Band         `json:"band"`
	Channel   int          `json:"channel"`
	Frequency int          `json:"frequency_mhz,omitempty"`
	Saved     bool         `json:"saved"`
	Active    bool         `json:"active"`
}

// Secured reports whether joining the network needs secret material.
func (n *NetworkDescriptor) Secured() bool {
	return n.Security != SecurityOpen
}

// Quality classifies the descriptor's signal strength.
func (n *NetworkDescriptor) Quality() SignalQuality {
	return ClassifySignal(n.Signal)
}

// SignalQuality is a presentation band for a 0-100 signal value.
type SignalQuality int

const (
	SignalVeryWeak SignalQuality = iota
	SignalWeak
	SignalFair
	SignalGood
	SignalExcellent
)

// ClassifySignal maps a 0-100 signal value to its quality band.
func ClassifySignal(signal int) SignalQuality {
	switch {
	case signal >= 80:
		return SignalExcellent
	case signal >= 60:
		return SignalGood
	case signal >= 40:
		return SignalFair
	case signal >= 20:
		return SignalWeak
	default:
		return SignalVeryWeak
	}
}

func (q SignalQuality) String() string {
	switch q {
	case SignalExcellent:
		return "Excellent"
	case SignalGood:
		return "Good"
	case SignalFair:
		return "Fair"
	case SignalWeak:
		return "Weak"
	case SignalVeryWeak:
		return "Very weak"
	default:
		return fmt.Sprintf("SignalQuality(%d)", int(q))
	}
}

func (q SignalQuality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// SavedCredential is a network profile the daemon holds a secret for. The
// secret itself stays with the daemon; Secret is only set on the way in.
type SavedCredential struct {
	SSID          string    `json:"ssid"`
	Secret        string    `json:"-"`
	LastConnected time.Time `json:"last_connected,omitempty"`
	AutoConnect   bool      `json:"autoconnect"`
}

// NetworkInfo describes a saved profile and, when it is up, the addressing
// of the device carrying it. Device fields are empty for an inactive
// profile.
type NetworkInfo struct {
	SSID           string   `json:"ssid"`
	ConnectionType string   `json:"connection_type,omitempty"`
	UUID           string   `json:"uuid,omitempty"`
	BSSID          string   `json:"bssid,omitempty"`
	Device         string   `json:"device,omitempty"`
	DeviceState    string   `json:"device_state,omitempty"`
	DeviceType     string   `json:"device_type,omitempty"`
	Speed          string   `json:"speed,omitempty"`
	HWAddress      string   `json:"hw_address,omitempty"`
	IPv4           string   `json:"ipv4,omitempty"`
	Netmask        string   `json:"netmask,omitempty"`
	Gateway        string   `json:"gateway,omitempty"`
	DNS            []string `json:"dns,omitempty"`
	IPv6           string   `json:"ipv6,omitempty"`
	LeaseTime      string   `json:"dhcp_lease_time,omitempty"`
}
