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

import "time"

// BridgeEventKind classifies an unsolicited notification from the daemon.
type BridgeEventKind string

const (
	BridgeWirelessDisconnected BridgeEventKind = "wireless_disconnected"
	BridgeWirelessConnected    BridgeEventKind = "wireless_connected"
	BridgeAccessPointDown      BridgeEventKind = "access_point_down"
	BridgeServiceStopped       BridgeEventKind = "service_stopped"
	BridgeServiceStarted       BridgeEventKind = "service_started"
)

// BridgeEvent is a state change the daemon reported on its own, outside of
// any request made through the bridge.
type BridgeEvent struct {
	Kind      BridgeEventKind `json:"kind"`
	Interface string          `json:"interface,omitempty"`
	SSID      string          `json:"ssid,omitempty"`
	Time      time.Time       `json:"time"`
}

// EventKind names the state machine an Event describes.
type EventKind string

const (
	EventConnection EventKind = "connection"
	EventNetworks   EventKind = "networks"
	EventSaved      EventKind = "saved"
	EventHotspot    EventKind = "hotspot"
	EventConfig     EventKind = "config"
	EventDevices    EventKind = "devices"
	EventRadio      EventKind = "radio"
)

// Event is a state-change notification delivered to subscribers. Exactly one
// payload field, matching Kind, is set and holds a snapshot copy.
type Event struct {
	ID         string               `json:"id"`
	Seq        uint64               `json:"seq"`
	Kind       EventKind            `json:"kind"`
	Time       time.Time            `json:"time"`
	Connection *ConnectionState     `json:"connection,omitempty"`
	Networks   []NetworkDescriptor  `json:"networks,omitempty"`
	Saved      []SavedCredential    `json:"saved,omitempty"`
	Hotspot    *HotspotRuntimeState `json:"hotspot,omitempty"`
	Config     *HotspotConfig       `json:"config,omitempty"`
	Devices    []DeviceEntry        `json:"devices,omitempty"`
	Radio      *RadioState          `json:"radio,omitempty"`
}

// RadioState reports whether the wireless radio is switched on.
type RadioState struct {
	Enabled bool `json:"enabled"`
}

// Snapshot is a consistent read of every state machine at one version.
type Snapshot struct {
	Version    uint64              `json:"version"`
	Connection ConnectionState     `json:"connection"`
	Networks   []NetworkDescriptor `json:"networks"`
	Saved      []SavedCredential   `json:"saved"`
	Hotspot    HotspotRuntimeState `json:"hotspot"`
	Config     HotspotConfig       `json:"config"`
	Devices    []DeviceEntry       `json:"devices"`
	Radio      RadioState          `json:"radio"`
	BuildInfo  string              `json:"build,omitempty"`
}
