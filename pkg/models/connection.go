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

// ConnectionPhase tags the active variant of a ConnectionState.
type ConnectionPhase string

const (
	ConnectionDisconnected ConnectionPhase = "disconnected"
	ConnectionScanning     ConnectionPhase = "scanning"
	ConnectionConnecting   ConnectionPhase = "connecting"
	ConnectionConnected    ConnectionPhase = "connected"
	ConnectionFailed       ConnectionPhase = "failed"
)

// ConnectionState is the wireless client state. Only the fields belonging to
// Phase are set: Target for Connecting, Network for Connected, Reason for
// Failed. Attempt and MaxAttempts track automatic reconnects and are zero for
// user-initiated connects.
type ConnectionState struct {
	Phase       ConnectionPhase    `json:"phase"`
	Target      string             `json:"target,omitempty"`
	Network     *NetworkDescriptor `json:"network,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Attempt     int                `json:"attempt,omitempty"`
	MaxAttempts int                `json:"max_attempts,omitempty"`
	NextRetryAt *time.Time         `json:"next_retry_at,omitempty"`
	Since       time.Time          `json:"since"`
}

func Disconnected(now time.Time) ConnectionState {
	return ConnectionState{Phase: ConnectionDisconnected, Since: now}
}

func Scanning(now time.Time) ConnectionState {
	return ConnectionState{Phase: ConnectionScanning, Since: now}
}

func Connecting(target string, attempt, maxAttempts int, now time.Time) ConnectionState {
	return ConnectionState{
		Phase:       ConnectionConnecting,
		Target:      target,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		Since:       now,
	}
}

func Connected(network NetworkDescriptor, now time.Time) ConnectionState {
	return ConnectionState{Phase: ConnectionConnected, Network: &network, Since: now}
}

// Failed builds a Failed state. next is nil once no further automatic
// attempt is scheduled.
func Failed(target, reason string, attempt, maxAttempts int, next *time.Time, now time.Time) ConnectionState {
	return ConnectionState{
		Phase:       ConnectionFailed,
		Target:      target,
		Reason:      reason,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		NextRetryAt: next,
		Since:       now,
	}
}

// Idle reports whether the state accepts a new connect request. Failed counts
// as idle: the failure has been surfaced and a new request starts over.
func (s ConnectionState) Idle() bool {
	return s.Phase == ConnectionDisconnected || s.Phase == ConnectionScanning || s.Phase == ConnectionFailed
}

func (s ConnectionState) String() string {
	switch s.Phase {
	case ConnectionConnecting:
		return fmt.Sprintf("connecting(%s)", s.Target)
	case ConnectionConnected:
		if s.Network != nil {
			return fmt.Sprintf("connected(%s)", s.Network.SSID)
		}

		return string(s.Phase)
	case ConnectionFailed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	case ConnectionDisconnected, ConnectionScanning:
		return string(s.Phase)
	default:
		return string(s.Phase)
	}
}
