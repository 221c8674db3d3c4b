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

// Package bridge is the client side of the system network daemon. It issues
// commands, translates daemon failures into the coordination error kinds, and
// surfaces state changes the daemon makes on its own as BridgeEvents.
package bridge

import (
	"context"
	"io"

	"github.com/carverauto/netcoord/pkg/models"
)

//go:generate mockgen -destination=mock_bridge.go -package=bridge github.com/carverauto/netcoord/pkg/bridge Bridge,Executor

// Bridge is the daemon control surface. Implementations do not serialize
// calls; every blocking call may wait on a privilege prompt for an unbounded
// time, limited only by the caller's context and the bridge's own command
// timeout.
type Bridge interface {
	Scan(ctx context.Context) ([]models.NetworkDescriptor, error)
	// Connect joins ssid. A nil secret joins an open network or, when saved
	// is true, activates the stored profile.
	Connect(ctx context.Context, ssid string, secret *string, saved bool) (models.NetworkDescriptor, error)
	Disconnect(ctx context.Context) error
	Forget(ctx context.Context, ssid string) error
	SavedNetworks(ctx context.Context) ([]models.SavedCredential, error)
	SetAutoconnect(ctx context.Context, ssid string, enabled bool) error
	NetworkInfo(ctx context.Context, ssid string) (models.NetworkInfo, error)

	RadioEnabled(ctx context.Context) (bool, error)
	SetRadioEnabled(ctx context.Context, enabled bool) error

	WirelessInterfaces(ctx context.Context) ([]string, error)
	CreateAccessPoint(ctx context.Context, cfg *models.HotspotConfig) (models.AccessPointHandle, error)
	StopAccessPoint(ctx context.Context, handle models.AccessPointHandle) error
	// AccessPointActive reports whether the access point profile is active
	// and on which interface.
	AccessPointActive(ctx context.Context) (bool, string, error)
	// AccessPointAddress returns the gateway address clients of the access
	// point see, or "" when none is assigned yet.
	AccessPointAddress(ctx context.Context) (string, error)

	ListAttachedLeases(ctx context.Context) ([]models.Lease, error)
	Neighbors(ctx context.Context, iface string) ([]models.Neighbor, error)

	// Events delivers unsolicited daemon state changes. The channel is
	// closed when the bridge stops.
	Events() <-chan models.BridgeEvent
}

// Executor runs external commands. A non-zero exit is reported in the
// result, not as an error; errors mean the command could not run to
// completion at all.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (*CommandResult, error)
	Stream(ctx context.Context, name string, args ...string) (io.ReadCloser, error)
}

// CommandResult is the captured outcome of one command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Message returns the most useful diagnostic text from the command.
func (r *CommandResult) Message() string {
	if r.Stderr != "" {
		return r.Stderr
	}

	return r.Stdout
}
