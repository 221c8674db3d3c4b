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

package api

import (
	"context"

	"github.com/carverauto/netcoord/pkg/models"
)

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/netcoord/pkg/api Coordinator

// Coordinator is the part of the coordination facade the API serves.
type Coordinator interface {
	Snapshot() models.Snapshot
	Networks() []models.NetworkDescriptor
	SavedNetworks() []models.SavedCredential
	Radio() models.RadioState
	HotspotState() models.HotspotRuntimeState
	HotspotConfig() models.HotspotConfig
	Devices() []models.DeviceEntry
	Subscribe(buffer int) (<-chan models.Event, func())

	Scan(ctx context.Context) ([]models.NetworkDescriptor, error)
	Connect(ctx context.Context, ssid string, secret *string) error
	Disconnect(ctx context.Context) error
	Forget(ctx context.Context, ssid string) error
	SetAutoconnect(ctx context.Context, ssid string, enabled bool) error
	NetworkInfo(ctx context.Context, ssid string) (models.NetworkInfo, error)
	SetRadio(ctx context.Context, enabled bool) error
	StartHotspot(ctx context.Context) (models.AccessPointHandle, error)
	StopHotspot(ctx context.Context) error
	AcknowledgeHotspot(ctx context.Context) error
	SaveHotspotConfig(ctx context.Context, cfg *models.HotspotConfig) error
}
