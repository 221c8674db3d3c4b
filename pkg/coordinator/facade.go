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

// Package coordinator is the single entry point presentation code talks to.
// It owns the wireless manager, the hotspot controller and the device
// registry, wires them together, and turns their changes into one ordered
// stream of events.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/devices"
	"github.com/carverauto/netcoord/pkg/hotspot"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/carverauto/netcoord/pkg/wireless"
	"github.com/jonboulle/clockwork"
)

// Config assembles the controller configurations.
type Config struct {
	Wireless wireless.Config `json:"wireless"`
	Devices  devices.Config  `json:"devices"`
	// HotspotConfigPath is where the hotspot configuration is persisted.
	// Empty keeps it in memory only.
	HotspotConfigPath string `json:"hotspot_config_path"`
	// HotspotSecrets selects where the hotspot password is persisted;
	// empty keeps it in the configuration file.
	HotspotSecrets hotspot.SecretBackend `json:"hotspot_secrets"`
	BuildInfo      string                `json:"-"`
}

// Option customizes a Facade.
type Option func(*options)

type options struct {
	clock      clockwork.Clock
	publisher  Publisher
	deviceOpts []devices.Option
}

// WithClock drives every controller from clock.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithPublisher forwards every event to p.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithDeviceOptions passes options through to the device registry.
func WithDeviceOptions(opts ...devices.Option) Option {
	return func(o *options) { o.deviceOpts = append(o.deviceOpts, opts...) }
}

// Facade is the coordination facade.
type Facade struct {
	bridge   bridge.Bridge
	wireless *wireless.Manager
	hotspot  *hotspot.Controller
	devices  *devices.Registry
	logger   logger.Logger
	clock    clockwork.Clock
	build    string

	broker *broker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the facade and its controllers around br.
func New(cfg *Config, br bridge.Bridge, log logger.Logger, opts ...Option) (*Facade, error) {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Facade{
		bridge: br,
		logger: logger.Component(log, "coordinator"),
		clock:  o.clock,
		build:  cfg.BuildInfo,
	}

	f.broker = newBroker(f, o.publisher, f.logger, o.clock)

	var store *hotspot.ConfigStore

	if cfg.HotspotConfigPath != "" {
		var err error

		var storeOpts []hotspot.StoreOption
		if cfg.HotspotSecrets == hotspot.SecretsKeyring {
			storeOpts = append(storeOpts, hotspot.WithSecretStore(hotspot.NewKeyringSecrets()))
		}

		if store, err = hotspot.NewConfigStore(cfg.HotspotConfigPath, log, storeOpts...); err != nil {
			return nil, err
		}
	}

	f.wireless = wireless.New(cfg.Wireless, br, log,
		wireless.WithClock(o.clock),
		wireless.WithNotifier(f.broker.notify))

	deviceOpts := append([]devices.Option{
		devices.WithClock(o.clock),
		devices.WithNotifier(f.broker.notify),
	}, o.deviceOpts...)
	f.devices = devices.New(cfg.Devices, br, log, deviceOpts...)

	f.hotspot = hotspot.New(br, store, log,
		hotspot.WithClock(o.clock),
		hotspot.WithNotifier(f.broker.notify),
		hotspot.WithHooks(hotspot.Hooks{
			OnStarting: f.hotspotStarting,
			OnRunning:  f.hotspotRunning,
			OnStopped:  f.hotspotStopped,
		}))

	return f, nil
}

// Start starts the controllers and begins routing daemon notifications.
func (f *Facade) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done != nil {
		return nil
	}

	if err := f.wireless.Start(ctx); err != nil {
		return fmt.Errorf("start wireless manager: %w", err)
	}

	if err := f.hotspot.Init(ctx); err != nil {
		f.logger.Warn().Err(err).Msg("Hotspot state could not be determined at startup")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})

	go f.routeEvents(runCtx)

	f.logger.Info().Msg("Coordinator started")

	return nil
}

// Stop stops routing and the controllers. The access point, if any, is left
// to the daemon.
func (f *Facade) Stop(ctx context.Context) error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	f.devices.Stop()

	err := f.wireless.Stop(ctx)

	f.broker.close()

	f.logger.Info().Msg("Coordinator stopped")

	return err
}

func (f *Facade) routeEvents(ctx context.Context) {
	defer close(f.done)

	events := f.bridge.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			f.logger.Debug().
				Str("kind", string(ev.Kind)).
				Str("interface", ev.Interface).
				Str("ssid", ev.SSID).
				Msg("Bridge event")

			f.wireless.HandleBridgeEvent(ev)
			f.hotspot.HandleBridgeEvent(ev)
		}
	}
}

// hotspotStarting pauses automatic reconnect so it cannot fight the access
// point for the radio. Only a start that passed the operation guard gets
// here, and every such start ends in OnRunning or OnStopped.
func (f *Facade) hotspotStarting() {
	if err := f.wireless.PauseReconnect(true); err != nil {
		f.logger.Debug().Err(err).Msg("Could not pause reconnect")
	}
}

func (f *Facade) hotspotRunning(iface string) {
	f.devices.Start(iface)

	if err := f.wireless.PauseReconnect(true); err != nil {
		f.logger.Debug().Err(err).Msg("Could not pause reconnect")
	}
}

func (f *Facade) hotspotStopped() {
	f.devices.Stop()

	if err := f.wireless.PauseReconnect(false); err != nil {
		f.logger.Debug().Err(err).Msg("Could not resume reconnect")
	}
}

// ConnectionState returns the wireless connection state.
func (f *Facade) ConnectionState() models.ConnectionState { return f.wireless.State() }

// Networks returns the last scan result.
func (f *Facade) Networks() []models.NetworkDescriptor { return f.wireless.Networks() }

// SavedNetworks returns the saved networks.
func (f *Facade) SavedNetworks() []models.SavedCredential { return f.wireless.Saved() }

// Radio returns the wireless radio state.
func (f *Facade) Radio() models.RadioState { return f.wireless.Radio() }

// HotspotState returns the access point state.
func (f *Facade) HotspotState() models.HotspotRuntimeState { return f.hotspot.State() }

// HotspotConfig returns the access point configuration.
func (f *Facade) HotspotConfig() models.HotspotConfig { return f.hotspot.Config() }

// Devices returns the clients attached to the access point.
func (f *Facade) Devices() []models.DeviceEntry { return f.devices.Devices() }

// Version increases on every published change.
func (f *Facade) Version() uint64 { return f.broker.version() }

// Snapshot returns every state at once together with the current version.
func (f *Facade) Snapshot() models.Snapshot {
	return f.broker.snapshot()
}

func (f *Facade) readAll(version uint64) models.Snapshot {
	return models.Snapshot{
		Version:    version,
		Connection: f.wireless.State(),
		Networks:   f.wireless.Networks(),
		Saved:      f.wireless.Saved(),
		Hotspot:    f.hotspot.State(),
		Config:     f.hotspot.Config(),
		Devices:    f.devices.Devices(),
		Radio:      f.wireless.Radio(),
		BuildInfo:  f.build,
	}
}

// Subscribe returns a channel of events with the given buffer. A subscriber
// that falls behind loses events rather than slowing the controllers down;
// it can resynchronize with Snapshot. cancel releases the subscription and
// closes the channel.
func (f *Facade) Subscribe(buffer int) (<-chan models.Event, func()) {
	return f.broker.subscribe(buffer)
}

// Scan refreshes the list of visible networks.
func (f *Facade) Scan(ctx context.Context) ([]models.NetworkDescriptor, error) {
	return f.wireless.Scan(ctx)
}

// Connect joins ssid. secret may be nil for saved or open networks.
func (f *Facade) Connect(ctx context.Context, ssid string, secret *string) error {
	if err := models.ValidateSSID(ssid); err != nil {
		return err
	}

	if secret != nil && *secret != "" {
		if err := models.ValidateSecret(*secret); err != nil {
			return err
		}
	}

	return f.wireless.Connect(ctx, ssid, secret)
}

// Disconnect leaves the current network.
func (f *Facade) Disconnect(ctx context.Context) error {
	return f.wireless.Disconnect(ctx)
}

// Forget removes a saved network.
func (f *Facade) Forget(ctx context.Context, ssid string) error {
	if err := models.ValidateSSID(ssid); err != nil {
		return err
	}

	return f.wireless.Forget(ctx, ssid)
}

// SetRadio switches the wireless radio on or off.
func (f *Facade) SetRadio(ctx context.Context, enabled bool) error {
	return f.wireless.SetRadio(ctx, enabled)
}

// SetAutoconnect changes whether the daemon joins a saved network on its own.
func (f *Facade) SetAutoconnect(ctx context.Context, ssid string, enabled bool) error {
	if err := models.ValidateSSID(ssid); err != nil {
		return err
	}

	return f.wireless.SetAutoconnect(ctx, ssid, enabled)
}

// NetworkInfo returns the profile and addressing details of a saved network.
func (f *Facade) NetworkInfo(ctx context.Context, ssid string) (models.NetworkInfo, error) {
	if err := models.ValidateSSID(ssid); err != nil {
		return models.NetworkInfo{}, err
	}

	return f.wireless.NetworkInfo(ctx, ssid)
}

// StartHotspot brings the access point up. Automatic reconnect is paused
// through the controller hooks for as long as the access point holds the
// radio.
func (f *Facade) StartHotspot(ctx context.Context) (models.AccessPointHandle, error) {
	return f.hotspot.Start(ctx)
}

// StopHotspot tears the access point down.
func (f *Facade) StopHotspot(ctx context.Context) error {
	return f.hotspot.Stop(ctx)
}

// AcknowledgeHotspot resolves an access point Error state.
func (f *Facade) AcknowledgeHotspot(ctx context.Context) error {
	return f.hotspot.Acknowledge(ctx)
}

// SaveHotspotConfig validates and stores the access point configuration.
func (f *Facade) SaveHotspotConfig(ctx context.Context, cfg *models.HotspotConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: hotspot config is required", models.ErrInvalidArgument)
	}

	return f.hotspot.SaveConfig(ctx, cfg)
}
