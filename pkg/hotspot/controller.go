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

// Package hotspot drives the access point lifecycle. Every mutating call
// holds a single operation guard for its whole duration; a second call made
// meanwhile fails fast with ErrOperationInProgress instead of queueing.
package hotspot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/jonboulle/clockwork"
)

// Hooks are invoked synchronously on the calling goroutine. OnStarting runs
// once the state is Starting, before the daemon is asked for the access
// point. OnRunning runs after the state is Running. OnStopped runs as soon as
// the state leaves Running, before the access point is torn down, and after
// a start that failed.
type Hooks struct {
	OnStarting func()
	OnRunning  func(iface string)
	OnStopped  func()
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithHooks registers transition hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// WithNotifier registers the change callback. It must not block.
func WithNotifier(fn func(models.EventKind)) Option {
	return func(c *Controller) { c.notify = fn }
}

// Controller is the hotspot controller.
type Controller struct {
	bridge bridge.Bridge
	store  *ConfigStore
	logger logger.Logger
	clock  clockwork.Clock
	hooks  Hooks
	notify func(models.EventKind)

	guard atomic.Bool
	// cfgMu orders configuration writes against the Stopped to Starting
	// transition.
	cfgMu  sync.Mutex
	state  atomic.Pointer[models.HotspotRuntimeState]
	config atomic.Pointer[models.HotspotConfig]
	handle atomic.Pointer[models.AccessPointHandle]
}

// New returns a Controller in Stopped with the default configuration. Call
// Init to load the stored configuration and adopt a running access point.
func New(br bridge.Bridge, store *ConfigStore, log logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		bridge: br,
		store:  store,
		logger: logger.Component(log, "hotspot"),
		clock:  clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(c)
	}

	initial := models.HotspotStateStopped(c.clock.Now())
	c.state.Store(&initial)

	cfg := models.DefaultHotspotConfig()
	c.config.Store(&cfg)

	return c
}

// Init loads the stored configuration and checks whether the daemon already
// has the access point up, for instance after a restart of this process.
func (c *Controller) Init(ctx context.Context) error {
	if !c.acquire() {
		return models.ErrOperationInProgress
	}
	defer c.release()

	ctx = context.WithoutCancel(ctx)

	if c.store != nil {
		c.cfgMu.Lock()

		cfg, err := c.store.Load()
		if err != nil {
			c.logger.Warn().Err(err).Str("path", c.store.Path()).Msg("Using default hotspot config")
		}

		c.config.Store(&cfg)
		c.cfgMu.Unlock()
		c.emit(models.EventConfig)
	}

	active, iface, err := c.bridge.AccessPointActive(ctx)
	if err != nil {
		return fmt.Errorf("query access point: %w", err)
	}

	if active {
		c.logger.Info().Str("interface", iface).Msg("Adopting running access point")
		c.enterRunning(ctx, iface)
	}

	return nil
}

// State returns a copy of the runtime state.
func (c *Controller) State() models.HotspotRuntimeState {
	s := *c.state.Load()

	if s.StartedAt != nil {
		t := *s.StartedAt
		s.StartedAt = &t
	}

	return s
}

// Config returns a copy of the current configuration.
func (c *Controller) Config() models.HotspotConfig {
	return *c.config.Load()
}

// Start brings the access point up with the current configuration. Daemon
// calls are detached from ctx cancellation: a caller that goes away must not
// leave a half-built access point behind.
func (c *Controller) Start(ctx context.Context) (models.AccessPointHandle, error) {
	if !c.acquire() {
		return models.AccessPointHandle{}, models.ErrOperationInProgress
	}
	defer c.release()

	if cur := c.State(); cur.Phase != models.HotspotStopped {
		return models.AccessPointHandle{}, fmt.Errorf("%w: hotspot is %s", models.ErrInvalidArgument, cur.Phase)
	}

	ctx = context.WithoutCancel(ctx)

	c.cfgMu.Lock()

	cfg := c.Config()

	iface, err := c.resolveInterface(ctx, cfg.Interface)
	if err != nil {
		c.cfgMu.Unlock()

		return models.AccessPointHandle{}, err
	}

	c.transition(models.HotspotStateStarting(c.clock.Now()))
	c.cfgMu.Unlock()

	if c.hooks.OnStarting != nil {
		c.hooks.OnStarting()
	}

	cfg.Interface = iface

	handle, err := c.bridge.CreateAccessPoint(ctx, &cfg)
	if err != nil {
		c.logger.Error().Err(err).Str("interface", iface).Msg("Failed to start access point")
		c.transition(models.HotspotStateError(err.Error(), c.clock.Now()))
		c.leftRunning()

		return models.AccessPointHandle{}, err
	}

	if handle.Interface == "" {
		handle.Interface = iface
	}

	c.handle.Store(&handle)
	c.enterRunning(ctx, handle.Interface)

	return handle, nil
}

// Stop tears the access point down. When the teardown call fails the daemon
// is asked directly; the state is Stopped only if it confirms the access point
// is gone, and Error otherwise. The teardown failure is returned either way.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.acquire() {
		return models.ErrOperationInProgress
	}
	defer c.release()

	cur := c.State()
	if cur.Phase != models.HotspotRunning {
		return fmt.Errorf("%w: hotspot is %s", models.ErrInvalidArgument, cur.Phase)
	}

	ctx = context.WithoutCancel(ctx)

	c.transition(models.HotspotStateStopping(cur.Interface, c.clock.Now()))
	c.leftRunning()

	handle := c.currentHandle(cur.Interface)

	if err := c.bridge.StopAccessPoint(ctx, handle); err != nil {
		c.logger.Error().Err(err).Str("interface", handle.Interface).Msg("Failed to stop access point")
		c.transition(models.HotspotStateError("stop failed: "+err.Error(), c.clock.Now()))

		if active, _, qerr := c.bridge.AccessPointActive(ctx); qerr == nil && !active {
			c.logger.Info().Msg("Daemon confirms access point is down")
			c.enterStopped()

			return fmt.Errorf("stop access point: %w", err)
		}

		return err
	}

	c.enterStopped()

	return nil
}

// Acknowledge clears an Error state by asking the daemon what is actually
// running.
func (c *Controller) Acknowledge(ctx context.Context) error {
	if !c.acquire() {
		return models.ErrOperationInProgress
	}
	defer c.release()

	if cur := c.State(); cur.Phase != models.HotspotError {
		return fmt.Errorf("%w: hotspot is %s", models.ErrInvalidArgument, cur.Phase)
	}

	ctx = context.WithoutCancel(ctx)

	active, iface, err := c.bridge.AccessPointActive(ctx)
	if err != nil {
		return err
	}

	if active {
		c.enterRunning(ctx, iface)

		return nil
	}

	c.enterStopped()

	return nil
}

// SaveConfig validates and persists cfg. It is rejected with
// ErrConfigLockedWhileActive unless the hotspot is Stopped, and does not
// contend for the operation guard. The stored configuration is unchanged on
// failure.
func (c *Controller) SaveConfig(_ context.Context, cfg *models.HotspotConfig) error {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()

	if phase := c.State().Phase; phase != models.HotspotStopped {
		return fmt.Errorf("%w: hotspot is %s", models.ErrConfigLockedWhileActive, phase)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	next := *cfg

	if c.store != nil {
		if err := c.store.Save(&next); err != nil {
			return err
		}
	}

	c.config.Store(&next)
	c.emit(models.EventConfig)

	c.logger.Info().Str("ssid", next.SSID).Str("band", string(next.Band)).Msg("Hotspot config updated")

	return nil
}

// HandleBridgeEvent applies an access point teardown the daemon made on its
// own. Events that race with an operation in progress are left to it.
func (c *Controller) HandleBridgeEvent(ev models.BridgeEvent) {
	if ev.Kind != models.BridgeAccessPointDown {
		return
	}

	if !c.acquire() {
		c.logger.Debug().Msg("Access point event during operation, ignoring")

		return
	}
	defer c.release()

	if c.State().Phase != models.HotspotRunning {
		return
	}

	c.logger.Warn().Str("interface", ev.Interface).Msg("Access point went down")

	c.leftRunning()
	c.enterStopped()
}

func (c *Controller) resolveInterface(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	ifaces, err := c.bridge.WirelessInterfaces(ctx)
	if err != nil {
		return "", err
	}

	if len(ifaces) == 0 {
		return "", models.ErrNoCapableInterface
	}

	return ifaces[0], nil
}

func (c *Controller) currentHandle(iface string) models.AccessPointHandle {
	if h := c.handle.Load(); h != nil {
		return *h
	}

	return models.AccessPointHandle{Interface: iface, SSID: c.Config().SSID}
}

// enterRunning looks up the gateway address before publishing Running. The
// address is informational; a failed lookup leaves it empty.
func (c *Controller) enterRunning(ctx context.Context, iface string) {
	running := models.HotspotStateRunning(iface, c.clock.Now())

	addr, err := c.bridge.AccessPointAddress(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Could not read hotspot address")
	}

	running.Address = addr
	c.transition(running)

	if c.hooks.OnRunning != nil {
		c.hooks.OnRunning(iface)
	}
}

func (c *Controller) leftRunning() {
	if c.hooks.OnStopped != nil {
		c.hooks.OnStopped()
	}
}

func (c *Controller) enterStopped() {
	c.handle.Store(nil)
	c.transition(models.HotspotStateStopped(c.clock.Now()))
}

func (c *Controller) transition(next models.HotspotRuntimeState) {
	prev := c.state.Swap(&next)

	c.logger.Info().
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("Hotspot state changed")

	c.emit(models.EventHotspot)
}

func (c *Controller) emit(kind models.EventKind) {
	if c.notify != nil {
		c.notify(kind)
	}
}

func (c *Controller) acquire() bool {
	return c.guard.CompareAndSwap(false, true)
}

func (c *Controller) release() {
	c.guard.Store(false)
}
