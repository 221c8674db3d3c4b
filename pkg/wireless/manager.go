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

// Package wireless owns the client-mode connection state machine. A single
// goroutine applies every transition; daemon calls run beside it and post
// their results back, so state reads never wait on the daemon.
package wireless

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var errStopped = errors.New("wireless manager is not running")

const (
	opConnect    = "connect"
	opReconnect  = "reconnect"
	opDisconnect = "disconnect"
	opForget     = "forget"
	opRadio      = "radio"
	opAutoconn   = "autoconnect"

	messageBuffer = 32
)

// Notifier is called on the manager goroutine after every change of the
// given kind. It must not block.
type Notifier func(kind models.EventKind)

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for timers and timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithNotifier registers the change callback.
func WithNotifier(fn Notifier) Option {
	return func(m *Manager) { m.notify = fn }
}

type scanResult struct {
	networks []models.NetworkDescriptor
	err      error
}

// Manager is the wireless session manager.
type Manager struct {
	bridge  bridge.Bridge
	cfg     Config
	logger  logger.Logger
	clock   clockwork.Clock
	notify  Notifier
	limiter *rate.Limiter
	scans   singleflight.Group

	state    atomic.Pointer[models.ConnectionState]
	networks atomic.Pointer[[]models.NetworkDescriptor]
	saved    atomic.Pointer[[]models.SavedCredential]
	radio    atomic.Bool

	msgs     chan func()
	quit     chan struct{}
	quitOnce sync.Once

	mu     sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Owned by the run goroutine.
	busy        string
	scanning    bool
	scanWaiters []chan<- scanResult
	expectDown  string
	paused      bool
	radioGen    uint64
	retry       *retryState
}

// New returns a stopped Manager.
func New(cfg Config, br bridge.Bridge, log logger.Logger, opts ...Option) *Manager {
	cfg.applyDefaults()

	m := &Manager{
		bridge: br,
		cfg:    cfg,
		logger: logger.Component(log, "wireless"),
		clock:  clockwork.NewRealClock(),
		msgs:   make(chan func(), messageBuffer),
		quit:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	limit := rate.Inf
	if iv := cfg.ScanMinInterval.Std(); iv > 0 {
		limit = rate.Every(iv)
	}

	m.limiter = rate.NewLimiter(limit, 1)

	initial := models.Disconnected(m.clock.Now())
	m.state.Store(&initial)
	m.networks.Store(&[]models.NetworkDescriptor{})
	m.saved.Store(&[]models.SavedCredential{})
	m.radio.Store(true)

	return m
}

// Start launches the manager goroutine, loads the saved networks and, when
// background scanning is enabled, runs a first scan.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return nil
	}

	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.run()

	m.logger.Info().
		Dur("scan_interval", m.cfg.ScanInterval.Std()).
		Bool("auto_reconnect", m.cfg.AutoReconnect).
		Msg("Wireless manager started")

	return nil
}

// Stop ends the manager goroutine and cancels in-flight daemon calls.
// Callers still waiting on an operation receive an error.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	m.closeQuit()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info().Msg("Wireless manager stopped")

	return nil
}

func (m *Manager) closeQuit() {
	m.quitOnce.Do(func() { close(m.quit) })
}

// State returns a copy of the current connection state.
func (m *Manager) State() models.ConnectionState {
	s := *m.state.Load()

	if s.Network != nil {
		n := *s.Network
		s.Network = &n
	}

	if s.NextRetryAt != nil {
		t := *s.NextRetryAt
		s.NextRetryAt = &t
	}

	return s
}

// Networks returns the most recent scan result.
func (m *Manager) Networks() []models.NetworkDescriptor {
	return slices.Clone(*m.networks.Load())
}

// Saved returns the known saved networks.
func (m *Manager) Saved() []models.SavedCredential {
	return slices.Clone(*m.saved.Load())
}

// Radio returns the last known radio state.
func (m *Manager) Radio() models.RadioState {
	return models.RadioState{Enabled: m.radio.Load()}
}

// Scan refreshes the network list. Concurrent callers share one daemon
// scan; calls faster than the configured minimum interval get the last
// result.
func (m *Manager) Scan(ctx context.Context) ([]models.NetworkDescriptor, error) {
	ch := m.scans.DoChan("scan", func() (any, error) {
		if !m.limiter.Allow() {
			m.logger.Debug().Msg("Scan rate limited, returning last result")

			return m.Networks(), nil
		}

		reply := make(chan scanResult, 1)
		if err := m.submit(context.Background(), func() { m.startScan(reply, false) }); err != nil {
			return nil, err
		}

		select {
		case r := <-reply:
			return r.networks, r.err
		case <-m.quit:
			return nil, errStopped
		}
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}

		return slices.Clone(r.Val.([]models.NetworkDescriptor)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Connect joins ssid. A saved network reuses its stored credential and needs
// no secret; an unsaved secured network needs one.
func (m *Manager) Connect(ctx context.Context, ssid string, secret *string) error {
	if ssid == "" {
		return fmt.Errorf("%w: ssid must not be empty", models.ErrInvalidArgument)
	}

	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.startConnect(ssid, secret, reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// Disconnect leaves the current network and cancels any pending reconnect.
func (m *Manager) Disconnect(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.startDisconnect(reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// Forget deletes the saved profile for ssid.
func (m *Manager) Forget(ctx context.Context, ssid string) error {
	if ssid == "" {
		return fmt.Errorf("%w: ssid must not be empty", models.ErrInvalidArgument)
	}

	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.startForget(ssid, reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// SetRadio switches the wireless radio. Turning it off cancels a pending
// reconnect, and none is started until it is back on.
func (m *Manager) SetRadio(ctx context.Context, enabled bool) error {
	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.startSetRadio(enabled, reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// SetAutoconnect changes whether the daemon activates the saved profile for
// ssid on its own.
func (m *Manager) SetAutoconnect(ctx context.Context, ssid string, enabled bool) error {
	if ssid == "" {
		return fmt.Errorf("%w: ssid must not be empty", models.ErrInvalidArgument)
	}

	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.startSetAutoconnect(ssid, enabled, reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// NetworkInfo queries the daemon for the details of a saved network. It
// does not touch the state machine.
func (m *Manager) NetworkInfo(ctx context.Context, ssid string) (models.NetworkInfo, error) {
	if ssid == "" {
		return models.NetworkInfo{}, fmt.Errorf("%w: ssid must not be empty", models.ErrInvalidArgument)
	}

	return m.bridge.NetworkInfo(ctx, ssid)
}

// RefreshSaved reloads the saved networks from the daemon.
func (m *Manager) RefreshSaved(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.refreshSaved(reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// RefreshRadio reloads the radio state from the daemon.
func (m *Manager) RefreshRadio(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := m.submit(ctx, func() { m.refreshRadio(reply) }); err != nil {
		return err
	}

	return m.await(ctx, reply)
}

// PauseReconnect suspends automatic reconnection while the radio is lent to
// the access point. Pausing cancels a pending retry.
func (m *Manager) PauseReconnect(paused bool) error {
	return m.submit(context.Background(), func() { m.setPaused(paused) })
}

// HandleBridgeEvent feeds an unsolicited daemon notification to the state
// machine.
func (m *Manager) HandleBridgeEvent(ev models.BridgeEvent) {
	if err := m.submit(context.Background(), func() { m.handleEvent(ev) }); err != nil {
		m.logger.Debug().Str("kind", string(ev.Kind)).Msg("Dropped bridge event, manager stopped")
	}
}

func (m *Manager) submit(ctx context.Context, fn func()) error {
	select {
	case <-m.quit:
		return errStopped
	default:
	}

	select {
	case m.msgs <- fn:
		return nil
	case <-m.quit:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) await(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-m.quit:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn runs a daemon call off the manager goroutine. The returned closure
// is applied back on the manager goroutine.
func (m *Manager) spawn(call func(ctx context.Context) func()) {
	ctx := m.runCtx

	go func() {
		apply := call(ctx)

		select {
		case m.msgs <- apply:
		case <-m.quit:
		}
	}()
}

func (m *Manager) post(fn func()) {
	select {
	case m.msgs <- fn:
	case <-m.quit:
	}
}

func (m *Manager) run() {
	defer close(m.done)

	var tick <-chan time.Time

	if iv := m.cfg.ScanInterval.Std(); iv > 0 {
		ticker := m.clock.NewTicker(iv)
		defer ticker.Stop()

		tick = ticker.Chan()
	}

	m.refreshSaved(nil)
	m.refreshRadio(nil)

	if tick != nil {
		m.startScan(nil, true)
	}

	for {
		select {
		case fn := <-m.msgs:
			fn()
		case <-tick:
			m.startScan(nil, true)
		case <-m.runCtx.Done():
			m.closeQuit()
			m.cancelRetry()

			return
		case <-m.quit:
			m.cancelRetry()

			return
		}
	}
}

func (m *Manager) current() models.ConnectionState {
	return *m.state.Load()
}

func (m *Manager) transition(next models.ConnectionState) {
	prev := m.current()
	m.state.Store(&next)

	m.logger.Info().
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("Connection state changed")

	m.emit(models.EventConnection)
}

func (m *Manager) emit(kind models.EventKind) {
	if m.notify != nil {
		m.notify(kind)
	}
}

func (m *Manager) busyError() error {
	if m.busy == opConnect || m.busy == opReconnect {
		return models.ErrAlreadyInProgress
	}

	return fmt.Errorf("%w: %s", models.ErrOperationInProgress, m.busy)
}
