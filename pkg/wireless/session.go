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

package wireless

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
)

// Everything in this file runs on the manager goroutine.

func (m *Manager) startScan(reply chan<- scanResult, periodic bool) {
	cur := m.current()

	if periodic && (m.busy != "" || m.paused || !m.radio.Load()) {
		return
	}

	if cur.Phase == models.ConnectionConnecting {
		if reply != nil {
			reply <- scanResult{err: models.ErrAlreadyInProgress}
		}

		return
	}

	if reply != nil {
		m.scanWaiters = append(m.scanWaiters, reply)
	}

	if m.scanning {
		return
	}

	m.scanning = true

	if cur.Phase == models.ConnectionDisconnected {
		m.transition(models.Scanning(m.clock.Now()))
	}

	m.spawn(func(ctx context.Context) func() {
		networks, err := m.bridge.Scan(ctx)

		return func() { m.finishScan(networks, err) }
	})
}

func (m *Manager) finishScan(networks []models.NetworkDescriptor, err error) {
	m.scanning = false
	waiters := m.scanWaiters
	m.scanWaiters = nil

	if err != nil {
		m.logger.Warn().Err(err).Msg("Scan failed")
	} else {
		m.storeNetworks(networks)
		m.logger.Debug().Int("count", len(networks)).Msg("Scan completed")
	}

	if m.current().Phase == models.ConnectionScanning {
		m.transition(models.Disconnected(m.clock.Now()))
	}

	for _, w := range waiters {
		if err != nil {
			w <- scanResult{err: err}
		} else {
			w <- scanResult{networks: m.Networks()}
		}
	}
}

func (m *Manager) startConnect(ssid string, secret *string, reply chan<- error) {
	if m.busy != "" {
		reply <- m.busyError()

		return
	}

	saved := m.isSaved(ssid)

	if secret != nil && *secret == "" {
		secret = nil
	}

	if !saved && secret == nil {
		if desc, ok := m.lookup(ssid); ok && desc.Secured() {
			reply <- fmt.Errorf("%w: network %q is secured and not saved, a secret is required",
				models.ErrInvalidArgument, ssid)

			return
		}
	}

	m.cancelRetry()

	m.busy = opConnect
	m.transition(models.Connecting(ssid, 0, 0, m.clock.Now()))

	secured := secret != nil

	m.spawn(func(ctx context.Context) func() {
		desc, err := m.bridge.Connect(ctx, ssid, secret, saved)

		return func() { m.finishConnect(ssid, secured || saved, desc, err, reply, 0) }
	})
}

// finishConnect applies the outcome of a connect call. attempt is zero for
// user requests and the reconnect attempt number otherwise.
func (m *Manager) finishConnect(ssid string, remember bool, desc models.NetworkDescriptor, err error,
	reply chan<- error, attempt int) {
	m.busy = ""
	m.expectDown = ""
	now := m.clock.Now()

	if err != nil {
		if attempt > 0 {
			m.retryFailed(ssid, attempt, err)
		} else {
			m.logger.Warn().Err(err).Str("ssid", ssid).Msg("Connect failed")
			m.transition(models.Failed(ssid, err.Error(), 0, 0, nil, now))
		}

		if reply != nil {
			reply <- err
		}

		return
	}

	m.retry = nil

	if desc.SSID == "" {
		desc.SSID = ssid
	}

	if remember {
		m.rememberSaved(ssid, now)
	}

	desc.Saved = m.isSaved(ssid)
	desc.Active = true

	m.markActive(ssid)
	m.transition(models.Connected(desc, now))

	if reply != nil {
		reply <- nil
	}
}

func (m *Manager) startDisconnect(reply chan<- error) {
	if m.busy != "" {
		reply <- m.busyError()

		return
	}

	m.cancelRetry()

	cur := m.current()

	switch cur.Phase {
	case models.ConnectionConnected:
	case models.ConnectionFailed:
		m.transition(models.Disconnected(m.clock.Now()))

		reply <- nil

		return
	case models.ConnectionDisconnected, models.ConnectionScanning, models.ConnectionConnecting:
		reply <- nil

		return
	}

	if cur.Network != nil {
		m.expectDown = cur.Network.SSID
	}

	m.busy = opDisconnect

	m.spawn(func(ctx context.Context) func() {
		err := m.bridge.Disconnect(ctx)

		return func() { m.finishDisconnect(err, reply) }
	})
}

func (m *Manager) finishDisconnect(err error, reply chan<- error) {
	m.busy = ""
	m.expectDown = ""

	if err != nil {
		m.logger.Warn().Err(err).Msg("Disconnect failed")

		reply <- err

		return
	}

	if m.current().Phase == models.ConnectionConnected {
		m.markActive("")
		m.transition(models.Disconnected(m.clock.Now()))
	}

	reply <- nil
}

func (m *Manager) startForget(ssid string, reply chan<- error) {
	if m.busy != "" {
		reply <- m.busyError()

		return
	}

	if m.retry != nil && m.retry.ssid == ssid {
		m.cancelRetry()

		if m.current().Phase == models.ConnectionFailed {
			m.transition(models.Disconnected(m.clock.Now()))
		}
	}

	if m.connectedTo(ssid) {
		m.expectDown = ssid
	}

	m.busy = opForget

	m.spawn(func(ctx context.Context) func() {
		err := m.bridge.Forget(ctx, ssid)

		return func() { m.finishForget(ssid, err, reply) }
	})
}

func (m *Manager) finishForget(ssid string, err error, reply chan<- error) {
	m.busy = ""
	m.expectDown = ""

	if err != nil {
		m.logger.Warn().Err(err).Str("ssid", ssid).Msg("Forget failed")

		reply <- err

		return
	}

	saved := slices.DeleteFunc(m.Saved(), func(c models.SavedCredential) bool { return c.SSID == ssid })
	m.storeSaved(saved)

	if m.connectedTo(ssid) {
		m.markActive("")
		m.transition(models.Disconnected(m.clock.Now()))
	}

	m.logger.Info().Str("ssid", ssid).Msg("Saved network removed")

	reply <- nil
}

func (m *Manager) refreshSaved(reply chan<- error) {
	m.spawn(func(ctx context.Context) func() {
		saved, err := m.bridge.SavedNetworks(ctx)

		return func() {
			if err != nil {
				m.logger.Warn().Err(err).Msg("Failed to load saved networks")
			} else {
				m.storeSaved(saved)
			}

			if reply != nil {
				reply <- err
			}
		}
	})
}

// refreshRadio reads the radio state. A read that started before the last
// switch is stale and is dropped.
func (m *Manager) refreshRadio(reply chan<- error) {
	gen := m.radioGen

	m.spawn(func(ctx context.Context) func() {
		enabled, err := m.bridge.RadioEnabled(ctx)

		return func() {
			switch {
			case err != nil:
				m.logger.Warn().Err(err).Msg("Failed to read radio state")
			case gen == m.radioGen:
				m.storeRadio(enabled)
			}

			if reply != nil {
				reply <- err
			}
		}
	})
}

func (m *Manager) startSetRadio(enabled bool, reply chan<- error) {
	if m.busy != "" {
		reply <- m.busyError()

		return
	}

	if !enabled {
		m.cancelRetry()

		if cur := m.current(); cur.Phase == models.ConnectionFailed && cur.NextRetryAt != nil {
			m.transition(models.Failed(cur.Target, cur.Reason, cur.Attempt, cur.MaxAttempts, nil, m.clock.Now()))
		}
	}

	m.busy = opRadio
	m.radioGen++

	m.spawn(func(ctx context.Context) func() {
		err := m.bridge.SetRadioEnabled(ctx, enabled)

		return func() {
			m.busy = ""

			if err != nil {
				m.logger.Warn().Err(err).Bool("enabled", enabled).Msg("Radio switch failed")

				reply <- err

				return
			}

			m.storeRadio(enabled)

			reply <- nil
		}
	})
}

func (m *Manager) storeRadio(enabled bool) {
	if m.radio.Swap(enabled) == enabled {
		return
	}

	m.logger.Info().Bool("enabled", enabled).Msg("Radio state changed")
	m.emit(models.EventRadio)
}

func (m *Manager) startSetAutoconnect(ssid string, enabled bool, reply chan<- error) {
	if m.busy != "" {
		reply <- m.busyError()

		return
	}

	if !m.isSaved(ssid) {
		reply <- fmt.Errorf("%w: network %q is not saved", models.ErrInvalidArgument, ssid)

		return
	}

	m.busy = opAutoconn

	m.spawn(func(ctx context.Context) func() {
		err := m.bridge.SetAutoconnect(ctx, ssid, enabled)

		return func() {
			m.busy = ""

			if err != nil {
				m.logger.Warn().Err(err).Str("ssid", ssid).Msg("Autoconnect change failed")

				reply <- err

				return
			}

			saved := m.Saved()
			if i := slices.IndexFunc(saved, func(c models.SavedCredential) bool { return c.SSID == ssid }); i >= 0 {
				saved[i].AutoConnect = enabled
				m.storeSaved(saved)
			}

			reply <- nil
		}
	})
}

func (m *Manager) handleEvent(ev models.BridgeEvent) {
	cur := m.current()
	now := m.clock.Now()

	switch ev.Kind {
	case models.BridgeWirelessDisconnected, models.BridgeServiceStopped:
		if cur.Phase != models.ConnectionConnected || cur.Network == nil {
			return
		}

		ssid := cur.Network.SSID
		if ev.Kind == models.BridgeWirelessDisconnected && ev.SSID != "" && ev.SSID != ssid {
			return
		}

		if m.expectDown == ssid {
			return
		}

		m.logger.Warn().Str("ssid", ssid).Str("cause", string(ev.Kind)).Msg("Connection lost")

		m.markActive("")
		m.transition(models.Disconnected(now))

		if m.shouldReconnect(ssid) {
			m.beginReconnect(ssid)
		}
	case models.BridgeWirelessConnected:
		if ev.SSID == "" || m.busy != "" || m.connectedTo(ev.SSID) {
			return
		}

		m.cancelRetry()

		desc, ok := m.lookup(ev.SSID)
		if !ok {
			desc = models.NetworkDescriptor{SSID: ev.SSID, Security: models.SecurityUnknown}
		}

		desc.Saved = m.isSaved(ev.SSID)
		desc.Active = true

		m.markActive(ev.SSID)
		m.transition(models.Connected(desc, now))
	case models.BridgeServiceStarted:
		m.refreshSaved(nil)
		m.refreshRadio(nil)
	case models.BridgeAccessPointDown:
	}
}

func (m *Manager) connectedTo(ssid string) bool {
	cur := m.current()

	return cur.Phase == models.ConnectionConnected && cur.Network != nil && cur.Network.SSID == ssid
}

func (m *Manager) isSaved(ssid string) bool {
	return slices.ContainsFunc(*m.saved.Load(), func(c models.SavedCredential) bool { return c.SSID == ssid })
}

func (m *Manager) lookup(ssid string) (models.NetworkDescriptor, bool) {
	for _, n := range *m.networks.Load() {
		if n.SSID == ssid {
			return n, true
		}
	}

	return models.NetworkDescriptor{}, false
}

func (m *Manager) rememberSaved(ssid string, now time.Time) {
	saved := m.Saved()

	i := slices.IndexFunc(saved, func(c models.SavedCredential) bool { return c.SSID == ssid })
	if i < 0 {
		saved = append(saved, models.SavedCredential{SSID: ssid, LastConnected: now, AutoConnect: true})
	} else {
		saved[i].LastConnected = now
	}

	m.storeSaved(saved)
}

// storeSaved replaces the saved set and re-derives the Saved flag of every
// scanned network.
func (m *Manager) storeSaved(saved []models.SavedCredential) {
	m.saved.Store(&saved)
	m.emit(models.EventSaved)

	m.storeNetworks(m.Networks())
}

func (m *Manager) storeNetworks(networks []models.NetworkDescriptor) {
	for i := range networks {
		networks[i].Saved = m.isSaved(networks[i].SSID)
	}

	m.networks.Store(&networks)
	m.emit(models.EventNetworks)
}

// markActive flags ssid as the active network; an empty ssid clears it.
func (m *Manager) markActive(ssid string) {
	networks := m.Networks()
	changed := false

	for i := range networks {
		active := ssid != "" && networks[i].SSID == ssid
		if networks[i].Active != active {
			networks[i].Active = active
			changed = true
		}
	}

	if changed {
		m.networks.Store(&networks)
		m.emit(models.EventNetworks)
	}
}
