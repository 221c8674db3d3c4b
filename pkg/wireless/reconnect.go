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

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
)

// retryState tracks one automatic reconnect sequence. A sequence is
// cancelled by dropping the pointer; timers compare against it before acting.
type retryState struct {
	ssid    string
	attempt int
	bo      *backoff.ExponentialBackOff
	timer   clockwork.Timer
}

func (m *Manager) shouldReconnect(ssid string) bool {
	return m.cfg.AutoReconnect && !m.paused && m.radio.Load() && m.cfg.ReconnectAttempts > 0 && m.isSaved(ssid)
}

func (m *Manager) beginReconnect(ssid string) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.ReconnectInitial.Std()
	bo.MaxInterval = m.cfg.ReconnectMax.Std()
	bo.Multiplier = reconnectMultiplier
	bo.RandomizationFactor = m.cfg.ReconnectJitter

	m.retry = &retryState{ssid: ssid, bo: bo}

	m.logger.Info().
		Str("ssid", ssid).
		Int("max_attempts", m.cfg.ReconnectAttempts).
		Msg("Starting automatic reconnect")

	m.attemptReconnect(m.retry)
}

func (m *Manager) attemptReconnect(r *retryState) {
	r.attempt++
	r.timer = nil

	ssid, attempt := r.ssid, r.attempt

	m.busy = opReconnect
	m.transition(models.Connecting(ssid, attempt, m.cfg.ReconnectAttempts, m.clock.Now()))

	m.spawn(func(ctx context.Context) func() {
		desc, err := m.bridge.Connect(ctx, ssid, nil, true)

		return func() { m.finishConnect(ssid, true, desc, err, nil, attempt) }
	})
}

// retryFailed handles a failed reconnect attempt: it either schedules the
// next one or gives up and leaves the manager in Failed.
func (m *Manager) retryFailed(ssid string, attempt int, err error) {
	now := m.clock.Now()
	maxAttempts := m.cfg.ReconnectAttempts
	r := m.retry

	if r == nil || r.ssid != ssid || r.attempt != attempt || m.paused {
		m.retry = nil
		m.transition(models.Failed(ssid, err.Error(), attempt, maxAttempts, nil, now))

		return
	}

	if r.attempt >= maxAttempts {
		m.retry = nil

		m.logger.Error().Err(err).
			Str("ssid", ssid).
			Int("attempts", r.attempt).
			Msg("Automatic reconnect gave up")

		m.transition(models.Failed(ssid, err.Error(), r.attempt, maxAttempts, nil, now))

		return
	}

	wait := r.bo.NextBackOff()
	next := now.Add(wait)

	r.timer = m.clock.AfterFunc(wait, func() {
		m.post(func() {
			if m.retry == r && r.timer != nil {
				m.attemptReconnect(r)
			}
		})
	})

	m.logger.Warn().Err(err).
		Str("ssid", ssid).
		Int("attempt", r.attempt).
		Dur("retry_in", wait).
		Msg("Reconnect attempt failed")

	m.transition(models.Failed(ssid, err.Error(), r.attempt, maxAttempts, &next, now))
}

func (m *Manager) cancelRetry() {
	if m.retry == nil {
		return
	}

	if m.retry.timer != nil {
		m.retry.timer.Stop()
	}

	m.logger.Debug().Str("ssid", m.retry.ssid).Msg("Automatic reconnect cancelled")

	m.retry = nil
}

func (m *Manager) setPaused(paused bool) {
	if m.paused == paused {
		return
	}

	m.paused = paused

	m.logger.Info().Bool("paused", paused).Msg("Automatic reconnect pause changed")

	if !paused || m.retry == nil {
		return
	}

	m.cancelRetry()

	if cur := m.current(); cur.Phase == models.ConnectionFailed && cur.NextRetryAt != nil {
		m.transition(models.Failed(cur.Target, cur.Reason, cur.Attempt, cur.MaxAttempts, nil, m.clock.Now()))
	}
}
