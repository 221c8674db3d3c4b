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

package bridge

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/cenkalti/backoff/v5"
)

const (
	monitorInitialBackoff = time.Second
	monitorMaxBackoff     = 30 * time.Second
	// A monitor that stayed up this long resets the restart backoff.
	monitorHealthyRun = time.Minute
)

// Start launches the `nmcli monitor` reader that feeds Events. It returns
// immediately; the reader restarts with backoff whenever the monitor exits.
func (n *NMCLI) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done != nil || !n.cfg.Monitor {
		return nil
	}

	ctx, n.cancel = context.WithCancel(ctx)
	n.done = make(chan struct{})

	go n.monitorLoop(ctx)

	n.logger.Info().Msg("Daemon monitor started")

	return nil
}

// Stop ends the monitor and closes the Events channel.
func (n *NMCLI) Stop(ctx context.Context) error {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel = nil
	n.mu.Unlock()

	if cancel != nil {
		cancel()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n.closeOnce.Do(func() { close(n.events) })

	return nil
}

func (n *NMCLI) monitorLoop(ctx context.Context) {
	defer close(n.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = monitorInitialBackoff
	bo.MaxInterval = monitorMaxBackoff

	for {
		started := time.Now()

		err := n.monitorOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(started) > monitorHealthyRun {
			bo.Reset()
		}

		wait := bo.NextBackOff()

		n.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Daemon monitor exited, restarting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (n *NMCLI) monitorOnce(ctx context.Context) error {
	p := newMonitorParser(n.cfg.HotspotConnection)

	if ifaces, err := n.WirelessInterfaces(ctx); err == nil {
		p.setWireless(ifaces)
	}

	// Seed the device map so a disconnect of a connection that was already
	// up when the monitor started is still attributed.
	if conns, err := n.active(ctx); err == nil {
		for _, c := range conns {
			if c.Device != "" {
				p.conn[c.Device] = c.Name
			}
		}
	}

	stream, err := n.exec.Stream(ctx, n.cfg.NMCLIPath, "monitor")
	if err != nil {
		return classifyRunError("monitor", err)
	}
	defer func() { _ = stream.Close() }()

	sc := bufio.NewScanner(stream)
	for sc.Scan() {
		ev, ok := p.parse(sc.Text(), time.Now())
		if !ok {
			continue
		}

		select {
		case n.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}

	return errMonitorExited
}

// monitorParser turns `nmcli monitor` lines into BridgeEvents. It remembers
// which profile each device is using so a disconnect can be attributed.
type monitorParser struct {
	hotspot  string
	wireless map[string]bool
	conn     map[string]string
}

func newMonitorParser(hotspot string) *monitorParser {
	return &monitorParser{hotspot: hotspot, conn: make(map[string]string)}
}

func (p *monitorParser) setWireless(ifaces []string) {
	if len(ifaces) == 0 {
		return
	}

	p.wireless = make(map[string]bool, len(ifaces))
	for _, i := range ifaces {
		p.wireless[i] = true
	}
}

func (p *monitorParser) parse(line string, now time.Time) (models.BridgeEvent, bool) {
	line = strings.TrimSpace(line)

	switch line {
	case "NetworkManager is stopped":
		return models.BridgeEvent{Kind: models.BridgeServiceStopped, Time: now}, true
	case "NetworkManager is running":
		return models.BridgeEvent{Kind: models.BridgeServiceStarted, Time: now}, true
	}

	idx := strings.Index(line, ": ")
	if idx <= 0 || strings.HasPrefix(line, "'") {
		return models.BridgeEvent{}, false
	}

	dev, rest := line[:idx], line[idx+2:]
	if p.wireless != nil && !p.wireless[dev] {
		return models.BridgeEvent{}, false
	}

	switch {
	case strings.HasPrefix(rest, "using connection '"):
		p.conn[dev] = strings.TrimSuffix(strings.TrimPrefix(rest, "using connection '"), "'")

		return models.BridgeEvent{}, false
	case rest == "connected":
		name := p.conn[dev]
		if name == p.hotspot {
			return models.BridgeEvent{}, false
		}

		return models.BridgeEvent{Kind: models.BridgeWirelessConnected, Interface: dev, SSID: name, Time: now}, true
	case rest == "disconnected" || rest == "unavailable":
		name, known := p.conn[dev]
		delete(p.conn, dev)

		if known && name == p.hotspot {
			return models.BridgeEvent{Kind: models.BridgeAccessPointDown, Interface: dev, Time: now}, true
		}

		if !known {
			return models.BridgeEvent{}, false
		}

		return models.BridgeEvent{Kind: models.BridgeWirelessDisconnected, Interface: dev, SSID: name, Time: now}, true
	default:
		return models.BridgeEvent{}, false
	}
}
