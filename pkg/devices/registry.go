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

// Package devices tracks the clients attached to the local access point.
// It polls the daemon's lease list and the neighbor table while the
// hotspot runs and merges both into one entry per hardware address.
package devices

import (
	"context"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/jonboulle/clockwork"
	psnet "github.com/shirou/gopsutil/v3/net"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRefreshInterval = 5 * time.Second
	defaultFreshnessFactor = 3
)

// Config tunes the refresh loop.
type Config struct {
	RefreshInterval models.Duration `json:"refresh_interval"`
	// FreshnessFactor is how many refresh intervals an entry may go unseen
	// before it is evicted.
	FreshnessFactor int      `json:"freshness_factor"`
	OUIPaths        []string `json:"oui_paths,omitempty"`
}

// DefaultConfig returns the registry defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: models.Duration(defaultRefreshInterval),
		FreshnessFactor: defaultFreshnessFactor,
		OUIPaths:        DefaultOUIPaths,
	}
}

func (c *Config) applyDefaults() {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = models.Duration(defaultRefreshInterval)
	}

	if c.FreshnessFactor <= 0 {
		c.FreshnessFactor = defaultFreshnessFactor
	}
}

// Freshness is the eviction window.
func (c *Config) Freshness() time.Duration {
	return time.Duration(c.FreshnessFactor) * c.RefreshInterval.Std()
}

// LocalAddrFunc reports the addresses and hardware addresses owned by this
// host, which are never listed as clients.
type LocalAddrFunc func(ctx context.Context) (map[string]bool, error)

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces the wall clock that drives refreshes.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithClassifier replaces the classifier loaded from the OUI paths.
func WithClassifier(c *Classifier) Option {
	return func(r *Registry) { r.classifier = c }
}

// WithLocalAddrs replaces the host address lookup.
func WithLocalAddrs(fn LocalAddrFunc) Option {
	return func(r *Registry) { r.localAddrs = fn }
}

// WithNotifier registers the change callback. It must not block.
func WithNotifier(fn func(models.EventKind)) Option {
	return func(r *Registry) { r.notify = fn }
}

// Registry is the device registry.
type Registry struct {
	bridge     bridge.Bridge
	cfg        Config
	logger     logger.Logger
	clock      clockwork.Clock
	classifier *Classifier
	localAddrs LocalAddrFunc
	notify     func(models.EventKind)

	snapshot atomic.Pointer[[]models.DeviceEntry]

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	entries map[string]models.DeviceEntry
}

// New returns an idle registry.
func New(cfg Config, br bridge.Bridge, log logger.Logger, opts ...Option) *Registry {
	cfg.applyDefaults()

	r := &Registry{
		bridge:     br,
		cfg:        cfg,
		logger:     logger.Component(log, "devices"),
		clock:      clockwork.NewRealClock(),
		localAddrs: hostAddresses,
		entries:    make(map[string]models.DeviceEntry),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.classifier == nil {
		r.classifier = LoadClassifier(cfg.OUIPaths, log)
	}

	r.snapshot.Store(&[]models.DeviceEntry{})

	return r
}

// Devices returns the current entries ordered by IP.
func (r *Registry) Devices() []models.DeviceEntry {
	cur := *r.snapshot.Load()
	out := make([]models.DeviceEntry, len(cur))

	for i, e := range cur {
		e.Sources = append([]models.DeviceSource(nil), e.Sources...)
		out[i] = e
	}

	return out
}

// Start begins refreshing for clients of iface. A running loop is replaced.
func (r *Registry) Start(iface string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	r.gen++
	gen := r.gen

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go r.loop(ctx, gen, iface)

	r.logger.Info().Str("interface", iface).Dur("interval", r.cfg.RefreshInterval.Std()).Msg("Device registry started")
}

// Stop cancels the refresh loop and clears the registry. It does not wait
// for an in-flight refresh; its result is discarded.
func (r *Registry) Stop() {
	r.mu.Lock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.gen++
	hadEntries := len(r.entries) > 0
	r.entries = make(map[string]models.DeviceEntry)
	r.snapshot.Store(&[]models.DeviceEntry{})

	r.mu.Unlock()

	r.logger.Info().Msg("Device registry stopped")

	if hadEntries {
		r.emit()
	}
}

func (r *Registry) loop(ctx context.Context, gen uint64, iface string) {
	ticker := r.clock.NewTicker(r.cfg.RefreshInterval.Std())
	defer ticker.Stop()

	r.refresh(ctx, gen, iface)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.refresh(ctx, gen, iface)
		}
	}
}

func (r *Registry) refresh(ctx context.Context, gen uint64, iface string) {
	observations := r.collect(ctx, iface)
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()

	if gen != r.gen {
		r.mu.Unlock()

		return
	}

	next := Merge(r.entries, observations, r.clock.Now(), r.cfg.Freshness(), r.classifier)
	changed := !sameClients(r.entries, next)

	r.entries = next
	sorted := Sorted(next)
	r.snapshot.Store(&sorted)

	r.mu.Unlock()

	if changed {
		r.logger.Debug().Int("devices", len(next)).Msg("Device registry changed")
		r.emit()
	}
}

// collect queries both sources in parallel. A failing source is logged and
// skipped; the other still contributes.
func (r *Registry) collect(ctx context.Context, iface string) []Observation {
	var (
		leases    []models.Lease
		neighbors []models.Neighbor
		local     map[string]bool
	)

	var g errgroup.Group

	g.Go(func() error {
		var err error
		if leases, err = r.bridge.ListAttachedLeases(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Lease source failed")
		}

		return nil
	})

	g.Go(func() error {
		var err error
		if neighbors, err = r.bridge.Neighbors(ctx, iface); err != nil {
			r.logger.Warn().Err(err).Str("interface", iface).Msg("Neighbor source failed")
		}

		return nil
	})

	g.Go(func() error {
		var err error
		if local, err = r.localAddrs(ctx); err != nil {
			r.logger.Debug().Err(err).Msg("Local address lookup failed")
		}

		return nil
	})

	_ = g.Wait()

	now := r.clock.Now()
	observations := make([]Observation, 0, len(leases)+len(neighbors))

	for _, l := range leases {
		if !l.Expiry.IsZero() && l.Expiry.Before(now) {
			continue
		}

		ip := clientIP(l.IP)
		if local[strings.ToLower(l.MAC)] || local[ip] {
			continue
		}

		observations = append(observations, Observation{
			MAC:      l.MAC,
			IP:       ip,
			Hostname: l.Hostname,
			Source:   models.SourceLease,
		})
	}

	// Neighbors go last: the table is more current than the lease file.
	for _, n := range neighbors {
		ip := clientIP(n.IP)
		if local[strings.ToLower(n.MAC)] || local[ip] {
			continue
		}

		observations = append(observations, Observation{
			MAC:    n.MAC,
			IP:     ip,
			Source: models.SourceNeighbor,
		})
	}

	return observations
}

func (r *Registry) emit() {
	if r.notify != nil {
		r.notify(models.EventDevices)
	}
}

// clientIP drops addresses that cannot belong to a client: network and
// broadcast addresses and link-local IPv6.
func clientIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}

	if addr.Is6() && addr.IsLinkLocalUnicast() {
		return ""
	}

	if addr.Is4() {
		last := addr.As4()[3]
		if last == 0 || last == 255 {
			return ""
		}
	}

	return addr.String()
}

// sameClients reports whether a and b list the same clients with the same
// details, ignoring LastSeen.
func sameClients(a, b map[string]models.DeviceEntry) bool {
	if len(a) != len(b) {
		return false
	}

	for mac, ea := range a {
		eb, ok := b[mac]
		if !ok {
			return false
		}

		if ea.IP != eb.IP || ea.Hostname != eb.Hostname || ea.Class != eb.Class ||
			ea.Vendor != eb.Vendor || !slices.Equal(ea.Sources, eb.Sources) {
			return false
		}
	}

	return true
}

// hostAddresses lists this host's IP and hardware addresses.
func hostAddresses(ctx context.Context) (map[string]bool, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	local := make(map[string]bool)

	for _, iface := range ifaces {
		if iface.HardwareAddr != "" {
			local[strings.ToLower(iface.HardwareAddr)] = true
		}

		for _, a := range iface.Addrs {
			if prefix, err := netip.ParsePrefix(a.Addr); err == nil {
				local[prefix.Addr().String()] = true
			} else if addr, err := netip.ParseAddr(a.Addr); err == nil {
				local[addr.String()] = true
			}
		}
	}

	return local, nil
}
