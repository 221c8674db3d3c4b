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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
)

const (
	defaultNMCLIPath         = "nmcli"
	defaultIPPath            = "ip"
	defaultCommandTimeout    = 90 * time.Second
	defaultHotspotConnection = "Hotspot"
	defaultSharedAddress     = "192.168.50.1/24"
	eventBufferSize          = 64
)

// DefaultLeaseGlobs lists where dnsmasq leases live, most specific first.
var DefaultLeaseGlobs = []string{
	"/var/lib/NetworkManager/dnsmasq-*.leases",
	"/var/lib/dnsmasq/dnsmasq.leases",
	"/var/lib/misc/dnsmasq.leases",
	"/var/db/dnsmasq.leases",
	"/tmp/dnsmasq.leases",
}

// Config controls how the bridge reaches the daemon.
type Config struct {
	NMCLIPath         string          `json:"nmcli_path"`
	IPPath            string          `json:"ip_path"`
	CommandTimeout    models.Duration `json:"command_timeout"`
	HotspotConnection string          `json:"hotspot_connection"`
	SharedAddress     string          `json:"shared_address"`
	LeaseGlobs        []string        `json:"lease_globs"`
	Monitor           bool            `json:"monitor"`
}

// DefaultConfig returns the stock NetworkManager setup.
func DefaultConfig() Config {
	return Config{
		NMCLIPath:         defaultNMCLIPath,
		IPPath:            defaultIPPath,
		CommandTimeout:    models.Duration(defaultCommandTimeout),
		HotspotConnection: defaultHotspotConnection,
		SharedAddress:     defaultSharedAddress,
		LeaseGlobs:        DefaultLeaseGlobs,
		Monitor:           true,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.NMCLIPath == "" {
		c.NMCLIPath = d.NMCLIPath
	}

	if c.IPPath == "" {
		c.IPPath = d.IPPath
	}

	if c.CommandTimeout <= 0 {
		c.CommandTimeout = d.CommandTimeout
	}

	if c.HotspotConnection == "" {
		c.HotspotConnection = d.HotspotConnection
	}

	if c.SharedAddress == "" {
		c.SharedAddress = d.SharedAddress
	}

	if len(c.LeaseGlobs) == 0 {
		c.LeaseGlobs = d.LeaseGlobs
	}
}

// NMCLI drives NetworkManager through its command line client.
type NMCLI struct {
	cfg    Config
	exec   Executor
	logger logger.Logger
	events chan models.BridgeEvent

	mu        sync.Mutex
	security  map[string]models.SecurityKind // last scan, by SSID
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

var _ Bridge = (*NMCLI)(nil)

// NewNMCLI creates a bridge. Start must be called to receive events.
func NewNMCLI(cfg Config, exec Executor, log logger.Logger) *NMCLI {
	cfg.applyDefaults()

	return &NMCLI{
		cfg:      cfg,
		exec:     exec,
		logger:   logger.Component(log, "bridge"),
		events:   make(chan models.BridgeEvent, eventBufferSize),
		security: make(map[string]models.SecurityKind),
	}
}

func (n *NMCLI) Events() <-chan models.BridgeEvent {
	return n.events
}

// nmcli runs one nmcli command under the bridge's command timeout.
func (n *NMCLI) nmcli(ctx context.Context, op string, args ...string) (string, error) {
	return n.run(ctx, op, n.cfg.NMCLIPath, args...)
}

func (n *NMCLI) run(ctx context.Context, op, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.CommandTimeout.Std())
	defer cancel()

	res, err := n.exec.Run(ctx, name, args...)
	if err != nil {
		return "", classifyRunError(op, err)
	}

	if res.ExitCode != 0 {
		return "", classify(op, res)
	}

	return res.Stdout, nil
}

func (n *NMCLI) Scan(ctx context.Context) ([]models.NetworkDescriptor, error) {
	out, err := n.nmcli(ctx, "scan",
		"-t", "-f", "SSID,SIGNAL,SECURITY,ACTIVE,CHAN,FREQ", "device", "wifi", "list", "--rescan", "yes")
	if err != nil {
		return nil, err
	}

	networks := parseScan(out)

	n.mu.Lock()
	n.security = make(map[string]models.SecurityKind, len(networks))

	for i := range networks {
		if _, ok := n.security[networks[i].SSID]; !ok {
			n.security[networks[i].SSID] = networks[i].Security
		}
	}
	n.mu.Unlock()

	return networks, nil
}

func (n *NMCLI) Connect(ctx context.Context, ssid string, secret *string, saved bool) (models.NetworkDescriptor, error) {
	var args []string

	switch {
	case saved && secret == nil:
		args = []string{"connection", "up", "id", ssid}
	case secret == nil || *secret == "":
		args = []string{"device", "wifi", "connect", ssid}
	default:
		args = []string{"device", "wifi", "connect", ssid, "password", *secret}
	}

	_, err := n.nmcli(ctx, "connect", args...)
	if err != nil && isInterrupted(detail(err)) {
		n.logger.Info().Str("ssid", ssid).Msg("Network not visible, rescanning before retry")

		if _, rerr := n.nmcli(ctx, "rescan", "device", "wifi", "rescan"); rerr != nil {
			n.logger.Debug().Err(rerr).Msg("Rescan failed")
		}

		_, err = n.nmcli(ctx, "connect", args...)
	}

	if err != nil && secret != nil && *secret != "" && isKeyMgmtMissing(detail(err)) {
		err = n.connectWithKeyMgmt(ctx, ssid, *secret)
	}

	if err != nil {
		return models.NetworkDescriptor{}, err
	}

	return n.describeActive(ctx, ssid), nil
}

// connectWithKeyMgmt creates the profile by hand when nmcli cannot infer the
// key management scheme from the scan.
func (n *NMCLI) connectWithKeyMgmt(ctx context.Context, ssid, secret string) error {
	n.mu.Lock()
	sec := n.security[ssid]
	n.mu.Unlock()

	keyMgmt := "wpa-psk"
	if sec == models.SecurityWPA3 {
		keyMgmt = "sae"
	}

	if _, err := n.nmcli(ctx, "connect", "connection", "add", "type", "wifi",
		"con-name", ssid, "ssid", ssid); err != nil && !errors.Is(err, models.ErrInvalidArgument) {
		return err
	}

	if _, err := n.nmcli(ctx, "connect", "connection", "modify", "id", ssid,
		"wifi-sec.key-mgmt", keyMgmt, "wifi-sec.psk", secret); err != nil {
		return err
	}

	_, err := n.nmcli(ctx, "connect", "connection", "up", "id", ssid)

	return err
}

// describeActive looks up the descriptor of the network just joined without
// triggering another radio scan.
func (n *NMCLI) describeActive(ctx context.Context, ssid string) models.NetworkDescriptor {
	out, err := n.nmcli(ctx, "describe",
		"-t", "-f", "SSID,SIGNAL,SECURITY,ACTIVE,CHAN,FREQ", "device", "wifi", "list", "--rescan", "no")
	if err == nil {
		for _, net := range parseScan(out) {
			if net.SSID == ssid && net.Active {
				return net
			}
		}
	}

	return models.NetworkDescriptor{SSID: ssid, Security: models.SecurityUnknown, Active: true}
}

func (n *NMCLI) active(ctx context.Context) ([]activeConnection, error) {
	out, err := n.nmcli(ctx, "list active",
		"-t", "-f", "NAME,TYPE,DEVICE,STATE", "connection", "show", "--active")
	if err != nil {
		return nil, err
	}

	return parseActive(out), nil
}

func (n *NMCLI) Disconnect(ctx context.Context) error {
	conns, err := n.active(ctx)
	if err != nil {
		return err
	}

	for _, c := range conns {
		if c.Type != wirelessConnType || c.Name == n.cfg.HotspotConnection {
			continue
		}

		_, err = n.nmcli(ctx, "disconnect", "connection", "down", "id", c.Name)
		if err == nil {
			return nil
		}

		if c.Device == "" {
			return err
		}

		n.logger.Warn().Err(err).Str("device", c.Device).Msg("connection down failed, disconnecting device")

		_, err = n.nmcli(ctx, "disconnect", "device", "disconnect", c.Device)

		return err
	}

	return nil
}

func (n *NMCLI) Forget(ctx context.Context, ssid string) error {
	_, err := n.nmcli(ctx, "forget", "connection", "delete", "id", ssid)

	return err
}

func (n *NMCLI) SavedNetworks(ctx context.Context) ([]models.SavedCredential, error) {
	out, err := n.nmcli(ctx, "saved networks", "-t", "-f", "NAME,TYPE,TIMESTAMP,AUTOCONNECT", "connection", "show")
	if err != nil {
		return nil, err
	}

	return parseSaved(out, n.cfg.HotspotConnection), nil
}

func (n *NMCLI) SetAutoconnect(ctx context.Context, ssid string, enabled bool) error {
	_, err := n.nmcli(ctx, "set autoconnect",
		"connection", "modify", "id", ssid, "connection.autoconnect", yesNo(enabled))

	return err
}

func (n *NMCLI) RadioEnabled(ctx context.Context) (bool, error) {
	out, err := n.nmcli(ctx, "radio state", "-t", "-f", "WIFI", "radio")
	if err != nil {
		return false, err
	}

	if rows := lines(out); len(rows) > 0 {
		return parseYes(rows[0]), nil
	}

	return false, models.NewOpError("radio state", models.ErrServiceUnavailable, "empty radio state")
}

func (n *NMCLI) SetRadioEnabled(ctx context.Context, enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}

	_, err := n.nmcli(ctx, "set radio", "radio", "wifi", state)

	return err
}

// NetworkInfo reads the saved profile of ssid and, if the profile is up, the
// addressing of its device.
func (n *NMCLI) NetworkInfo(ctx context.Context, ssid string) (models.NetworkInfo, error) {
	out, err := n.nmcli(ctx, "network info", "-t", "connection", "show", "id", ssid)
	if err != nil {
		return models.NetworkInfo{}, err
	}

	conn := parseFields(out)
	info := parseNetworkInfo(ssid, conn, nil)

	if info.Device == "" {
		return info, nil
	}

	out, err = n.nmcli(ctx, "network info",
		"-t", "-f", "GENERAL,IP4,IP6,DHCP4", "device", "show", info.Device)
	if err != nil {
		n.logger.Debug().Err(err).Str("device", info.Device).Msg("Device details unavailable")

		return info, nil
	}

	return parseNetworkInfo(ssid, conn, parseFields(out)), nil
}

// AccessPointAddress returns the gateway address of the shared connection,
// or "" when it has none.
func (n *NMCLI) AccessPointAddress(ctx context.Context) (string, error) {
	out, err := n.nmcli(ctx, "access point address",
		"-t", "-f", "IP4.ADDRESS", "connection", "show", "id", n.cfg.HotspotConnection)
	if err != nil {
		return "", err
	}

	return parseAddress(out), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func (n *NMCLI) WirelessInterfaces(ctx context.Context) ([]string, error) {
	out, err := n.nmcli(ctx, "wireless interfaces", "-t", "-f", "DEVICE,TYPE,STATE", "device", "status")
	if err != nil {
		return nil, err
	}

	return parseWifiDevices(out), nil
}

func (n *NMCLI) CreateAccessPoint(ctx context.Context, cfg *models.HotspotConfig) (models.AccessPointHandle, error) {
	if cfg.Interface == "" {
		return models.AccessPointHandle{}, models.NewOpError("create access point", models.ErrInvalidArgument,
			errNoWirelessDevice.Error())
	}

	name := n.cfg.HotspotConnection

	// A stale profile from an earlier run would shadow the new settings.
	if _, err := n.nmcli(ctx, "create access point", "connection", "delete", "id", name); err != nil &&
		!isUnknownConnection(detail(err)) {
		n.logger.Debug().Err(err).Msg("Could not remove previous hotspot profile")
	}

	var err error
	if cfg.Open() {
		err = n.createOpenAccessPoint(ctx, cfg)
	} else {
		err = n.createSecuredAccessPoint(ctx, cfg)
	}

	if err != nil {
		return models.AccessPointHandle{}, err
	}

	return models.AccessPointHandle{Interface: cfg.Interface, Connection: name, SSID: cfg.SSID}, nil
}

func (n *NMCLI) createSecuredAccessPoint(ctx context.Context, cfg *models.HotspotConfig) error {
	name := n.cfg.HotspotConnection

	args := []string{"device", "wifi", "hotspot", "ifname", cfg.Interface, "con-name", name,
		"ssid", cfg.SSID, "password", cfg.Password}
	args = append(args, bandArgs(cfg)...)

	if _, err := n.nmcli(ctx, "create access point", args...); err != nil {
		return err
	}

	if _, err := n.nmcli(ctx, "create access point",
		"connection", "modify", "id", name, "connection.autoconnect", "no"); err != nil {
		n.logger.Warn().Err(err).Msg("Could not disable hotspot autoconnect")
	}

	if !cfg.Hidden {
		return nil
	}

	if _, err := n.nmcli(ctx, "create access point",
		"connection", "modify", "id", name, "802-11-wireless.hidden", "yes"); err != nil {
		return err
	}

	_, err := n.nmcli(ctx, "create access point", "connection", "up", "id", name)

	return err
}

// createOpenAccessPoint builds a shared-mode profile by hand, since
// `nmcli device wifi hotspot` always generates a password.
func (n *NMCLI) createOpenAccessPoint(ctx context.Context, cfg *models.HotspotConfig) error {
	name := n.cfg.HotspotConnection

	args := []string{"connection", "add", "type", "wifi", "ifname", cfg.Interface, "con-name", name,
		"autoconnect", "no", "ssid", cfg.SSID,
		"802-11-wireless.mode", "ap",
		"ipv4.method", "shared", "ipv4.addresses", n.cfg.SharedAddress,
		"ipv6.method", "disabled"}

	switch cfg.Band {
	case models.Band24:
		args = append(args, "802-11-wireless.band", "bg")
	case models.Band5:
		args = append(args, "802-11-wireless.band", "a")
	case models.BandAuto:
	}

	if cfg.Channel > 0 && cfg.Band != models.BandAuto && cfg.Band != "" {
		args = append(args, "802-11-wireless.channel", strconv.Itoa(cfg.Channel))
	}

	if cfg.Hidden {
		args = append(args, "802-11-wireless.hidden", "yes")
	}

	if _, err := n.nmcli(ctx, "create access point", args...); err != nil {
		return err
	}

	_, err := n.nmcli(ctx, "create access point", "connection", "up", "id", name)

	return err
}

func bandArgs(cfg *models.HotspotConfig) []string {
	var args []string

	switch cfg.Band {
	case models.Band24:
		args = append(args, "band", "bg")
	case models.Band5:
		args = append(args, "band", "a")
	case models.BandAuto:
		return nil
	}

	if cfg.Channel > 0 && len(args) > 0 {
		args = append(args, "channel", strconv.Itoa(cfg.Channel))
	}

	return args
}

func (n *NMCLI) StopAccessPoint(ctx context.Context, handle models.AccessPointHandle) error {
	name := handle.Connection
	if name == "" {
		name = n.cfg.HotspotConnection
	}

	if _, err := n.nmcli(ctx, "stop access point", "connection", "down", "id", name); err != nil &&
		!isUnknownConnection(detail(err)) {
		return err
	}

	if _, err := n.nmcli(ctx, "stop access point", "connection", "delete", "id", name); err != nil &&
		!isUnknownConnection(detail(err)) {
		return err
	}

	return nil
}

func (n *NMCLI) AccessPointActive(ctx context.Context) (bool, string, error) {
	conns, err := n.active(ctx)
	if err != nil {
		return false, "", err
	}

	for _, c := range conns {
		if c.Name == n.cfg.HotspotConnection && c.State == stateActivated {
			return true, c.Device, nil
		}
	}

	return false, "", nil
}

// ListAttachedLeases reads the dnsmasq lease database of the shared
// connection. The first glob that matches anything wins.
func (n *NMCLI) ListAttachedLeases(_ context.Context) ([]models.Lease, error) {
	for _, pattern := range n.cfg.LeaseGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}

		var leases []models.Lease

		for _, path := range matches {
			batch, err := readLeaseFile(path)
			if err != nil {
				return nil, err
			}

			leases = append(leases, batch...)
		}

		return leases, nil
	}

	return nil, nil
}

func readLeaseFile(path string) ([]models.Lease, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, models.NewOpError("list leases", models.ErrPermissionDenied, path)
		}

		return nil, models.NewOpError("list leases", models.ErrServiceUnavailable, err.Error())
	}
	defer func() { _ = f.Close() }()

	return parseLeases(f), nil
}

func (n *NMCLI) Neighbors(ctx context.Context, iface string) ([]models.Neighbor, error) {
	args := []string{"neigh", "show"}
	if iface != "" {
		args = append(args, "dev", iface)
	}

	out, err := n.run(ctx, "list neighbors", n.cfg.IPPath, args...)
	if err != nil {
		return nil, err
	}

	return parseNeighbors(out), nil
}

func detail(err error) string {
	var opErr *models.OpError
	if errors.As(err, &opErr) {
		return opErr.Detail
	}

	return fmt.Sprint(err)
}
