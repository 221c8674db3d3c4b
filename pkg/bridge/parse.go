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
	"io"
	"net"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
)

const (
	scanFields       = 6
	wirelessConnType = "802-11-wireless"
	stateActivated   = "activated"
	neighborFailed   = "FAILED"
	neighborPending  = "INCOMPLETE"
)

// splitTerse splits one line of `nmcli -t` output. nmcli escapes ':' and
// '\' inside values with a backslash.
func splitTerse(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)

	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)

			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	return append(fields, cur.String())
}

func lines(out string) []string {
	var res []string

	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			res = append(res, l)
		}
	}

	return res
}

// parseScan reads SSID,SIGNAL,SECURITY,ACTIVE,CHAN,FREQ rows. Hidden
// networks are dropped and duplicates on (SSID, band) collapse to the active
// entry, else the strongest.
func parseScan(out string) []models.NetworkDescriptor {
	best := make(map[string]models.NetworkDescriptor)

	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < scanFields {
			continue
		}

		// Older nmcli builds leave ':' in SSIDs unescaped; the trailing
		// fields never contain one.
		if len(f) > scanFields {
			head := strings.Join(f[:len(f)-scanFields+1], ":")
			f = append([]string{head}, f[len(f)-scanFields+1:]...)
		}

		ssid := strings.TrimSpace(f[0])
		if ssid == "" || ssid == "--" {
			continue
		}

		signal, _ := strconv.Atoi(strings.TrimSpace(f[1]))
		channel, _ := strconv.Atoi(strings.TrimSpace(f[4]))
		freq := leadingInt(f[5])

		n := models.NetworkDescriptor{
			SSID:      ssid,
			Signal:    clamp(signal, 0, 100),
			Security:  parseSecurity(f[2]),
			Band:      bandFor(freq, channel),
			Channel:   channel,
			Frequency: freq,
			Active:    strings.EqualFold(strings.TrimSpace(f[3]), "yes"),
		}

		key := n.SSID + "|" + string(n.Band)

		prev, ok := best[key]
		if !ok || preferNetwork(&n, &prev) {
			best[key] = n
		}
	}

	res := make([]models.NetworkDescriptor, 0, len(best))
	for _, n := range best {
		res = append(res, n)
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Active != res[j].Active {
			return res[i].Active
		}

		if res[i].Signal != res[j].Signal {
			return res[i].Signal > res[j].Signal
		}

		if res[i].SSID != res[j].SSID {
			return res[i].SSID < res[j].SSID
		}

		return res[i].Band < res[j].Band
	})

	return res
}

func preferNetwork(candidate, current *models.NetworkDescriptor) bool {
	if candidate.Active != current.Active {
		return candidate.Active
	}

	return candidate.Signal > current.Signal
}

func parseSecurity(s string) models.SecurityKind {
	v := strings.ToUpper(strings.TrimSpace(s))

	switch {
	case v == "" || v == "--":
		return models.SecurityOpen
	case strings.Contains(v, "WPA3") || strings.Contains(v, "SAE") || strings.Contains(v, "OWE"):
		return models.SecurityWPA3
	case strings.Contains(v, "WPA") || strings.Contains(v, "WEP") || strings.Contains(v, "802.1X"):
		return models.SecurityWPA2
	default:
		return models.SecurityUnknown
	}
}

// bandFor derives the band from the frequency in MHz, falling back to the
// channel number. 6 GHz networks are reported as 5GHz.
func bandFor(freq, channel int) models.Band {
	switch {
	case freq >= 2400 && freq <= 2500:
		return models.Band24
	case freq >= 4900:
		return models.Band5
	case channel > 0 && channel <= 14:
		return models.Band24
	case channel > 14:
		return models.Band5
	default:
		return models.Band24
	}
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	v, _ := strconv.Atoi(s[:end])

	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// parseSaved reads NAME,TYPE,TIMESTAMP,AUTOCONNECT rows and keeps wireless
// client profiles. A missing AUTOCONNECT column reads as enabled, the daemon
// default.
func parseSaved(out, hotspotName string) []models.SavedCredential {
	var res []models.SavedCredential

	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < 3 || f[1] != wirelessConnType || f[0] == hotspotName {
			continue
		}

		cred := models.SavedCredential{SSID: f[0], AutoConnect: true}

		if ts, err := strconv.ParseInt(strings.TrimSpace(f[2]), 10, 64); err == nil && ts > 0 {
			cred.LastConnected = time.Unix(ts, 0).UTC()
		}

		if len(f) > 3 {
			cred.AutoConnect = parseYes(f[3])
		}

		res = append(res, cred)
	}

	return res
}

// parseWifiDevices reads DEVICE,TYPE,STATE rows.
func parseWifiDevices(out string) []string {
	var res []string

	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < 3 || f[1] != "wifi" {
			continue
		}

		if f[2] == "unavailable" || f[2] == "unmanaged" {
			continue
		}

		res = append(res, f[0])
	}

	return res
}

type activeConnection struct {
	Name   string
	Type   string
	Device string
	State  string
}

// parseActive reads NAME,TYPE,DEVICE,STATE rows of active connections.
func parseActive(out string) []activeConnection {
	var res []activeConnection

	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < 4 {
			continue
		}

		res = append(res, activeConnection{Name: f[0], Type: f[1], Device: f[2], State: f[3]})
	}

	return res
}

// parseLeases reads dnsmasq lease lines: "expiry mac ip hostname clientid".
// An expiry of 0 means infinite.
func parseLeases(r io.Reader) []models.Lease {
	var res []models.Lease

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 {
			continue
		}

		mac, ok := models.NormalizeMAC(f[1])
		if !ok {
			continue
		}

		lease := models.Lease{MAC: mac, IP: f[2]}

		if f[3] != "*" {
			lease.Hostname = f[3]
		}

		if exp, err := strconv.ParseInt(f[0], 10, 64); err == nil && exp > 0 {
			lease.Expiry = time.Unix(exp, 0).UTC()
		}

		res = append(res, lease)
	}

	return res
}

// parseNeighbors reads `ip neigh show` output. Both the "IP dev IF lladdr
// MAC STATE" and the per-device "IP lladdr MAC STATE" forms are accepted.
func parseNeighbors(out string) []models.Neighbor {
	var res []models.Neighbor

	for _, line := range lines(out) {
		f := strings.Fields(line)
		if len(f) < 3 {
			continue
		}

		n := models.Neighbor{IP: f[0], State: f[len(f)-1]}
		if n.State == neighborFailed || n.State == neighborPending {
			continue
		}

		for i := 1; i+1 < len(f); i++ {
			if f[i] == "lladdr" {
				n.MAC, _ = models.NormalizeMAC(f[i+1])

				break
			}
		}

		if n.MAC == "" {
			continue
		}

		res = append(res, n)
	}

	return res
}

func parseYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "on", "enabled":
		return true
	default:
		return false
	}
}

// parseFields reads `nmcli -t` key:value output into a map. Repeated keys
// keep their first value.
func parseFields(out string) map[string]string {
	res := make(map[string]string)

	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < 2 {
			continue
		}

		key := strings.TrimSpace(f[0])
		if _, ok := res[key]; ok {
			continue
		}

		res[key] = strings.TrimSpace(strings.Join(f[1:], ":"))
	}

	return res
}

// indexedValues returns the non-empty values of KEY[1], KEY[2], ... in
// index order.
func indexedValues(fields map[string]string, key string) []string {
	var res []string

	for i := 1; ; i++ {
		v, ok := fields[key+"["+strconv.Itoa(i)+"]"]
		if !ok {
			return res
		}

		if v != "" {
			res = append(res, v)
		}
	}
}

// splitCIDR turns "192.168.1.5/24" into the address and its dotted netmask.
// A bare address comes back with an empty mask.
func splitCIDR(cidr string) (string, string) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		addr, _, _ := strings.Cut(cidr, "/")

		return addr, ""
	}

	if !prefix.Addr().Is4() {
		return prefix.Addr().String(), ""
	}

	return prefix.Addr().String(), net.IP(net.CIDRMask(prefix.Bits(), 32)).String()
}

// parseNetworkInfo merges `connection show` and `device show` fields.
// device may be empty when the profile is not active.
func parseNetworkInfo(ssid string, conn, device map[string]string) models.NetworkInfo {
	info := models.NetworkInfo{
		SSID:           ssid,
		ConnectionType: conn["connection.type"],
		UUID:           conn["connection.uuid"],
		BSSID:          firstNonEmpty(conn["802-11-wireless.seen-bssids"], conn["802-11-wireless.mac-address"]),
		Device:         firstNonEmpty(conn["GENERAL.DEVICES"], conn["connection.interface-name"]),
	}

	if i := strings.IndexByte(info.BSSID, ','); i >= 0 {
		info.BSSID = info.BSSID[:i]
	}

	if len(device) == 0 {
		return info
	}

	info.Device = firstNonEmpty(device["GENERAL.DEVICE"], info.Device)
	info.DeviceState = device["GENERAL.STATE"]
	info.DeviceType = device["GENERAL.TYPE"]
	info.Speed = device["GENERAL.SPEED"]
	info.HWAddress = device["GENERAL.HWADDR"]
	info.Gateway = device["IP4.GATEWAY"]
	info.DNS = indexedValues(device, "IP4.DNS")

	if addrs := indexedValues(device, "IP4.ADDRESS"); len(addrs) > 0 {
		info.IPv4, info.Netmask = splitCIDR(addrs[0])
	}

	if addrs := indexedValues(device, "IP6.ADDRESS"); len(addrs) > 0 {
		info.IPv6 = addrs[0]
	}

	for _, opt := range indexedValues(device, "DHCP4.OPTION") {
		if name, val, ok := strings.Cut(opt, "="); ok && strings.TrimSpace(name) == "dhcp_lease_time" {
			info.LeaseTime = strings.TrimSpace(val)
		}
	}

	return info
}

// parseAddress returns the first IP4.ADDRESS value without its prefix.
func parseAddress(out string) string {
	for _, line := range lines(out) {
		f := splitTerse(line)
		if len(f) < 2 || !strings.HasPrefix(f[0], "IP4.ADDRESS") {
			continue
		}

		if v := strings.TrimSpace(strings.Join(f[1:], ":")); v != "" {
			addr, _, _ := strings.Cut(v, "/")

			return addr
		}
	}

	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
