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

package devices

import (
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
)

// Observation is one sighting of a client by one discovery source.
type Observation struct {
	MAC      string
	IP       string
	Hostname string
	Source   models.DeviceSource
}

// Merge folds one refresh cycle of observations into prev and returns the
// new registry contents. prev is not modified. Observations are applied in
// order, so later ones win for IP and hostname; empty values never replace
// known ones. Entries last seen more than freshness before now are dropped.
// Calling Merge again with its own result and the same inputs returns an
// equal map.
func Merge(prev map[string]models.DeviceEntry, observations []Observation, now time.Time,
	freshness time.Duration, classifier *Classifier) map[string]models.DeviceEntry {
	next := make(map[string]models.DeviceEntry, len(prev)+len(observations))

	for mac, e := range prev {
		e.Sources = slices.Clone(e.Sources)
		next[mac] = e
	}

	seen := make(map[string]bool, len(observations))

	for _, o := range observations {
		mac, ok := models.NormalizeMAC(o.MAC)
		if !ok {
			continue
		}

		e, exists := next[mac]
		if !exists {
			e = models.DeviceEntry{MAC: mac, FirstSeen: now}
		}

		if !seen[mac] {
			seen[mac] = true
			e.Sources = nil
		}

		if o.IP != "" {
			e.IP = o.IP
		}

		if o.Hostname != "" {
			e.Hostname = o.Hostname
		}

		if !slices.Contains(e.Sources, o.Source) {
			e.Sources = append(e.Sources, o.Source)
			slices.Sort(e.Sources)
		}

		e.LastSeen = now
		next[mac] = e
	}

	for mac, e := range next {
		if now.Sub(e.LastSeen) > freshness {
			delete(next, mac)

			continue
		}

		e.Class, e.Vendor = classifier.Classify(mac, e.Hostname)
		next[mac] = e
	}

	return next
}

// Sorted returns the entries of m ordered by IP, then MAC.
func Sorted(m map[string]models.DeviceEntry) []models.DeviceEntry {
	out := make([]models.DeviceEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b models.DeviceEntry) int {
		if a.IP != b.IP {
			return compareIP(a.IP, b.IP)
		}

		return strings.Compare(a.MAC, b.MAC)
	})

	return out
}

func compareIP(a, b string) int {
	ia, errA := netip.ParseAddr(a)
	ib, errB := netip.ParseAddr(b)

	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}

	return ia.Compare(ib)
}
