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
	"testing"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	phoneMAC  = "AA:BB:CC:00:11:22"
	laptopMAC = "00:1b:21:00:00:01"
)

func TestMergeCombinesSourcesByMAC(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := Merge(nil, []Observation{
		{MAC: phoneMAC, IP: "192.168.50.23", Hostname: "pixel-7", Source: models.SourceLease},
		{MAC: "aa-bb-cc-00-11-22", IP: "192.168.50.24", Source: models.SourceNeighbor},
		{MAC: laptopMAC, IP: "192.168.50.30", Source: models.SourceNeighbor},
		{MAC: "not-a-mac", IP: "192.168.50.31", Source: models.SourceNeighbor},
	}, now, 15*time.Second, nil)

	require.Len(t, got, 2)

	phone := got["aa:bb:cc:00:11:22"]
	assert.Equal(t, "192.168.50.24", phone.IP, "later observation wins")
	assert.Equal(t, "pixel-7", phone.Hostname, "empty hostname does not erase")
	assert.Equal(t, []models.DeviceSource{models.SourceLease, models.SourceNeighbor}, phone.Sources)
	assert.Equal(t, models.DevicePhone, phone.Class)
	assert.Equal(t, now, phone.FirstSeen)
	assert.Equal(t, now, phone.LastSeen)

	assert.Equal(t, models.DeviceUnknown, got[laptopMAC].Class)
}

func TestMergeKeepsFirstSeenAndEvictsStale(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	freshness := 15 * time.Second

	prev := Merge(nil, []Observation{
		{MAC: phoneMAC, IP: "192.168.50.23", Source: models.SourceNeighbor},
		{MAC: laptopMAC, IP: "192.168.50.30", Source: models.SourceNeighbor},
	}, t0, freshness, nil)

	t1 := t0.Add(10 * time.Second)
	next := Merge(prev, []Observation{
		{MAC: phoneMAC, Hostname: "pixel-7", Source: models.SourceLease},
	}, t1, freshness, nil)

	require.Len(t, next, 2, "unseen entry survives inside the window")
	assert.Equal(t, t0, next["aa:bb:cc:00:11:22"].FirstSeen)
	assert.Equal(t, t1, next["aa:bb:cc:00:11:22"].LastSeen)
	assert.Equal(t, "192.168.50.23", next["aa:bb:cc:00:11:22"].IP)
	assert.Equal(t, []models.DeviceSource{models.SourceLease}, next["aa:bb:cc:00:11:22"].Sources)

	t2 := t0.Add(20 * time.Second)
	last := Merge(next, []Observation{{MAC: phoneMAC, Source: models.SourceNeighbor}}, t2, freshness, nil)

	require.Len(t, last, 1)
	assert.Contains(t, last, "aa:bb:cc:00:11:22")

	// The input map is left alone.
	assert.Len(t, prev, 2)
}

func TestMergeIsIdempotent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	obs := []Observation{
		{MAC: phoneMAC, IP: "192.168.50.23", Hostname: "pixel-7", Source: models.SourceLease},
		{MAC: phoneMAC, IP: "192.168.50.23", Source: models.SourceNeighbor},
		{MAC: laptopMAC, IP: "192.168.50.30", Source: models.SourceNeighbor},
	}

	once := Merge(nil, obs, now, time.Minute, nil)
	twice := Merge(once, obs, now, time.Minute, nil)

	assert.Equal(t, once, twice)
}

func TestSortedOrdersByIP(t *testing.T) {
	m := map[string]models.DeviceEntry{
		"a": {MAC: "a", IP: "192.168.50.100"},
		"b": {MAC: "b", IP: "192.168.50.9"},
		"c": {MAC: "c"},
	}

	sorted := Sorted(m)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{sorted[0].MAC, sorted[1].MAC, sorted[2].MAC})
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "192.168.50.23", clientIP("192.168.50.23"))
	assert.Empty(t, clientIP("192.168.50.0"))
	assert.Empty(t, clientIP("192.168.50.255"))
	assert.Empty(t, clientIP("fe80::1"))
	assert.Equal(t, "2001:db8::1", clientIP("2001:db8::1"))
	assert.Empty(t, clientIP("garbage"))
}
