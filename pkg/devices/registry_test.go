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
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

func staticLocal(addrs ...string) LocalAddrFunc {
	return func(context.Context) (map[string]bool, error) {
		m := make(map[string]bool, len(addrs))
		for _, a := range addrs {
			m[a] = true
		}

		return m, nil
	}
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *bridge.MockBridge, *clockwork.FakeClock) {
	t.Helper()

	ctrl := gomock.NewController(t)
	br := bridge.NewMockBridge(ctrl)
	clock := clockwork.NewFakeClock()

	opts = append([]Option{
		WithClock(clock),
		WithClassifier(NewClassifier(nil)),
		WithLocalAddrs(staticLocal("192.168.50.1", "02:00:00:00:00:01")),
	}, opts...)

	r := New(Config{RefreshInterval: models.Duration(5 * time.Second)}, br, logger.NewTestLogger(), opts...)
	t.Cleanup(r.Stop)

	return r, br, clock
}

func TestRegistryRefreshMergesSources(t *testing.T) {
	var notified atomic.Int32

	r, br, _ := newTestRegistry(t, WithNotifier(func(models.EventKind) { notified.Add(1) }))

	br.EXPECT().ListAttachedLeases(gomock.Any()).Return([]models.Lease{
		{MAC: "aa:bb:cc:00:11:22", IP: "192.168.50.23", Hostname: "pixel-7"},
		{MAC: "aa:bb:cc:00:11:99", IP: "192.168.50.99", Expiry: time.Unix(1, 0)},
	}, nil).AnyTimes()
	br.EXPECT().Neighbors(gomock.Any(), "wlan0").Return([]models.Neighbor{
		{IP: "192.168.50.23", MAC: "aa:bb:cc:00:11:22", State: "REACHABLE"},
		{IP: "192.168.50.30", MAC: "00:1b:21:00:00:01", State: "STALE"},
		{IP: "192.168.50.1", MAC: "02:00:00:00:00:01", State: "PERMANENT"},
	}, nil).AnyTimes()

	r.Start("wlan0")

	require.Eventually(t, func() bool { return len(r.Devices()) == 2 }, waitFor, time.Millisecond)

	devices := r.Devices()
	assert.Equal(t, "192.168.50.23", devices[0].IP)
	assert.Equal(t, "pixel-7", devices[0].Hostname)
	assert.Equal(t, models.DevicePhone, devices[0].Class)
	assert.Equal(t, "00:1b:21:00:00:01", devices[1].MAC)
	assert.Equal(t, int32(1), notified.Load())
}

func TestRegistryToleratesFailingSource(t *testing.T) {
	r, br, _ := newTestRegistry(t)

	br.EXPECT().ListAttachedLeases(gomock.Any()).Return(nil, models.ErrPermissionDenied).AnyTimes()
	br.EXPECT().Neighbors(gomock.Any(), "wlan0").Return([]models.Neighbor{
		{IP: "192.168.50.30", MAC: "00:1b:21:00:00:01", State: "REACHABLE"},
	}, nil).AnyTimes()

	r.Start("wlan0")

	require.Eventually(t, func() bool { return len(r.Devices()) == 1 }, waitFor, time.Millisecond)
}

func TestRegistryEvictsAfterFreshnessWindow(t *testing.T) {
	r, br, clock := newTestRegistry(t)

	var cycle atomic.Int32

	br.EXPECT().ListAttachedLeases(gomock.Any()).Return(nil, nil).AnyTimes()
	br.EXPECT().Neighbors(gomock.Any(), "wlan0").DoAndReturn(func(context.Context, string) ([]models.Neighbor, error) {
		defer cycle.Add(1)

		if cycle.Load() == 0 {
			return []models.Neighbor{{IP: "192.168.50.30", MAC: "00:1b:21:00:00:01"}}, nil
		}

		return nil, nil
	}).AnyTimes()

	r.Start("wlan0")

	require.Eventually(t, func() bool { return len(r.Devices()) == 1 }, waitFor, time.Millisecond)

	// Three intervals keep the entry, the fourth evicts it.
	for i := int32(1); i <= 3; i++ {
		clock.Advance(5 * time.Second)
		require.Eventually(t, func() bool { return cycle.Load() == i+1 }, waitFor, time.Millisecond)
	}

	assert.Len(t, r.Devices(), 1)

	clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool { return len(r.Devices()) == 0 }, waitFor, time.Millisecond)
}

func TestRegistryStopDiscardsLateResults(t *testing.T) {
	r, br, _ := newTestRegistry(t)

	release := make(chan struct{})
	entered := make(chan struct{})

	br.EXPECT().ListAttachedLeases(gomock.Any()).Return(nil, nil).AnyTimes()
	br.EXPECT().Neighbors(gomock.Any(), "wlan0").DoAndReturn(func(context.Context, string) ([]models.Neighbor, error) {
		close(entered)
		<-release

		return []models.Neighbor{{IP: "192.168.50.30", MAC: "00:1b:21:00:00:01"}}, nil
	})

	r.Start("wlan0")
	<-entered

	r.Stop()
	close(release)

	assert.Never(t, func() bool { return len(r.Devices()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
