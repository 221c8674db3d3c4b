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

package hotspot

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type hookRecorder struct {
	mu       sync.Mutex
	starting int
	running  []string
	stopped  int
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		OnStarting: func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			h.starting++
		},
		OnRunning: func(iface string) {
			h.mu.Lock()
			defer h.mu.Unlock()

			h.running = append(h.running, iface)
		},
		OnStopped: func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			h.stopped++
		},
	}
}

func newTestController(t *testing.T) (*Controller, *bridge.MockBridge, *hookRecorder) {
	t.Helper()

	ctrl := gomock.NewController(t)
	br := bridge.NewMockBridge(ctrl)
	log := logger.NewTestLogger()

	store, err := NewConfigStore(filepath.Join(t.TempDir(), "hotspot.json"), log)
	require.NoError(t, err)

	rec := &hookRecorder{}

	br.EXPECT().AccessPointAddress(gomock.Any()).Return("10.42.0.1", nil).AnyTimes()

	return New(br, store, log, WithHooks(rec.hooks())), br, rec
}

func (h *hookRecorder) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.starting, h.stopped
}

// blockCreate makes the next CreateAccessPoint wait until the returned
// release func is called.
func blockCreate(t *testing.T, c *Controller, br *bridge.MockBridge) (func(), <-chan error) {
	t.Helper()

	release := make(chan struct{})

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.HotspotConfig) (models.AccessPointHandle, error) {
			<-release

			return models.AccessPointHandle{Interface: "wlan0", Connection: "Hotspot"}, nil
		})

	started := make(chan error, 1)

	go func() {
		_, err := c.Start(context.Background())
		started <- err
	}()

	require.Eventually(t, func() bool { return c.State().Phase == models.HotspotStarting }, waitFor, pollEvery)

	return func() { close(release) }, started
}

func startRunning(t *testing.T, c *Controller, br *bridge.MockBridge) {
	t.Helper()

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg *models.HotspotConfig) (models.AccessPointHandle, error) {
			return models.AccessPointHandle{Interface: cfg.Interface, Connection: "Hotspot", SSID: cfg.SSID}, nil
		})

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.HotspotRunning, c.State().Phase)
}

func TestStartResolvesInterfaceAndRuns(t *testing.T) {
	c, br, rec := newTestController(t)

	startRunning(t, c, br)

	state := c.State()
	assert.Equal(t, "wlan0", state.Interface)
	assert.Equal(t, "10.42.0.1", state.Address)
	require.NotNil(t, state.StartedAt)
	assert.Equal(t, []string{"wlan0"}, rec.running)
}

func TestAddressLookupFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	br := bridge.NewMockBridge(ctrl)
	c := New(br, nil, logger.NewTestLogger())

	br.EXPECT().AccessPointActive(gomock.Any()).Return(true, "wlan0", nil)
	br.EXPECT().AccessPointAddress(gomock.Any()).Return("", models.ErrPermissionDenied)

	require.NoError(t, c.Init(context.Background()))

	state := c.State()
	assert.Equal(t, models.HotspotRunning, state.Phase)
	assert.Empty(t, state.Address)
}

func TestStartWithoutWirelessInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	br := bridge.NewMockBridge(ctrl)
	rec := &hookRecorder{}

	var kinds []models.EventKind

	c := New(br, nil, logger.NewTestLogger(),
		WithHooks(rec.hooks()),
		WithNotifier(func(k models.EventKind) { kinds = append(kinds, k) }))

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return(nil, nil)
	// CreateAccessPoint is never expected: gomock fails the test if called.

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrNoCapableInterface)

	assert.Equal(t, models.HotspotStopped, c.State().Phase)
	assert.Empty(t, kinds, "no state change is published")
	assert.Empty(t, rec.running)

	starting, stopped := rec.counts()
	assert.Zero(t, starting)
	assert.Zero(t, stopped)
}

func TestStartIgnoresCallerCancellation(t *testing.T) {
	c, br, _ := newTestController(t)

	ctx, cancel := context.WithCancel(context.Background())

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, cfg *models.HotspotConfig) (models.AccessPointHandle, error) {
			// The client hangs up while the daemon is building the access point.
			cancel()
			require.NoError(t, callCtx.Err())

			return models.AccessPointHandle{Interface: cfg.Interface, Connection: "Hotspot"}, nil
		})

	_, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.HotspotRunning, c.State().Phase)
}

func TestStopIgnoresCallerCancellation(t *testing.T) {
	c, br, _ := newTestController(t)

	startRunning(t, c, br)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	br.EXPECT().StopAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, _ models.AccessPointHandle) error {
			return callCtx.Err()
		})

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, models.HotspotStopped, c.State().Phase)
}

func TestStartHooksBracketFailedStart(t *testing.T) {
	c, br, rec := newTestController(t)

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.HotspotConfig) (models.AccessPointHandle, error) {
			starting, stopped := rec.counts()
			assert.Equal(t, 1, starting, "starting hook runs before the daemon call")
			assert.Zero(t, stopped)

			return models.AccessPointHandle{}, models.ErrDeviceBusy
		})

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrDeviceBusy)

	starting, stopped := rec.counts()
	assert.Equal(t, 1, starting)
	assert.Equal(t, 1, stopped, "a failed start releases what the starting hook took")
}

func TestRejectedStartRunsNoHooks(t *testing.T) {
	c, br, rec := newTestController(t)

	startRunning(t, c, br)

	entered := make(chan struct{})
	release := make(chan struct{})

	br.EXPECT().StopAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.AccessPointHandle) error {
			close(entered)
			<-release

			return nil
		})

	stopped := make(chan error, 1)

	go func() { stopped <- c.Stop(context.Background()) }()

	<-entered

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrOperationInProgress)

	close(release)
	require.NoError(t, <-stopped)

	starting, stops := rec.counts()
	assert.Equal(t, 1, starting, "only the first start reached the starting hook")
	assert.Equal(t, 1, stops)
}

func TestStartFailureEntersError(t *testing.T) {
	c, br, _ := newTestController(t)

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		Return(models.AccessPointHandle{}, models.NewOpError("hotspot", models.ErrDeviceBusy, "device busy"))

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrDeviceBusy)

	state := c.State()
	assert.Equal(t, models.HotspotError, state.Phase)
	assert.Contains(t, state.Reason, "device busy")

	// Error is terminal until acknowledged.
	_, err = c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrInvalidArgument)

	br.EXPECT().AccessPointActive(gomock.Any()).Return(false, "", nil)
	require.NoError(t, c.Acknowledge(context.Background()))
	assert.Equal(t, models.HotspotStopped, c.State().Phase)
}

func TestConcurrentStartStopYieldsOneOperationInProgress(t *testing.T) {
	c, br, _ := newTestController(t)
	release := make(chan struct{})

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.HotspotConfig) (models.AccessPointHandle, error) {
			<-release

			return models.AccessPointHandle{Interface: "wlan0"}, nil
		})

	started := make(chan error, 1)

	go func() {
		_, err := c.Start(context.Background())
		started <- err
	}()

	require.Eventually(t, func() bool { return c.State().Phase == models.HotspotStarting }, waitFor, pollEvery)

	require.ErrorIs(t, c.Stop(context.Background()), models.ErrOperationInProgress)
	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrOperationInProgress)

	close(release)
	require.NoError(t, <-started)
	assert.Equal(t, models.HotspotRunning, c.State().Phase)
}

func TestStopRunsHookBeforeTeardown(t *testing.T) {
	c, br, rec := newTestController(t)

	startRunning(t, c, br)

	br.EXPECT().StopAccessPoint(gomock.Any(), models.AccessPointHandle{Interface: "wlan0", Connection: "Hotspot", SSID: "netcoord-hotspot"}).
		DoAndReturn(func(context.Context, models.AccessPointHandle) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()

			assert.Equal(t, 1, rec.stopped, "registry stops before the access point is torn down")

			return nil
		})

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, models.HotspotStopped, c.State().Phase)

	require.ErrorIs(t, c.Stop(context.Background()), models.ErrInvalidArgument)
}

func TestStopFailureIsIndeterminateUntilConfirmed(t *testing.T) {
	c, br, _ := newTestController(t)

	startRunning(t, c, br)

	br.EXPECT().StopAccessPoint(gomock.Any(), gomock.Any()).Return(models.ErrTimeout)
	br.EXPECT().AccessPointActive(gomock.Any()).Return(true, "wlan0", nil)

	require.ErrorIs(t, c.Stop(context.Background()), models.ErrTimeout)
	assert.Equal(t, models.HotspotError, c.State().Phase)

	// The daemon still reports it up, so acknowledging restores Running.
	br.EXPECT().AccessPointActive(gomock.Any()).Return(true, "wlan0", nil)
	require.NoError(t, c.Acknowledge(context.Background()))
	assert.Equal(t, models.HotspotRunning, c.State().Phase)
}

func TestStopFailureConfirmedDown(t *testing.T) {
	c, br, _ := newTestController(t)

	startRunning(t, c, br)

	br.EXPECT().StopAccessPoint(gomock.Any(), gomock.Any()).
		Return(models.NewOpError("stop access point", models.ErrServiceUnavailable, "NetworkManager is not running"))
	br.EXPECT().AccessPointActive(gomock.Any()).Return(false, "", nil)

	// The daemon confirms the access point is gone, yet the teardown failure
	// still reaches the caller.
	err := c.Stop(context.Background())
	require.ErrorIs(t, err, models.ErrServiceUnavailable)
	assert.Equal(t, "ServiceUnavailable", models.KindOf(err))
	assert.Equal(t, models.HotspotStopped, c.State().Phase)
}

func TestSaveConfigLockedWhileRunning(t *testing.T) {
	c, br, _ := newTestController(t)

	startRunning(t, c, br)

	next := models.HotspotConfig{SSID: "Other", Password: "supersecret", Band: models.Band5}
	require.ErrorIs(t, c.SaveConfig(context.Background(), &next), models.ErrConfigLockedWhileActive)

	assert.Equal(t, models.DefaultHotspotConfig(), c.Config())
}

func TestSaveConfigLockedWhileStarting(t *testing.T) {
	c, br, _ := newTestController(t)

	release, started := blockCreate(t, c, br)

	next := models.HotspotConfig{SSID: "Other", Password: "supersecret", Band: models.Band5}
	err := c.SaveConfig(context.Background(), &next)
	require.ErrorIs(t, err, models.ErrConfigLockedWhileActive)
	assert.NotErrorIs(t, err, models.ErrOperationInProgress)

	release()
	require.NoError(t, <-started)

	assert.Equal(t, models.DefaultHotspotConfig(), c.Config())

	stored, err := c.store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHotspotConfig(), stored)
}

func TestSaveConfigLockedWhileStopping(t *testing.T) {
	c, br, _ := newTestController(t)

	startRunning(t, c, br)

	entered := make(chan struct{})
	release := make(chan struct{})

	br.EXPECT().StopAccessPoint(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.AccessPointHandle) error {
			close(entered)
			<-release

			return nil
		})

	stopped := make(chan error, 1)

	go func() { stopped <- c.Stop(context.Background()) }()

	<-entered
	require.Equal(t, models.HotspotStopping, c.State().Phase)

	next := models.HotspotConfig{SSID: "Other", Band: models.BandAuto}
	require.ErrorIs(t, c.SaveConfig(context.Background(), &next), models.ErrConfigLockedWhileActive)

	close(release)
	require.NoError(t, <-stopped)
	assert.Equal(t, models.DefaultHotspotConfig(), c.Config())
}

func TestSaveConfigLockedInError(t *testing.T) {
	c, br, _ := newTestController(t)

	br.EXPECT().WirelessInterfaces(gomock.Any()).Return([]string{"wlan0"}, nil)
	br.EXPECT().CreateAccessPoint(gomock.Any(), gomock.Any()).
		Return(models.AccessPointHandle{}, models.ErrDeviceBusy)

	_, err := c.Start(context.Background())
	require.ErrorIs(t, err, models.ErrDeviceBusy)
	require.Equal(t, models.HotspotError, c.State().Phase)

	next := models.HotspotConfig{SSID: "Other", Band: models.BandAuto}
	require.ErrorIs(t, c.SaveConfig(context.Background(), &next), models.ErrConfigLockedWhileActive)

	// Invalid input still reports the lock first.
	bad := models.HotspotConfig{SSID: ""}
	require.ErrorIs(t, c.SaveConfig(context.Background(), &bad), models.ErrConfigLockedWhileActive)

	assert.Equal(t, models.DefaultHotspotConfig(), c.Config())

	stored, err := c.store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHotspotConfig(), stored)

	// Once acknowledged back to Stopped the save goes through.
	br.EXPECT().AccessPointActive(gomock.Any()).Return(false, "", nil)
	require.NoError(t, c.Acknowledge(context.Background()))
	require.NoError(t, c.SaveConfig(context.Background(), &next))
	assert.Equal(t, "Other", c.Config().SSID)
}

func TestSaveConfigPersists(t *testing.T) {
	c, br, _ := newTestController(t)

	bad := models.HotspotConfig{SSID: "Lab", Password: "short"}
	require.ErrorIs(t, c.SaveConfig(context.Background(), &bad), models.ErrInvalidArgument)

	next := models.HotspotConfig{SSID: "Lab", Password: "supersecret", Band: models.Band24, Channel: 6, Hidden: true}
	require.NoError(t, c.SaveConfig(context.Background(), &next))
	assert.Equal(t, next, c.Config())

	// A fresh controller on the same store picks the saved config up.
	other := New(br, c.store, logger.NewTestLogger())
	br.EXPECT().AccessPointActive(gomock.Any()).Return(false, "", nil)
	require.NoError(t, other.Init(context.Background()))
	assert.Equal(t, next, other.Config())
}

func TestInitAdoptsRunningAccessPoint(t *testing.T) {
	c, br, rec := newTestController(t)

	br.EXPECT().AccessPointActive(gomock.Any()).Return(true, "wlan1", nil)

	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, models.HotspotRunning, c.State().Phase)
	assert.Equal(t, []string{"wlan1"}, rec.running)
}

func TestAccessPointDownEvent(t *testing.T) {
	c, br, rec := newTestController(t)

	startRunning(t, c, br)

	c.HandleBridgeEvent(models.BridgeEvent{Kind: models.BridgeWirelessDisconnected, Interface: "wlan0"})
	assert.Equal(t, models.HotspotRunning, c.State().Phase)

	c.HandleBridgeEvent(models.BridgeEvent{Kind: models.BridgeAccessPointDown, Interface: "wlan0"})
	assert.Equal(t, models.HotspotStopped, c.State().Phase)
	assert.Equal(t, 1, rec.stopped)
}

func TestAcknowledgeOnlyFromError(t *testing.T) {
	c, _, _ := newTestController(t)

	require.ErrorIs(t, c.Acknowledge(context.Background()), models.ErrInvalidArgument)
}
