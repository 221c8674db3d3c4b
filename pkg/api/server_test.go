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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	nchttp "github.com/carverauto/netcoord/pkg/http"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *MockCoordinator) {
	t.Helper()

	ctrl := gomock.NewController(t)
	coord := NewMockCoordinator(ctrl)

	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	return NewServer(cfg, coord, logger.NewTestLogger()), coord
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp
}

func TestGetState(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().Snapshot().Return(models.Snapshot{
		Version:    12,
		Connection: models.Connected(models.NetworkDescriptor{SSID: "HomeNet"}, testTime),
		BuildInfo:  "netcoord 1.0.0",
	})

	rr := do(t, s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, uint64(12), snap.Version)
	assert.Equal(t, models.ConnectionConnected, snap.Connection.Phase)
	assert.Equal(t, "netcoord 1.0.0", snap.BuildInfo)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().Networks().Return(nil)
	coord.EXPECT().SavedNetworks().Return(nil)
	coord.EXPECT().Devices().Return(nil)

	for _, path := range []string{"/api/wifi/networks", "/api/wifi/saved", "/api/devices"} {
		rr := do(t, s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, "[]", rr.Body.String(), path)
	}
}

func TestConnect(t *testing.T) {
	s, coord := newTestServer(t, nil)

	secret := "correct horse"
	coord.EXPECT().Connect(gomock.Any(), "Cafe", &secret).Return(nil)
	coord.EXPECT().Connect(gomock.Any(), "HomeNet", gomock.Nil()).Return(nil)

	rr := do(t, s, http.MethodPost, "/api/wifi/connect", `{"ssid":"Cafe","secret":"correct horse"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, http.MethodPost, "/api/wifi/connect", `{"ssid":"HomeNet"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestConnectRejectsMalformedBody(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, body := range []string{`{"ssid":`, `{"ssid":"x","password":"y"}`} {
		rr := do(t, s, http.MethodPost, "/api/wifi/connect", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, "InvalidArgument", decodeError(t, rr).Kind)
	}

	rr := do(t, s, http.MethodPost, "/api/wifi/connect", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{models.ErrInvalidArgument, http.StatusBadRequest, "InvalidArgument"},
		{models.ErrPermissionDenied, http.StatusForbidden, "PermissionDenied"},
		{models.ErrOperationInProgress, http.StatusConflict, "OperationInProgress"},
		{models.ErrAlreadyInProgress, http.StatusConflict, "AlreadyInProgress"},
		{models.ErrConfigLockedWhileActive, http.StatusConflict, "ConfigLockedWhileActive"},
		{models.ErrDeviceBusy, http.StatusConflict, "DeviceBusy"},
		{models.ErrNoCapableInterface, http.StatusUnprocessableEntity, "NoCapableInterface"},
		{models.ErrServiceUnavailable, http.StatusServiceUnavailable, "ServiceUnavailable"},
		{models.NewOpError("connect", models.ErrTimeout, "nmcli"), http.StatusGatewayTimeout, "Timeout"},
		{errTestFixture, http.StatusInternalServerError, "Internal"},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			s, coord := newTestServer(t, nil)
			coord.EXPECT().Disconnect(gomock.Any()).Return(tc.err)

			rr := do(t, s, http.MethodPost, "/api/wifi/disconnect", "")
			assert.Equal(t, tc.code, rr.Code)

			resp := decodeError(t, rr)
			assert.Equal(t, tc.kind, resp.Kind)
			assert.Equal(t, tc.err.Error(), resp.Error)
		})
	}
}

func TestForgetDecodesSSID(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().Forget(gomock.Any(), "Cafe Guest/2").Return(nil)

	rr := do(t, s, http.MethodDelete, "/api/wifi/saved/Cafe%20Guest%2F2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNetworkInfoRoute(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().NetworkInfo(gomock.Any(), "Cafe Guest").Return(models.NetworkInfo{
		SSID:    "Cafe Guest",
		Device:  "wlan0",
		IPv4:    "192.168.1.20",
		Netmask: "255.255.255.0",
		DNS:     []string{"1.1.1.1"},
	}, nil)

	rr := do(t, s, http.MethodGet, "/api/wifi/saved/Cafe%20Guest", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var info models.NetworkInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "wlan0", info.Device)
	assert.Equal(t, "255.255.255.0", info.Netmask)
	assert.Equal(t, []string{"1.1.1.1"}, info.DNS)
}

func TestAutoconnectRoute(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().SetAutoconnect(gomock.Any(), "Cafe", false).Return(nil)

	rr := do(t, s, http.MethodPut, "/api/wifi/saved/Cafe/autoconnect", `{"enabled":false}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	// A body without the flag must not silently disable autoconnect.
	rr = do(t, s, http.MethodPut, "/api/wifi/saved/Cafe/autoconnect", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "InvalidArgument", decodeError(t, rr).Kind)
}

func TestRadioRoutes(t *testing.T) {
	s, coord := newTestServer(t, nil)

	gomock.InOrder(
		coord.EXPECT().Radio().Return(models.RadioState{Enabled: true}),
		coord.EXPECT().SetRadio(gomock.Any(), false).Return(nil),
		coord.EXPECT().Radio().Return(models.RadioState{Enabled: false}),
	)

	rr := do(t, s, http.MethodGet, "/api/wifi/radio", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"enabled":true}`, rr.Body.String())

	rr = do(t, s, http.MethodPut, "/api/wifi/radio", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"enabled":false}`, rr.Body.String())

	rr = do(t, s, http.MethodPut, "/api/wifi/radio", `{"on":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRadioSwitchBusy(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().SetRadio(gomock.Any(), true).Return(models.ErrDeviceBusy)

	rr := do(t, s, http.MethodPut, "/api/wifi/radio", `{"enabled":true}`)
	assert.Equal(t, "DeviceBusy", decodeError(t, rr).Kind)
}

func TestScan(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().Scan(gomock.Any()).Return([]models.NetworkDescriptor{{SSID: "HomeNet", Signal: 80}}, nil)

	rr := do(t, s, http.MethodPost, "/api/wifi/scan", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.NetworkDescriptor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "HomeNet", got[0].SSID)
}

func TestHotspotRoutes(t *testing.T) {
	s, coord := newTestServer(t, nil)

	coord.EXPECT().StartHotspot(gomock.Any()).
		Return(models.AccessPointHandle{Interface: "wlan0", Connection: "Hotspot", SSID: "netcoord"}, nil)
	coord.EXPECT().StopHotspot(gomock.Any()).Return(models.ErrInvalidArgument)
	coord.EXPECT().AcknowledgeHotspot(gomock.Any()).Return(nil)
	coord.EXPECT().HotspotState().Return(models.HotspotStateStopped(testTime)).Times(2)

	rr := do(t, s, http.MethodPost, "/api/hotspot/start", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"interface":"wlan0"`)

	rr = do(t, s, http.MethodPost, "/api/hotspot/stop", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodPost, "/api/hotspot/ack", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"phase":"stopped"`)

	rr = do(t, s, http.MethodGet, "/api/hotspot", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHotspotConfigRoutes(t *testing.T) {
	s, coord := newTestServer(t, nil)

	saved := models.HotspotConfig{SSID: "Kiosk", Password: "kiosk-pass", Band: models.Band5}

	coord.EXPECT().SaveHotspotConfig(gomock.Any(), &saved).Return(nil)
	coord.EXPECT().HotspotConfig().Return(saved).Times(2)

	rr := do(t, s, http.MethodPut, "/api/hotspot/config", `{"ssid":"Kiosk","password":"kiosk-pass","band":"5GHz"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ssid":"Kiosk"`)

	rr = do(t, s, http.MethodGet, "/api/hotspot/config", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	coord.EXPECT().SaveHotspotConfig(gomock.Any(), gomock.Any()).Return(models.ErrConfigLockedWhileActive)

	rr = do(t, s, http.MethodPut, "/api/hotspot/config", `{"ssid":"Other","band":"auto"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "ConfigLockedWhileActive", decodeError(t, rr).Kind)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/wifi/connect", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "secret-key"

	s, coord := newTestServer(t, &cfg)

	rr := do(t, s, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	coord.EXPECT().Snapshot().Return(models.Snapshot{})

	req := httptest.NewRequest(http.MethodGet, "/api/state", http.NoBody)
	req.Header.Set("X-API-Key", "secret-key")

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"127.0.0.1:8787", true},
		{"localhost:8787", true},
		{"[::1]:8787", true},
		{"0.0.0.0:8787", false},
		{"192.168.1.10:8787", false},
		{":8787", false},
		{"", false},
		{"nonsense", false},
	}

	for _, tc := range tests {
		cfg := Config{ListenAddr: tc.addr, CORS: nchttp.CORSConfig{}}

		err := cfg.Validate()
		if tc.valid {
			assert.NoError(t, err, tc.addr)
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidArgument, tc.addr)
		}
	}
}

func TestStartStop(t *testing.T) {
	cfg := Config{ListenAddr: "127.0.0.1:0"}
	s, coord := newTestServer(t, &cfg)

	coord.EXPECT().HotspotState().Return(models.HotspotStateStopped(testTime))

	require.NoError(t, s.Start(context.Background()))
	require.Error(t, s.Start(context.Background()))

	resp, err := http.Get("http://" + s.Addr() + "/api/hotspot")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}
