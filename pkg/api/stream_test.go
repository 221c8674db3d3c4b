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
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testTime       = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	errTestFixture = errors.New("fixture error")
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestEventStreamResyncsAfterGap(t *testing.T) {
	s, coord := newTestServer(t, nil)

	events := make(chan models.Event, 8)
	for _, seq := range []uint64{4, 6, 8, 10} {
		events <- models.Event{ID: "e", Seq: seq, Kind: models.EventDevices, Time: testTime}
	}

	var cancelled atomic.Bool

	coord.EXPECT().Subscribe(streamBuffer).Return((<-chan models.Event)(events), func() { cancelled.Store(true) })
	gomock.InOrder(
		coord.EXPECT().Snapshot().Return(models.Snapshot{Version: 5}),
		coord.EXPECT().Snapshot().Return(models.Snapshot{Version: 9}),
	)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events")

	msg := readMessage(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type)
	assert.Equal(t, uint64(5), msg.Snapshot.Version)

	msg = readMessage(t, conn)
	require.Equal(t, MessageEvent, msg.Type)
	assert.Equal(t, uint64(6), msg.Event.Seq)

	msg = readMessage(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type, "seq 7 was missed")
	assert.Equal(t, uint64(9), msg.Snapshot.Version)

	msg = readMessage(t, conn)
	require.Equal(t, MessageEvent, msg.Type)
	assert.Equal(t, uint64(10), msg.Event.Seq)

	close(events)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	require.Eventually(t, cancelled.Load, 2*time.Second, 5*time.Millisecond)
}

func TestEventStreamRejectsForeignOrigin(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.example")

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStopClosesEventStreams(t *testing.T) {
	ctrl := gomock.NewController(t)
	coord := NewMockCoordinator(ctrl)

	events := make(chan models.Event)

	coord.EXPECT().Subscribe(gomock.Any()).Return((<-chan models.Event)(events), func() {})
	coord.EXPECT().Snapshot().Return(models.Snapshot{Version: 1})

	s := NewServer(&Config{ListenAddr: "127.0.0.1:0"}, coord, logger.NewTestLogger())
	require.NoError(t, s.Start(context.Background()))

	conn := dial(t, "ws://"+s.Addr()+"/api/events")

	msg := readMessage(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
