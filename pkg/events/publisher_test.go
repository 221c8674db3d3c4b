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

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestFixture = errors.New("fixture error")

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

func TestPublisherWritesCloudEvents(t *testing.T) {
	srv := runJetStreamServer(t)
	ctx := context.Background()

	p := NewPublisher(&Config{Enabled: true, URL: srv.ClientURL()}, logger.NewTestLogger())
	require.NoError(t, p.Start(ctx))

	t.Cleanup(func() { _ = p.Stop(context.Background()) })

	hs := models.HotspotStateRunning("wlan0", time.Unix(1700000000, 0).UTC())
	ev := &models.Event{
		ID:      "evt-1",
		Seq:     7,
		Kind:    models.EventHotspot,
		Time:    time.Unix(1700000001, 0).UTC(),
		Hotspot: &hs,
	}

	p.Publish(ev)

	require.Eventually(t, func() bool { return p.Published() == 1 }, 5*time.Second, 10*time.Millisecond)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, defaultStream)
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, "netcoord.events.hotspot")
	require.NoError(t, err)

	var got CloudEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))

	assert.Equal(t, "1.0", got.SpecVersion)
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "com.carverauto.netcoord.hotspot", got.Type)
	assert.Equal(t, "netcoord.events.hotspot", got.Subject)
	require.NotNil(t, got.Data)
	assert.Equal(t, uint64(7), got.Data.Seq)
	require.NotNil(t, got.Data.Hotspot)
	assert.Equal(t, models.HotspotRunning, got.Data.Hotspot.Phase)
	assert.Equal(t, "wlan0", got.Data.Hotspot.Interface)
}

func TestPublisherWidensExistingStream(t *testing.T) {
	srv := runJetStreamServer(t)
	ctx := context.Background()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{Name: "SHARED", Subjects: []string{"other.>"}})
	require.NoError(t, err)

	p := NewPublisher(&Config{Enabled: true, URL: srv.ClientURL(), Stream: "SHARED"}, logger.NewTestLogger())
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Stop(ctx))

	stream, err := js.Stream(ctx, "SHARED")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"other.>", "netcoord.events.>"}, stream.CachedInfo().Config.Subjects)
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	p := NewPublisher(&Config{Buffer: 1}, logger.NewTestLogger())

	p.Publish(&models.Event{Seq: 1, Kind: models.EventDevices})
	p.Publish(&models.Event{Seq: 2, Kind: models.EventDevices})

	assert.Equal(t, uint64(1), p.Dropped())
	assert.Len(t, p.queue, 1)
}

func TestStartFailsWithoutServer(t *testing.T) {
	cfg := &Config{
		Enabled:        true,
		URL:            "nats://127.0.0.1:1",
		ConnectTimeout: models.Duration(300 * time.Millisecond),
	}

	p := NewPublisher(cfg, logger.NewTestLogger())

	require.Error(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
}

func TestConfigValidate(t *testing.T) {
	disabled := Config{}
	require.NoError(t, disabled.Validate())

	missing := Config{Enabled: true}
	require.ErrorIs(t, missing.Validate(), models.ErrInvalidArgument)

	wildcard := Config{Enabled: true, URL: "nats://x", SubjectPrefix: "netcoord.*"}
	require.ErrorIs(t, wildcard.Validate(), models.ErrInvalidArgument)

	ok := DefaultConfig()
	ok.Enabled = true
	require.NoError(t, ok.Validate())
}

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{"adds subject when list empty", nil, "netcoord.events.>", []string{"netcoord.events.>"}},
		{"keeps list when greater wildcard matches", []string{"netcoord.>"}, "netcoord.events.>", []string{"netcoord.>"}},
		{"keeps list when identical", []string{"netcoord.events.>"}, "netcoord.events.>", []string{"netcoord.events.>"}},
		{"appends when only a literal matches", []string{"netcoord.events.hotspot"}, "netcoord.events.>",
			[]string{"netcoord.events.hotspot", "netcoord.events.>"}},
		{"appends when unmatched", []string{"logs.syslog.*"}, "netcoord.events.>",
			[]string{"logs.syslog.*", "netcoord.events.>"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "netcoord.events.hotspot", "netcoord.events.hotspot", true},
		{"single wildcard", "netcoord.*.hotspot", "netcoord.events.hotspot", true},
		{"greater wildcard", "netcoord.>", "netcoord.events.hotspot", true},
		{"no match length", "netcoord.*", "netcoord.events.hotspot", false},
		{"single wildcard does not cover greater", "netcoord.events.*", "netcoord.events.>", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	assert.True(t, isStreamMissingErr(jetstream.ErrStreamNotFound))
	assert.True(t, isStreamMissingErr(jetstream.ErrNoStreamResponse))
	assert.True(t, isStreamMissingErr(nats.ErrNoResponders))
	assert.False(t, isStreamMissingErr(errTestFixture))
}
