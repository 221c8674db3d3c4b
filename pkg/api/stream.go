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
	"net/http"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/gorilla/websocket"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 30 * time.Second
	pongDeadline  = 60 * time.Second
	streamBuffer  = 64
)

// Stream message types.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
)

// StreamMessage is one frame on /api/events. The first frame is always a
// snapshot; another snapshot follows whenever the stream fell behind and
// events were dropped.
type StreamMessage struct {
	Type     string           `json:"type"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Event    *models.Event    `json:"event,omitempty"`
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.closing:
		s.writeError(w, r, models.ErrServiceUnavailable)

		return
	default:
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.cfg.CORS.AllowsOrigin(r.Header.Get("Origin"))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	s.streams.Add(1)
	defer s.streams.Done()

	s.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("Event stream opened")

	defer func() {
		_ = conn.Close()
		s.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("Event stream closed")
	}()

	// Subscribe before reading the snapshot so nothing between the two is
	// lost; events already covered by the snapshot are skipped below.
	events, cancel := s.coord.Subscribe(streamBuffer)
	defer cancel()

	st := &eventStream{conn: conn, server: s}

	readDone := make(chan struct{})
	go st.readPump(readDone)

	if err := st.sendSnapshot(); err != nil {
		return
	}

	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				st.close(websocket.CloseGoingAway, "coordinator stopped")

				return
			}

			if err := st.forward(&ev); err != nil {
				return
			}
		case <-ticker.Chan():
			st.touchWrite()

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.closing:
			st.close(websocket.CloseGoingAway, "server shutting down")

			return
		}
	}
}

// eventStream owns the write side of one websocket; only the handler
// goroutine writes.
type eventStream struct {
	conn   *websocket.Conn
	server *Server
	last   uint64
}

func (st *eventStream) forward(ev *models.Event) error {
	switch {
	case ev.Seq <= st.last:
		return nil
	case ev.Seq != st.last+1:
		st.server.logger.Warn().
			Uint64("expected", st.last+1).
			Uint64("got", ev.Seq).
			Msg("Event stream fell behind, resending snapshot")

		if err := st.sendSnapshot(); err != nil {
			return err
		}

		if ev.Seq <= st.last {
			return nil
		}
	}

	st.last = ev.Seq

	return st.write(StreamMessage{Type: MessageEvent, Event: ev})
}

func (st *eventStream) sendSnapshot() error {
	snap := st.server.coord.Snapshot()
	st.last = snap.Version

	return st.write(StreamMessage{Type: MessageSnapshot, Snapshot: &snap})
}

func (st *eventStream) write(msg StreamMessage) error {
	st.touchWrite()

	return st.conn.WriteJSON(msg)
}

func (st *eventStream) touchWrite() {
	_ = st.conn.SetWriteDeadline(st.server.clock.Now().Add(writeDeadline))
}

func (st *eventStream) close(code int, reason string) {
	st.touchWrite()
	_ = st.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

// readPump discards client frames so pongs and close frames are processed.
func (st *eventStream) readPump(done chan<- struct{}) {
	defer close(done)

	extend := func() {
		_ = st.conn.SetReadDeadline(st.server.clock.Now().Add(pongDeadline))
	}

	extend()
	st.conn.SetPongHandler(func(string) error {
		extend()

		return nil
	})

	for {
		if _, _, err := st.conn.ReadMessage(); err != nil {
			return
		}
	}
}
