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

package coordinator

import (
	"sync"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const defaultSubscriberBuffer = 16

// Publisher receives every event after local subscribers. Publish must not
// block.
type Publisher interface {
	Publish(ev *models.Event)
}

type subscriber struct {
	ch      chan models.Event
	dropped uint64
}

// broker numbers change notifications and fans them out. Numbering and
// delivery happen under one lock, so every subscriber sees events in
// sequence order.
type broker struct {
	facade    *Facade
	publisher Publisher
	logger    logger.Logger
	clock     clockwork.Clock

	mu     sync.Mutex
	seq    uint64
	nextID uint64
	subs   map[uint64]*subscriber
	closed bool
}

func newBroker(f *Facade, p Publisher, log logger.Logger, clock clockwork.Clock) *broker {
	return &broker{
		facade:    f,
		publisher: p,
		logger:    log,
		clock:     clock,
		subs:      make(map[uint64]*subscriber),
	}
}

func (b *broker) version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.seq
}

func (b *broker) snapshot() models.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.facade.readAll(b.seq)
}

// notify is the change callback handed to every controller.
func (b *broker) notify(kind models.EventKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.seq++

	ev := b.build(kind)

	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.dropped++
			b.logger.Warn().
				Uint64("subscriber", id).
				Uint64("seq", ev.Seq).
				Uint64("dropped", sub.dropped).
				Str("kind", string(kind)).
				Msg("Subscriber buffer full, event dropped")
		}
	}

	if b.publisher != nil {
		b.publisher.Publish(&ev)
	}
}

func (b *broker) build(kind models.EventKind) models.Event {
	ev := models.Event{
		ID:   uuid.NewString(),
		Seq:  b.seq,
		Kind: kind,
		Time: b.clock.Now(),
	}

	f := b.facade

	switch kind {
	case models.EventConnection:
		s := f.wireless.State()
		ev.Connection = &s
	case models.EventNetworks:
		ev.Networks = f.wireless.Networks()
	case models.EventSaved:
		ev.Saved = f.wireless.Saved()
	case models.EventHotspot:
		s := f.hotspot.State()
		ev.Hotspot = &s
	case models.EventConfig:
		c := f.hotspot.Config()
		ev.Config = &c
	case models.EventDevices:
		ev.Devices = f.devices.Devices()
	case models.EventRadio:
		r := f.wireless.Radio()
		ev.Radio = &r
	}

	return ev
}

func (b *broker) subscribe(buffer int) (<-chan models.Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Event, buffer)

	if b.closed {
		close(ch)

		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs[id] = &subscriber{ch: ch}

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
