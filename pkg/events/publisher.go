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

// Package events publishes coordinator state changes to NATS JetStream as
// CloudEvents.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/cenkalti/backoff/v5"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	cloudEventsVersion = "1.0"
	eventSource        = "netcoord/coordinator"
	eventTypePrefix    = "com.carverauto.netcoord."
	clientName         = "netcoord"
)

var errPublisherStarted = errors.New("publisher already started")

// CloudEvent is the envelope written to the stream.
type CloudEvent struct {
	SpecVersion     string        `json:"specversion"`
	ID              string        `json:"id"`
	Source          string        `json:"source"`
	Type            string        `json:"type"`
	DataContentType string        `json:"datacontenttype"`
	Subject         string        `json:"subject,omitempty"`
	Time            *time.Time    `json:"time,omitempty"`
	Data            *models.Event `json:"data,omitempty"`
}

// Publisher forwards events to JetStream from a single worker goroutine.
// Publish only enqueues; a full queue drops the event.
type Publisher struct {
	cfg    Config
	logger logger.Logger
	queue  chan *models.Event

	mu     sync.Mutex
	nc     *nats.Conn
	js     jetstream.JetStream
	cancel context.CancelFunc
	done   chan struct{}

	dropped   atomic.Uint64
	published atomic.Uint64
}

// NewPublisher returns an unstarted publisher. Events passed to Publish
// before Start are held in the queue.
func NewPublisher(cfg *Config, log logger.Logger) *Publisher {
	c := *cfg
	c.applyDefaults()

	return &Publisher{
		cfg:    c,
		logger: logger.Component(log, "events"),
		queue:  make(chan *models.Event, c.Buffer),
	}
}

// Subject returns the subject an event of the given kind is published on.
func (p *Publisher) Subject(kind models.EventKind) string {
	return p.cfg.SubjectPrefix + "." + string(kind)
}

// Dropped reports how many events were discarded because the queue was full.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Published reports how many events the stream acknowledged.
func (p *Publisher) Published() uint64 { return p.published.Load() }

// Publish enqueues ev without blocking.
func (p *Publisher) Publish(ev *models.Event) {
	select {
	case p.queue <- ev:
	default:
		n := p.dropped.Add(1)
		p.logger.Warn().
			Uint64("seq", ev.Seq).
			Str("kind", string(ev.Kind)).
			Uint64("dropped", n).
			Msg("Publish queue full, event dropped")
	}
}

// Start connects to NATS, ensures the stream exists and starts the worker.
// Connection attempts back off until ConnectTimeout elapses.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return errPublisherStarted
	}

	nc, err := p.connect(ctx)
	if err != nil {
		return err
	}

	js, err := newJetStream(nc, p.cfg.Domain)
	if err != nil {
		nc.Close()

		return err
	}

	if err := p.ensureStream(ctx, js); err != nil {
		nc.Close()

		return err
	}

	p.nc, p.js = nc, js

	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.worker(runCtx)

	p.logger.Info().
		Str("url", nc.ConnectedUrl()).
		Str("stream", p.cfg.Stream).
		Str("subjects", p.cfg.SubjectPrefix+".>").
		Msg("Event publisher started")

	return nil
}

// Stop ends the worker and drains the connection. Events still queued are
// discarded.
func (p *Publisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done, nc := p.cancel, p.done, p.nc
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := nc.Drain(); err != nil {
		nc.Close()

		return fmt.Errorf("drain nats connection: %w", err)
	}

	return nil
}

func (p *Publisher) connect(ctx context.Context) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			p.logger.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			p.logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if p.cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(p.cfg.CredsFile))
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 5 * time.Second

	attempt := 0

	operation := func() (*nats.Conn, error) {
		attempt++

		nc, err := nats.Connect(p.cfg.URL, opts...)
		if err != nil {
			p.logger.Warn().Err(err).Int("attempt", attempt).Str("url", p.cfg.URL).Msg("NATS connect failed")

			return nil, err
		}

		return nc, nil
	}

	nc, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(p.cfg.ConnectTimeout.Std()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

func newJetStream(nc *nats.Conn, domain string) (jetstream.JetStream, error) {
	if domain != "" {
		js, err := jetstream.NewWithDomain(nc, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", domain, err)
		}

		return js, nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return js, nil
}

// ensureStream creates the stream, or widens an existing one whose subjects
// do not cover the publisher's prefix.
func (p *Publisher) ensureStream(ctx context.Context, js jetstream.JetStream) error {
	want := p.cfg.SubjectPrefix + ".>"

	stream, err := js.Stream(ctx, p.cfg.Stream)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", p.cfg.Stream, err)
		}

		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     p.cfg.Stream,
			Subjects: []string{want},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", p.cfg.Stream, err)
		}

		p.logger.Info().Str("stream", p.cfg.Stream).Msg("Created JetStream stream")

		return nil
	}

	cfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(cfg.Subjects, want)
	if len(subjects) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = subjects

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add subject %s to stream %s: %w", want, p.cfg.Stream, err)
	}

	return nil
}

func (p *Publisher) worker(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			if err := p.publish(ctx, ev); err != nil && ctx.Err() == nil {
				p.logger.Error().
					Err(err).
					Uint64("seq", ev.Seq).
					Str("kind", string(ev.Kind)).
					Msg("Failed to publish event")
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ev *models.Event) error {
	payload, err := json.Marshal(p.envelope(ev))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout.Std())
	defer cancel()

	ack, err := p.js.Publish(ctx, p.Subject(ev.Kind), payload, jetstream.WithMsgID(ev.ID))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.Subject(ev.Kind), err)
	}

	p.published.Add(1)

	p.logger.Trace().
		Str("subject", p.Subject(ev.Kind)).
		Uint64("stream_seq", ack.Sequence).
		Uint64("seq", ev.Seq).
		Msg("Event published")

	return nil
}

func (p *Publisher) envelope(ev *models.Event) CloudEvent {
	t := ev.Time

	return CloudEvent{
		SpecVersion:     cloudEventsVersion,
		ID:              ev.ID,
		Source:          eventSource,
		Type:            eventTypePrefix + string(ev.Kind),
		DataContentType: "application/json",
		Subject:         p.Subject(ev.Kind),
		Time:            &t,
		Data:            ev,
	}
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}

func ensureSubjectList(subjects []string, subject string) []string {
	for _, s := range subjects {
		if matchesSubject(s, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether pattern covers subject. A ">" in subject is
// treated as a literal token, so "a.>" only matches a pattern ending in ">".
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i < len(st)
		}

		if i >= len(st) {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}

		if tok == "*" && st[i] == ">" {
			return false
		}
	}

	return len(pt) == len(st)
}
