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

// Package api serves the coordinator over a loopback HTTP and websocket
// interface for presentation processes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	nchttp "github.com/carverauto/netcoord/pkg/http"
	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
)

const (
	defaultListenAddr        = "127.0.0.1:8787"
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	maxBodyBytes             = 64 << 10
)

var (
	errNotLoopback    = errors.New("listen address must be a loopback address")
	errServerStarted  = errors.New("api server already started")
	errMissingAddress = errors.New("listen address is required")
)

// Config controls the control API listener.
type Config struct {
	ListenAddr string            `json:"listen_addr"`
	APIKey     string            `json:"api_key,omitempty" sensitive:"true"`
	CORS       nchttp.CORSConfig `json:"cors"`
}

// DefaultConfig returns a listener on the loopback interface with no key.
func DefaultConfig() Config {
	return Config{ListenAddr: defaultListenAddr}
}

// Validate implements config.Validator. Only loopback hosts are accepted.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: %w", models.ErrInvalidArgument, errMissingAddress)
	}

	host, _, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: listen address %q: %w", models.ErrInvalidArgument, c.ListenAddr, err)
	}

	if host == "localhost" {
		return nil
	}

	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %w: %s", models.ErrInvalidArgument, errNotLoopback, c.ListenAddr)
	}

	return nil
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the clock driving websocket keepalives.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// Server is the local control API.
type Server struct {
	cfg    Config
	coord  Coordinator
	logger logger.Logger
	clock  clockwork.Clock
	router *mux.Router

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	closing  chan struct{}
	streams  sync.WaitGroup
}

// NewServer builds the router for coord. The listener is opened by Start.
func NewServer(cfg *Config, coord Coordinator, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:     *cfg,
		coord:   coord,
		logger:  logger.Component(log, "api"),
		clock:   clockwork.NewRealClock(),
		router:  mux.NewRouter(),
		closing: make(chan struct{}),
	}

	for _, o := range opts {
		o(s)
	}

	s.setupRoutes()

	return s
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	// SSIDs may contain '/', so path variables stay encoded until the handler.
	s.router.UseEncodedPath()

	s.router.Use(func(next http.Handler) http.Handler {
		return nchttp.CommonMiddleware(next, s.cfg.CORS, s.logger)
	})
	s.router.Use(nchttp.APIKeyMiddlewareWithOptions(nchttp.APIKeyOptions{
		APIKey:          s.cfg.APIKey,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	r := s.router.PathPrefix("/api").Subrouter()

	r.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	r.HandleFunc("/events", s.streamEvents).Methods(http.MethodGet)

	r.HandleFunc("/wifi/networks", s.getNetworks).Methods(http.MethodGet)
	r.HandleFunc("/wifi/saved", s.getSaved).Methods(http.MethodGet)
	r.HandleFunc("/wifi/saved/{ssid}", s.networkInfo).Methods(http.MethodGet)
	r.HandleFunc("/wifi/saved/{ssid}", s.forgetNetwork).Methods(http.MethodDelete)
	r.HandleFunc("/wifi/saved/{ssid}/autoconnect", s.setAutoconnect).Methods(http.MethodPut)
	r.HandleFunc("/wifi/radio", s.getRadio).Methods(http.MethodGet)
	r.HandleFunc("/wifi/radio", s.setRadio).Methods(http.MethodPut)
	r.HandleFunc("/wifi/scan", s.scan).Methods(http.MethodPost)
	r.HandleFunc("/wifi/connect", s.connect).Methods(http.MethodPost)
	r.HandleFunc("/wifi/disconnect", s.disconnect).Methods(http.MethodPost)

	r.HandleFunc("/hotspot", s.getHotspot).Methods(http.MethodGet)
	r.HandleFunc("/hotspot/start", s.startHotspot).Methods(http.MethodPost)
	r.HandleFunc("/hotspot/stop", s.stopHotspot).Methods(http.MethodPost)
	r.HandleFunc("/hotspot/ack", s.acknowledgeHotspot).Methods(http.MethodPost)
	r.HandleFunc("/hotspot/config", s.getHotspotConfig).Methods(http.MethodGet)
	r.HandleFunc("/hotspot/config", s.putHotspotConfig).Methods(http.MethodPut)

	r.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
}

// Start opens the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errServerStarted
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("API server stopped unexpectedly")
		}
	}(s.srv)

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Control API listening")

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Stop shuts the listener down and closes open event streams.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	select {
	case <-s.closing:
	default:
		close(s.closing)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}

	done := make(chan struct{})

	go func() {
		s.streams.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
