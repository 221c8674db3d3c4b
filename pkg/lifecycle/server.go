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

// Package lifecycle runs long-lived services until the process is signalled.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a component with a start/stop lifecycle.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures RunServer.
type ServerOptions struct {
	ServiceName     string
	Services        []Service
	ShutdownTimeout time.Duration
	Logger          logger.Logger
}

// RunServer starts every service in order, blocks until ctx is cancelled,
// a service fails, or SIGINT/SIGTERM arrives, then stops the started
// services in reverse order. While running, SIGUSR1 and SIGUSR2 switch
// opts.Logger between debug and info.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	levels := make(chan os.Signal, 1)
	signal.Notify(levels, syscall.SIGUSR1, syscall.SIGUSR2)

	defer signal.Stop(levels)

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	started := make([]Service, 0, len(opts.Services))

	var startErr error

	for _, svc := range opts.Services {
		if err := svc.Start(ctx); err != nil {
			startErr = fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)

			break
		}

		started = append(started, svc)
	}

	if startErr == nil {
		opts.Logger.Info().Str("service", opts.ServiceName).Msg("Service started")

		waitForShutdown(ctx, levels, opts.Logger)

		opts.Logger.Info().Str("service", opts.ServiceName).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stopErrs []error

	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(shutdownCtx); err != nil {
			opts.Logger.Error().Err(err).Msg("Error stopping service")

			stopErrs = append(stopErrs, err)
		}
	}

	return errors.Join(append([]error{startErr}, stopErrs...)...)
}

func waitForShutdown(ctx context.Context, levels <-chan os.Signal, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-levels:
			applyLevelSignal(sig, log)
		}
	}
}
