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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/netcoord/pkg/api"
	"github.com/carverauto/netcoord/pkg/bridge"
	"github.com/carverauto/netcoord/pkg/config"
	"github.com/carverauto/netcoord/pkg/coordinator"
	"github.com/carverauto/netcoord/pkg/events"
	"github.com/carverauto/netcoord/pkg/lifecycle"
	"github.com/carverauto/netcoord/pkg/version"
)

var errFailedToLoadConfig = errors.New("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "Path to netcoord config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	listEnv := flag.Bool("env", false, "List the environment variables read when CONFIG_SOURCE=env and exit")
	flag.Parse()

	if *showVersion {
		fmt.Fprintln(os.Stdout, version.GetFullVersion())

		return nil
	}

	if *listEnv {
		return printEnvVars()
	}

	ctx := context.Background()

	cfg := config.DefaultDaemonConfig()

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	mainLogger, err := lifecycle.CreateComponentLogger("netcoord", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() { _ = mainLogger.Close() }()

	build := version.Get()

	mainLogger.Info().
		Str("version", build.Version).
		Str("build", build.BuildID).
		Str("revision", build.Revision).
		Str("go", build.GoVersion).
		Str("config", *configPath).
		Msg("Starting netcoord")

	if safe, err := config.Sanitize(cfg); err == nil {
		mainLogger.Debug().RawJSON("config", safe).Msg("Effective configuration")
	}

	br := bridge.NewNMCLI(cfg.Bridge, bridge.NewExecExecutor(), mainLogger)

	var opts []coordinator.Option

	if cfg.Events.Enabled {
		pub := events.NewPublisher(&cfg.Events, mainLogger)

		// An unreachable broker only disables publishing.
		if err := pub.Start(ctx); err != nil {
			mainLogger.Warn().Err(err).Msg("Event publishing disabled")
		} else {
			opts = append(opts, coordinator.WithPublisher(pub))

			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
				defer cancel()

				if err := pub.Stop(stopCtx); err != nil {
					mainLogger.Warn().Err(err).Msg("Event publisher did not stop cleanly")
				}
			}()
		}
	}

	facade, err := coordinator.New(cfg.Coordinator(version.GetFullVersion()), br, mainLogger, opts...)
	if err != nil {
		return err
	}

	server := api.NewServer(&cfg.API, facade, mainLogger)

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName:     "netcoord",
		Services:        []lifecycle.Service{br, facade, server},
		ShutdownTimeout: cfg.ShutdownTimeout.Std(),
		Logger:          mainLogger,
	})
}

func printEnvVars() error {
	names, err := config.EnvVarNames(config.EnvPrefix(), config.DefaultDaemonConfig())
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(os.Stdout, name)
	}

	return nil
}
