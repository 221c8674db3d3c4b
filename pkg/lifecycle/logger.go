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

package lifecycle

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/carverauto/netcoord/pkg/logger"
)

// ComponentLogger is a logger.Logger that owns its output sink.
type ComponentLogger struct {
	logger.Logger

	closer io.Closer
}

// Close releases the log file, if one was opened.
func (c *ComponentLogger) Close() error {
	if c.closer == nil {
		return nil
	}

	return c.closer.Close()
}

// CreateComponentLogger builds the root logger from config. Entries carry
// service=component; loggers derived with logger.Component add their own
// component field. A nil config uses logger.DefaultConfig.
func CreateComponentLogger(component string, config *logger.Config) (*ComponentLogger, error) {
	base, closer, err := logger.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &ComponentLogger{Logger: logger.Tagged(base, "service", component), closer: closer}, nil
}

// applyLevelSignal raises the level to debug on SIGUSR1 and restores info
// on SIGUSR2. It reports whether sig was a level signal.
func applyLevelSignal(sig os.Signal, log logger.Logger) bool {
	switch sig {
	case syscall.SIGUSR1:
		log.SetDebug(true)
		log.Info().Msg("Debug logging enabled")
	case syscall.SIGUSR2:
		log.Info().Msg("Debug logging disabled")
		log.SetDebug(false)
	default:
		return false
	}

	return true
}
