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

package logger

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var errInvalidLogConfig = errors.New("invalid logging configuration")

// Config selects the level and sink of the daemon log.
type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	File       string `json:"file"`
	TimeFormat string `json:"time_format"`
}

// DefaultConfig logs at info level to the per-user log file.
func DefaultConfig() *Config {
	return &Config{
		Level:  zerolog.InfoLevel.String(),
		Output: OutputFile,
		File:   DefaultLogPath(),
	}
}

// Validate checks the level name and output selector without opening
// anything.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c); err != nil {
		return fmt.Errorf("%w: level %q", errInvalidLogConfig, c.Level)
	}

	switch c.Output {
	case "", OutputStdout, OutputStderr, OutputFile, OutputBoth:
		return nil
	default:
		return fmt.Errorf("%w: output %q", errInvalidLogConfig, c.Output)
	}
}
