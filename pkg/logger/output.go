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
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
	// OutputBoth writes to the log file and mirrors to stderr.
	OutputBoth = "both"

	logDirMode  = 0o750
	logFileMode = 0o640
)

var errUnknownOutput = errors.New("unknown log output")

// OpenOutput returns the writer selected by config.Output. The closer is
// non-nil when a file was opened.
func OpenOutput(config *Config) (io.Writer, io.Closer, error) {
	switch config.Output {
	case "", OutputStdout:
		return os.Stdout, nil, nil
	case OutputStderr:
		return os.Stderr, nil, nil
	case OutputFile, OutputBoth:
		f, err := openLogFile(config.File)
		if err != nil {
			return nil, nil, err
		}

		if config.Output == OutputBoth {
			return zerolog.MultiLevelWriter(f, os.Stderr), f, nil
		}

		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownOutput, config.Output)
	}
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		path = DefaultLogPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, nil
}

// DefaultLogPath is the per-user log location, following XDG_STATE_HOME.
func DefaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "netcoord", "netcoord.log")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "netcoord", "netcoord.log")
	}

	return filepath.Join(home, ".local", "state", "netcoord", "netcoord.log")
}
