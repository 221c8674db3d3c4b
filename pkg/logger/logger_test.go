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
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "netcoord.log")

	l, closer, err := New(&Config{Level: "info", Output: OutputFile, File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)

	l.Info().Str("component", "test").Msg("hotspot state changed")
	l.Debug().Msg("below level")

	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hotspot state changed"`)
	assert.NotContains(t, string(data), "below level")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(&Config{Level: "loud", Output: OutputStderr})
	require.Error(t, err)

	_, _, err = New(&Config{Output: "syslog"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   zerolog.Level
	}{
		{"empty", Config{}, zerolog.InfoLevel},
		{"explicit", Config{Level: "warn"}, zerolog.WarnLevel},
		{"debug flag wins", Config{Level: "error", Debug: true}, zerolog.DebugLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLevel(&tc.config)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComponentSharesLevel(t *testing.T) {
	var buf bytes.Buffer

	root := Wrap(zerolog.New(&buf).Level(zerolog.InfoLevel))
	wireless := Component(root, "wireless")

	wireless.Info().Msg("scan complete")
	assert.Contains(t, buf.String(), `"component":"wireless"`)

	buf.Reset()
	wireless.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	root.SetDebug(true)
	wireless.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	root.SetDebug(false)
	wireless.Debug().Msg("hidden again")
	assert.Empty(t, buf.String())
}

func TestSetLevelConcurrentWithLogging(t *testing.T) {
	var buf syncBuffer

	root := Wrap(zerolog.New(&buf))
	child := Component(root, "devices")

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		for i := range 100 {
			root.SetDebug(i%2 == 0)
		}
	}()

	go func() {
		defer wg.Done()

		for range 100 {
			child.Debug().Msg("tick")
		}
	}()

	wg.Wait()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.Write(p)
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, OutputFile, config.Output)
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "netcoord", "netcoord.log"), config.File)
	require.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, (&Config{}).Validate())
	require.NoError(t, (&Config{Level: "trace", Output: OutputBoth}).Validate())
	require.Error(t, (&Config{Level: "loud"}).Validate())
	require.Error(t, (&Config{Output: "syslog"}).Validate())
}
