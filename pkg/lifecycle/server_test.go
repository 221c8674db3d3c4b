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
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name     string
	startErr error
	mu       *sync.Mutex
	calls    *[]string
}

func (r *recordingService) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	*r.calls = append(*r.calls, "start:"+r.name)

	return r.startErr
}

func (r *recordingService) Stop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	*r.calls = append(*r.calls, "stop:"+r.name)

	return nil
}

func TestRunServerStopsInReverseOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunServer(ctx, &ServerOptions{
		ServiceName: "netcoord",
		Services: []Service{
			&recordingService{name: "a", mu: &mu, calls: &calls},
			&recordingService{name: "b", mu: &mu, calls: &calls},
		},
		Logger: logger.NewTestLogger(),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, calls)
}

func TestRunServerStartFailure(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)

	boom := errors.New("boom")

	err := RunServer(context.Background(), &ServerOptions{
		ServiceName: "netcoord",
		Services: []Service{
			&recordingService{name: "a", mu: &mu, calls: &calls},
			&recordingService{name: "b", mu: &mu, calls: &calls, startErr: boom},
			&recordingService{name: "c", mu: &mu, calls: &calls},
		},
		Logger: logger.NewTestLogger(),
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start:a", "start:b", "stop:a"}, calls)
}

func TestCreateComponentLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netcoord.log")

	l, err := CreateComponentLogger("hotspot", &logger.Config{Output: logger.OutputFile, File: path})
	require.NoError(t, err)

	l.Info().Msg("ready")
	require.NoError(t, l.Close())
	assert.FileExists(t, path)
}

func TestApplyLevelSignal(t *testing.T) {
	var buf bytes.Buffer

	root := logger.Wrap(zerolog.New(&buf).Level(zerolog.InfoLevel))
	hotspot := logger.Component(root, "hotspot")

	require.True(t, applyLevelSignal(syscall.SIGUSR1, root))

	buf.Reset()
	hotspot.Debug().Msg("probe")
	assert.Contains(t, buf.String(), "probe")

	require.True(t, applyLevelSignal(syscall.SIGUSR2, root))

	buf.Reset()
	hotspot.Debug().Msg("probe")
	assert.Empty(t, buf.String())

	assert.False(t, applyLevelSignal(syscall.SIGHUP, root))
}
