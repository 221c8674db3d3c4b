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

package bridge

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/carverauto/netcoord/pkg/models"
)

var (
	errNoWirelessDevice = errors.New("no wireless device")
	errMonitorExited    = errors.New("nmcli monitor exited")
)

// nmcli exit codes, see nmcli(1).
const (
	exitInvalidInput     = 2
	exitTimeout          = 3
	exitActivationFailed = 4
	exitDeactivation     = 5
	exitDisconnectFailed = 6
	exitDeleteFailed     = 7
	exitNotRunning       = 8
	exitNotFound         = 10
)

var stderrKinds = []struct {
	needle string
	kind   error
}{
	{"not authorized", models.ErrPermissionDenied},
	{"insufficient privileges", models.ErrPermissionDenied},
	{"permission denied", models.ErrPermissionDenied},
	{"authentication failed", models.ErrPermissionDenied},
	{"request rejected", models.ErrPermissionDenied},
	{"networkmanager is not running", models.ErrServiceUnavailable},
	{"could not create nmclient", models.ErrServiceUnavailable},
	{"nm is not running", models.ErrServiceUnavailable},
	{"timeout expired", models.ErrTimeout},
	{"timed out", models.ErrTimeout},
	{"secrets were required", models.ErrInvalidArgument},
	{"no network with ssid", models.ErrInvalidArgument},
	{"could not be found", models.ErrInvalidArgument},
	{"unknown connection", models.ErrInvalidArgument},
	{"invalid", models.ErrInvalidArgument},
	{"is busy", models.ErrDeviceBusy},
	{"device busy", models.ErrDeviceBusy},
	{"in progress", models.ErrDeviceBusy},
	{"unavailable", models.ErrDeviceBusy},
	{"not available", models.ErrDeviceBusy},
}

// classify turns a failed command into an OpError carrying one of the bridge
// failure kinds. Daemon text wins over the exit code since nmcli reuses
// exit codes across unrelated failures.
func classify(op string, res *CommandResult) error {
	msg := strings.TrimSpace(res.Message())
	lower := strings.ToLower(msg)

	for _, k := range stderrKinds {
		if strings.Contains(lower, k.needle) {
			return models.NewOpError(op, k.kind, msg)
		}
	}

	return models.NewOpError(op, kindForExit(res.ExitCode), msg)
}

func kindForExit(code int) error {
	switch code {
	case exitInvalidInput, exitNotFound:
		return models.ErrInvalidArgument
	case exitTimeout:
		return models.ErrTimeout
	case exitNotRunning:
		return models.ErrServiceUnavailable
	case exitActivationFailed, exitDeactivation, exitDisconnectFailed, exitDeleteFailed:
		return models.ErrDeviceBusy
	default:
		return models.ErrServiceUnavailable
	}
}

// classifyRunError maps a failure to run the command at all. A caller that
// gave up is not a daemon failure, so cancellation keeps context.Canceled as
// its kind.
func classifyRunError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewOpError(op, models.ErrTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return models.NewOpError(op, context.Canceled, "")
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return models.NewOpError(op, models.ErrServiceUnavailable, err.Error())
	case errors.Is(err, os.ErrPermission):
		return models.NewOpError(op, models.ErrPermissionDenied, err.Error())
	default:
		return models.NewOpError(op, models.ErrServiceUnavailable, err.Error())
	}
}

func isInterrupted(msg string) bool {
	lower := strings.ToLower(msg)

	return strings.Contains(lower, "connection was interrupted") ||
		strings.Contains(lower, "network could not be found") ||
		strings.Contains(lower, "no network with ssid")
}

func isKeyMgmtMissing(msg string) bool {
	lower := strings.ToLower(msg)

	return strings.Contains(lower, "key-mgmt") && strings.Contains(lower, "missing")
}

func isUnknownConnection(msg string) bool {
	lower := strings.ToLower(msg)

	return strings.Contains(lower, "unknown connection") ||
		strings.Contains(lower, "not an active connection") ||
		strings.Contains(lower, "no active connection")
}
