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

package models

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to callers of the coordination layer. The first five
// originate in the network daemon bridge, the rest are produced locally by the
// controllers and never reach the daemon.
var (
	ErrPermissionDenied        = errors.New("permission denied")
	ErrServiceUnavailable      = errors.New("network service unavailable")
	ErrTimeout                 = errors.New("operation timed out")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrDeviceBusy              = errors.New("device busy")
	ErrOperationInProgress     = errors.New("operation already in progress")
	ErrConfigLockedWhileActive = errors.New("configuration locked while hotspot is active")
	ErrNoCapableInterface      = errors.New("no wireless interface capable of access point mode")
	ErrAlreadyInProgress       = errors.New("connection attempt already in progress")

	errInvalidDuration = errors.New("invalid duration")
)

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrPermissionDenied, "PermissionDenied"},
	{ErrServiceUnavailable, "ServiceUnavailable"},
	{ErrTimeout, "Timeout"},
	{ErrInvalidArgument, "InvalidArgument"},
	{ErrDeviceBusy, "DeviceBusy"},
	{ErrOperationInProgress, "OperationInProgress"},
	{ErrConfigLockedWhileActive, "ConfigLockedWhileActive"},
	{ErrNoCapableInterface, "NoCapableInterface"},
	{ErrAlreadyInProgress, "AlreadyInProgress"},
}

// OpError carries a failure kind together with the operation that produced it
// and any detail reported by the daemon.
type OpError struct {
	Op     string
	Kind   error
	Detail string
}

// NewOpError returns an OpError for op classified as kind.
func NewOpError(op string, kind error, detail string) *OpError {
	return &OpError{Op: op, Kind: kind, Detail: detail}
}

func (e *OpError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Detail)
}

func (e *OpError) Unwrap() error {
	return e.Kind
}

// KindOf returns the taxonomy name of err, or "Internal" when err does not
// wrap one of the known kinds.
func KindOf(err error) string {
	if err == nil {
		return ""
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}

	return "Internal"
}

// IsBridgeKind reports whether err carries a kind that can originate in the
// daemon bridge.
func IsBridgeKind(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrDeviceBusy)
}
