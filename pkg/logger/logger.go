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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// New builds a Logger from config. The closer is non-nil when a log file
// was opened and must be closed by the caller.
func New(config *Config) (Logger, io.Closer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	output, closer, err := OpenOutput(config)
	if err != nil {
		return nil, nil, err
	}

	level, err := ParseLevel(config)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}

		return nil, nil, err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	l := newWrapped(zerolog.New(output).With().Timestamp().Logger(), level)

	return l, closer, nil
}

// ParseLevel resolves the configured level, with Debug taking precedence.
func ParseLevel(config *Config) (zerolog.Level, error) {
	if config.Debug {
		return zerolog.DebugLevel, nil
	}

	if config.Level == "" {
		return zerolog.InfoLevel, nil
	}

	return zerolog.ParseLevel(config.Level)
}

// Wrap adapts a zerolog.Logger to the Logger interface, keeping its level.
func Wrap(zl zerolog.Logger) Logger {
	return newWrapped(zl.Level(zerolog.TraceLevel), zl.GetLevel())
}

// Component returns a child of l that tags every entry with the component
// name.
func Component(l Logger, name string) Logger {
	return Tagged(l, "component", name)
}

// Tagged returns a child of l that adds key=value to every entry. Children
// of a Logger returned by New or Wrap share its level, so SetLevel on the
// parent applies to all of them.
func Tagged(l Logger, key, value string) Logger {
	if w, ok := l.(*wrapped); ok {
		return &wrapped{zl: w.zl.With().Str(key, value).Logger(), level: w.level}
	}

	return Wrap(l.With().Str(key, value).Logger())
}

// wrapped keeps the zerolog logger unfiltered and applies the shared level
// per call, which lets SetLevel run concurrently with logging.
type wrapped struct {
	zl    zerolog.Logger
	level *atomic.Int32
}

func newWrapped(zl zerolog.Logger, level zerolog.Level) *wrapped {
	w := &wrapped{zl: zl, level: new(atomic.Int32)}
	w.level.Store(int32(level))

	return w
}

func (w *wrapped) current() *zerolog.Logger {
	zl := w.zl.Level(zerolog.Level(w.level.Load()))

	return &zl
}

func (w *wrapped) Trace() *zerolog.Event { return w.current().Trace() }
func (w *wrapped) Debug() *zerolog.Event { return w.current().Debug() }
func (w *wrapped) Info() *zerolog.Event  { return w.current().Info() }
func (w *wrapped) Warn() *zerolog.Event  { return w.current().Warn() }
func (w *wrapped) Error() *zerolog.Event { return w.current().Error() }
func (w *wrapped) With() zerolog.Context { return w.current().With() }

func (w *wrapped) WithComponent(component string) zerolog.Logger {
	return w.current().With().Str("component", component).Logger()
}

func (w *wrapped) SetLevel(level zerolog.Level) { w.level.Store(int32(level)) }

func (w *wrapped) SetDebug(debug bool) {
	if debug {
		w.SetLevel(zerolog.DebugLevel)
	} else {
		w.SetLevel(zerolog.InfoLevel)
	}
}
