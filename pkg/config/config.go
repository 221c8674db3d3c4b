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

// Package config loads and validates the netcoord daemon configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/rs/zerolog"
)

var errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")

// Source selects where configuration is read from.
type Source string

const (
	SourceFile Source = "file"
	SourceEnv  Source = "env"

	// DefaultEnvPrefix prefixes every variable read by the env loader.
	DefaultEnvPrefix = "NETCOORD_"
)

// SourceFromEnv reads CONFIG_SOURCE; unset means SourceFile.
func SourceFromEnv() (Source, error) {
	switch s := Source(strings.ToLower(os.Getenv("CONFIG_SOURCE"))); s {
	case "", SourceFile:
		return SourceFile, nil
	case SourceEnv:
		return SourceEnv, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", errInvalidConfigSource, s, SourceFile, SourceEnv)
	}
}

// EnvPrefix reads CONFIG_ENV_PREFIX, defaulting to DefaultEnvPrefix.
func EnvPrefix() string {
	if p := os.Getenv("CONFIG_ENV_PREFIX"); p != "" {
		return p
	}

	return DefaultEnvPrefix
}

// Config loads configuration documents.
type Config struct {
	logger logger.Logger
}

// NewConfig returns a loader. Configuration is read before the daemon
// logger exists, so a nil logger means warnings go to stderr.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.Wrap(zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger())
	}

	return &Config{logger: log}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// LoadAndValidate fills cfg, which should already hold defaults, from the
// source named by CONFIG_SOURCE and validates the result. A missing file
// keeps the defaults.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	source, err := SourceFromEnv()
	if err != nil {
		return err
	}

	err = c.loader(source).Load(ctx, path, cfg)

	switch {
	case errors.Is(err, ErrConfigNotFound):
		c.logger.Info().Str("path", path).Msg("No configuration file, using defaults")
	case err != nil:
		return fmt.Errorf("%s configuration: %w", source, err)
	default:
		c.logger.Debug().Str("source", string(source)).Str("path", path).Msg("Configuration loaded")
	}

	return ValidateConfig(cfg)
}

func (c *Config) loader(source Source) ConfigLoader {
	if source == SourceEnv {
		return NewEnvConfigLoader(c.logger, EnvPrefix())
	}

	return &FileConfigLoader{}
}
