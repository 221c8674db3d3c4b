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

package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
)

const (
	defaultStream         = "NETCOORD_EVENTS"
	defaultSubjectPrefix  = "netcoord.events"
	defaultBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

var (
	errMissingURL    = errors.New("nats url is required when publishing is enabled")
	errBadPrefix     = errors.New("subject prefix must not contain wildcards or spaces")
	errNegativeValue = errors.New("must not be negative")
)

// Config controls the JetStream event publisher. Publishing is off unless
// Enabled is set.
type Config struct {
	Enabled        bool            `json:"enabled"`
	URL            string          `json:"url"`
	Domain         string          `json:"domain,omitempty"`
	CredsFile      string          `json:"creds_file,omitempty"`
	Stream         string          `json:"stream"`
	SubjectPrefix  string          `json:"subject_prefix"`
	Buffer         int             `json:"buffer"`
	PublishTimeout models.Duration `json:"publish_timeout"`
	ConnectTimeout models.Duration `json:"connect_timeout"`
}

// DefaultConfig returns a disabled publisher configuration with the usual
// stream and subject names filled in.
func DefaultConfig() Config {
	return Config{
		URL:            "nats://127.0.0.1:4222",
		Stream:         defaultStream,
		SubjectPrefix:  defaultSubjectPrefix,
		Buffer:         defaultBuffer,
		PublishTimeout: models.Duration(defaultPublishTimeout),
		ConnectTimeout: models.Duration(defaultConnectTimeout),
	}
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.URL == "" {
		return fmt.Errorf("%w: %w", models.ErrInvalidArgument, errMissingURL)
	}

	if strings.ContainsAny(c.SubjectPrefix, "*> \t") {
		return fmt.Errorf("%w: %w", models.ErrInvalidArgument, errBadPrefix)
	}

	if c.Buffer < 0 || c.PublishTimeout < 0 || c.ConnectTimeout < 0 {
		return fmt.Errorf("%w: buffer and timeouts %w", models.ErrInvalidArgument, errNegativeValue)
	}

	return nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Stream == "" {
		c.Stream = d.Stream
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = d.SubjectPrefix
	}

	if c.Buffer == 0 {
		c.Buffer = d.Buffer
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = d.PublishTimeout
	}

	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
}
