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

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const maxConfigFileSize = 1 << 20

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrConfigTooLarge is returned for files over maxConfigFileSize.
	ErrConfigTooLarge = errors.New("configuration file too large")

	errTrailingData = errors.New("unexpected data after configuration document")
)

// FileConfigLoader decodes a JSON file over dst. Keys absent from the file
// keep the values already in dst; keys dst does not know are rejected so a
// misspelled setting never silently falls back to its default.
type FileConfigLoader struct {
	// Lenient accepts unknown keys.
	Lenient bool
}

// Load implements ConfigLoader.
func (f *FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%w: %s", ErrConfigTooLarge, path)
	}

	return decodeJSON(data, dst, !f.Lenient)
}

func decodeJSON(data []byte, dst interface{}, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}

	if dec.More() {
		return errTrailingData
	}

	return nil
}
