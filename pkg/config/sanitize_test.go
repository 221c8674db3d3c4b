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
	"encoding/json"
	"testing"
	"time"

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/stretchr/testify/require"
)

type sampleNested struct {
	Value  string `json:"value"`
	Secret string `json:"secret" sensitive:"true"`
}

type sampleConfig struct {
	Public   string          `json:"public"`
	Secret   string          `json:"secret" sensitive:"true"`
	Interval models.Duration `json:"interval"`
	Nested   sampleNested    `json:"nested"`
	Optional *sampleNested   `json:"optional"`
	Hidden   string          `json:"-"`
}

func TestSanitize_RemovesSensitiveFields(t *testing.T) {
	cfg := sampleConfig{
		Public:   "visible",
		Secret:   "top-secret",
		Interval: models.Duration(5 * time.Second),
		Nested:   sampleNested{Value: "nested", Secret: "nested-secret"},
		Hidden:   "hidden",
	}

	data, err := Sanitize(&cfg)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	require.Equal(t, "visible", result["public"])
	require.Equal(t, "5s", result["interval"])
	require.NotContains(t, result, "secret")
	require.NotContains(t, result, "Hidden")
	require.Nil(t, result["optional"])

	nested := result["nested"].(map[string]interface{})
	require.Equal(t, "nested", nested["value"])
	require.NotContains(t, nested, "secret")
}
