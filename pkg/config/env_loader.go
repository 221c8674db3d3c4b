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
	"context"
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	errUnsupportedEnvField = errors.New("unsupported field type")
)

var (
	stdDurationType    = reflect.TypeOf(time.Duration(0))
	modelsDurationType = reflect.TypeOf(models.Duration(0))
	textUnmarshaler    = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// envBinding ties one leaf setting to the variable that overrides it.
type envBinding struct {
	name  string
	index []int
}

// EnvConfigLoader overrides settings from environment variables. The
// variable name is the prefix followed by the upper-cased JSON path joined
// with underscores: with prefix NETCOORD_, NETCOORD_WIRELESS_SCAN_INTERVAL
// sets Wireless.ScanInterval. <prefix>CONFIG_JSON replaces the whole
// document instead.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader. path is unused.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	root, err := structValue(dst)
	if err != nil {
		return err
	}

	if doc, ok := os.LookupEnv(e.prefix + "CONFIG_JSON"); ok && doc != "" {
		if err := decodeJSON([]byte(doc), dst, true); err != nil {
			return fmt.Errorf("%sCONFIG_JSON: %w", e.prefix, err)
		}

		e.logDebug("Loaded configuration document from environment", e.prefix+"CONFIG_JSON")

		return nil
	}

	for _, b := range bindings(root.Type(), e.prefix, nil) {
		raw, ok := os.LookupEnv(b.name)
		if !ok {
			continue
		}

		if err := setFromString(fieldByIndexAlloc(root, b.index), raw); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}

		e.logDebug("Applied environment override", b.name)
	}

	return nil
}

func (e *EnvConfigLoader) logDebug(msg, name string) {
	if e.logger != nil {
		e.logger.Debug().Str("env", name).Msg(msg)
	}
}

// EnvVarNames lists, sorted, every variable the env loader reads for a
// configuration of dst's type.
func EnvVarNames(prefix string, dst interface{}) ([]string, error) {
	root, err := structValue(dst)
	if err != nil {
		return nil, err
	}

	bs := bindings(root.Type(), prefix, nil)
	names := make([]string, 0, len(bs)+1)
	names = append(names, prefix+"CONFIG_JSON")

	for _, b := range bs {
		names = append(names, b.name)
	}

	sort.Strings(names)

	return names, nil
}

func structValue(dst interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, ErrDstMustBeNonNilPointer
	}

	if v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrDstMustBePointerToStruct
	}

	return v.Elem(), nil
}

// bindings walks t and returns one binding per settable leaf. Nested
// structs, and pointers to structs, extend the name; fields without a JSON
// name are skipped.
func bindings(t reflect.Type, prefix string, parent []int) []envBinding {
	var out []envBinding

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		index := append(append([]int(nil), parent...), i)
		envName := prefix + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))

		ft := sf.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		if ft.Kind() == reflect.Struct && !isLeafType(ft) {
			out = append(out, bindings(ft, envName+"_", index)...)

			continue
		}

		out = append(out, envBinding{name: envName, index: index})
	}

	return out
}

func isLeafType(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshaler)
}

// fieldByIndexAlloc is reflect.Value.FieldByIndex, allocating nil struct
// pointers on the way down.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(i)
	}

	if v.Kind() == reflect.Ptr && v.Type().Elem().Kind() != reflect.Struct {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}

		v = v.Elem()
	}

	return v
}

func setFromString(field reflect.Value, raw string) error {
	if field.Type() == stdDurationType || field.Type() == modelsDurationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}

		field.SetInt(int64(d))

		return nil
	}

	if field.CanAddr() && field.Addr().Type().Implements(textUnmarshaler) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}

		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}

		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}

		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: %s", errUnsupportedEnvField, field.Type())
		}

		var items []string

		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}

		field.Set(reflect.ValueOf(items).Convert(field.Type()))
	default:
		return fmt.Errorf("%w: %s", errUnsupportedEnvField, field.Type())
	}

	return nil
}
