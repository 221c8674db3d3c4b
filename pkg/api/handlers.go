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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/carverauto/netcoord/pkg/models"
	"github.com/gorilla/mux"
)

// ConnectRequest is the body of POST /api/wifi/connect. A missing or empty
// secret connects with the saved credential.
type ConnectRequest struct {
	SSID   string  `json:"ssid"`
	Secret *string `json:"secret,omitempty"`
}

// ToggleRequest is the body of PUT /api/wifi/radio and
// PUT /api/wifi/saved/{ssid}/autoconnect.
type ToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (t *ToggleRequest) value() (bool, error) {
	if t.Enabled == nil {
		return false, fmt.Errorf("%w: enabled is required", models.ErrInvalidArgument)
	}

	return *t.Enabled, nil
}

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}

var statusByKind = map[string]int{
	"InvalidArgument":         http.StatusBadRequest,
	"PermissionDenied":        http.StatusForbidden,
	"OperationInProgress":     http.StatusConflict,
	"AlreadyInProgress":       http.StatusConflict,
	"ConfigLockedWhileActive": http.StatusConflict,
	"DeviceBusy":              http.StatusConflict,
	"NoCapableInterface":      http.StatusUnprocessableEntity,
	"ServiceUnavailable":      http.StatusServiceUnavailable,
	"Timeout":                 http.StatusGatewayTimeout,
}

func statusFor(err error) int {
	if code, ok := statusByKind[models.KindOf(err)]; ok {
		return code
	}

	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	kind := models.KindOf(err)

	ev := s.logger.Warn()
	if code == http.StatusInternalServerError {
		ev = s.logger.Error()
	}

	ev.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("kind", kind).
		Int("status", code).
		Msg("Request failed")

	s.writeJSON(w, code, ErrorResponse{Error: err.Error(), Kind: kind})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to encode response")
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", models.ErrInvalidArgument)
		}

		return fmt.Errorf("%w: malformed request body: %w", models.ErrInvalidArgument, err)
	}

	return nil
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.Snapshot())
}

func (s *Server) getNetworks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.coord.Networks()))
}

func (s *Server) getSaved(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.coord.SavedNetworks()))
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	networks, err := s.coord.Scan(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, nonNil(networks))
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest

	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.coord.Connect(r.Context(), req.SSID, req.Secret); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Disconnect(r.Context()); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, okResponse)
}

func pathSSID(r *http.Request) (string, error) {
	ssid, err := url.PathUnescape(mux.Vars(r)["ssid"])
	if err != nil {
		return "", fmt.Errorf("%w: ssid: %w", models.ErrInvalidArgument, err)
	}

	return ssid, nil
}

func (s *Server) forgetNetwork(w http.ResponseWriter, r *http.Request) {
	ssid, err := pathSSID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.coord.Forget(r.Context(), ssid); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) networkInfo(w http.ResponseWriter, r *http.Request) {
	ssid, err := pathSSID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	info, err := s.coord.NetworkInfo(r.Context(), ssid)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) setAutoconnect(w http.ResponseWriter, r *http.Request) {
	ssid, err := pathSSID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req ToggleRequest

	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	enabled, err := req.value()
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.coord.SetAutoconnect(r.Context(), ssid, enabled); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) getRadio(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.Radio())
}

func (s *Server) setRadio(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest

	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	enabled, err := req.value()
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.coord.SetRadio(r.Context(), enabled); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, s.coord.Radio())
}

func (s *Server) getHotspot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.HotspotState())
}

func (s *Server) startHotspot(w http.ResponseWriter, r *http.Request) {
	handle, err := s.coord.StartHotspot(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, handle)
}

func (s *Server) stopHotspot(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.StopHotspot(r.Context()); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) acknowledgeHotspot(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.AcknowledgeHotspot(r.Context()); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, s.coord.HotspotState())
}

func (s *Server) getHotspotConfig(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.HotspotConfig())
}

func (s *Server) putHotspotConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.HotspotConfig

	if err := decodeBody(r, &cfg); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.coord.SaveHotspotConfig(r.Context(), &cfg); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, s.coord.HotspotConfig())
}

func (s *Server) getDevices(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.coord.Devices()))
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}

	return v
}
