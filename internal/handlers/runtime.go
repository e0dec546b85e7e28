// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gridpulse/internal/runtime"
	"gridpulse/internal/scenario"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode failed: %v", err)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return def
}

// DashboardHandler serves the aggregated live dashboard payload with
// bounded history/event/alert slices.
func DashboardHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historyLimit := queryInt(r, "history", 30)
		eventLimit := queryInt(r, "events", 30)
		alertLimit := queryInt(r, "alerts", 10)
		writeJSON(w, http.StatusOK, svc.LatestPayload(historyLimit, eventLimit, alertLimit))
	}
}

// StatusHandler serves the runtime service health summary.
func StatusHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.HealthStatus())
	}
}

// ScanHandler triggers one synchronous scan iteration.
func ScanHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		svc.ScanNow()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "scanned",
			"timestamp": time.Now().UTC(),
		})
	}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// ModeHandler switches the runtime mode. Unrecognized modes yield 400.
func ModeHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req modeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.SetMode(req.Mode); err != nil {
			if errors.Is(err, runtime.ErrUnsupportedMode) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "updated",
			"mode":      strings.ToUpper(strings.TrimSpace(req.Mode)),
			"timestamp": time.Now().UTC(),
		})
	}
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
	Cycles   *int   `json:"cycles"`
}

// ScenarioHandler injects a scenario for a bounded number of cycles.
func ScenarioHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req scenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		cycles := runtime.DefaultScenarioCycles
		if req.Cycles != nil {
			cycles = *req.Cycles
		}

		if err := svc.SetScenario(req.Scenario, cycles); err != nil {
			if errors.Is(err, scenario.ErrUnsupported) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "updated",
			"scenario":  strings.ToLower(strings.TrimSpace(req.Scenario)),
			"cycles":    cycles,
			"timestamp": time.Now().UTC(),
		})
	}
}

type autoApplyRequest struct {
	Enabled *bool `json:"enabled"`
}

// AutoApplyHandler toggles automatic power profile application.
func AutoApplyHandler(svc *runtime.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req autoApplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		svc.SetAutoApply(enabled)

		writeJSON(w, http.StatusOK, map[string]any{
			"status":                   "updated",
			"auto_apply_power_profile": enabled,
			"timestamp":                time.Now().UTC(),
		})
	}
}
