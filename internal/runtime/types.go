// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"time"

	"gridpulse/internal/decision"
	"gridpulse/internal/health"
	"gridpulse/internal/telemetry"
)

// Mode selects which telemetry source feeds a scan cycle.
type Mode string

const (
	ModeLiveEdge   Mode = "LIVE_EDGE"
	ModeSimulation Mode = "SIMULATION"
	ModeHybrid     Mode = "HYBRID"
)

// ErrUnsupportedMode is returned for mode names outside the known set.
var ErrUnsupportedMode = errors.New("unsupported runtime mode")

// Modes returns the supported runtime modes, sorted.
func Modes() []string {
	return []string{string(ModeHybrid), string(ModeLiveEdge), string(ModeSimulation)}
}

const (
	historyCapacity = 720
	eventCapacity   = 500
	alertCapacity   = 200
)

// Event is one informational entry in the runtime's append-only event log.
type Event struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Alert is a raised warning or critical condition.
type Alert struct {
	ID       int64  `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

// HistoryRecord is one cycle's coarse score/energy sample.
type HistoryRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Time         string    `json:"time"`
	Optimization float64   `json:"optimization"`
	Energy       float64   `json:"energy"`
}

// Status is the service's health summary.
type Status struct {
	Running             bool       `json:"running"`
	ScanIntervalSeconds float64    `json:"scan_interval_seconds"`
	LastScanError       string     `json:"last_scan_error,omitempty"`
	AutoApplyProfile    bool       `json:"auto_apply_power_profile"`
	Mode                Mode       `json:"runtime_mode"`
	Scenario            string     `json:"scenario"`
	ScenarioCyclesLeft  int        `json:"scenario_cycles_left"`
	LatestTimestamp     *time.Time `json:"latest_timestamp,omitempty"`
}

// ServiceHealth is the status block embedded in the dashboard payload.
type ServiceHealth struct {
	Status
	SupportedModes     []string `json:"supported_modes"`
	SupportedScenarios []string `json:"supported_scenarios"`
}

// Payload is the aggregated dashboard view: latest snapshot, decision and
// health metrics plus bounded slices of the three ring buffers.
type Payload struct {
	Status        string              `json:"status"`
	Mode          Mode                `json:"mode"`
	Scenario      string              `json:"scenario"`
	Timestamp     time.Time           `json:"timestamp"`
	Telemetry     *telemetry.Snapshot `json:"telemetry"`
	Decision      *decision.Decision  `json:"decision"`
	RuntimeHealth []health.Metric     `json:"runtime_health"`
	History       []HistoryRecord     `json:"history"`
	Events        []Event             `json:"events"`
	Alerts        []Alert             `json:"alerts"`
	ServiceHealth ServiceHealth       `json:"service_health"`
}
