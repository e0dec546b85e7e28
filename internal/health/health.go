// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package health scores a snapshot and detects alert-worthy transitions
// between consecutive scan cycles.
package health

import (
	"fmt"
	"math"

	"gridpulse/internal/telemetry"
)

// Metric is a single named health indicator in [0,100].
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AlertDraft is an alert before the runtime assigns it an id and time label.
type AlertDraft struct {
	Severity string
	Title    string
	Message  string
}

// EventDraft is an event before the runtime assigns it an id and time label.
type EventDraft struct {
	Type    string
	Message string
}

// OptimizationScore condenses a snapshot into one score in [5,100]: the
// higher, the more headroom the host has. An active fault costs a flat 25
// points; a draining battery costs up to 10.
func OptimizationScore(s telemetry.Snapshot) float64 {
	faultPenalty := 0.0
	if s.Industrial != nil && s.Industrial.FaultFlag {
		faultPenalty = 25.0
	}

	batteryPenalty := 0.0
	if s.BatteryPercent != nil {
		batteryPenalty = math.Max(0.0, 100.0-*s.BatteryPercent)
	}

	score := 100.0 - (s.CPUPercent*0.3 +
		s.MemoryPercent*0.25 +
		s.DiskPercent*0.1 +
		s.GridLoad()*100.0*0.25 +
		batteryPenalty*0.1 +
		faultPenalty)
	return round2(math.Max(5.0, math.Min(100.0, score)))
}

// Indicators builds the five runtime health metrics. stability is the
// decision's embedded stability score in [0,1].
func Indicators(s telemetry.Snapshot, stability float64) []Metric {
	gridResilience := math.Max(0.0, math.Min(100.0, 100.0-s.GridLoad()*100.0))
	if s.Industrial != nil && s.Industrial.FaultFlag {
		gridResilience = math.Max(0.0, gridResilience-35.0)
	}

	powerHealth := 100.0
	if s.BatteryPercent != nil {
		powerHealth = *s.BatteryPercent
	}

	return []Metric{
		{Name: "CPU Headroom", Value: round2(math.Max(0.0, 100.0-s.CPUPercent))},
		{Name: "Memory Headroom", Value: round2(math.Max(0.0, 100.0-s.MemoryPercent))},
		{Name: "Grid Resilience", Value: round2(gridResilience)},
		{Name: "Power Health", Value: round2(clamp100(powerHealth))},
		{Name: "Decision Stability", Value: round2(clamp100(stability * 100.0))},
	}
}

// DetectTransitions compares the current snapshot against the previous
// committed one. CPU and memory alerts fire only on an upward threshold
// crossing; low battery and grid failure fire every cycle while the
// condition holds.
func DetectTransitions(prev *telemetry.Snapshot, cur telemetry.Snapshot) ([]AlertDraft, []EventDraft) {
	var alerts []AlertDraft
	var events []EventDraft

	prevCPU, prevMemory := 0.0, 0.0
	if prev != nil {
		prevCPU = prev.CPUPercent
		prevMemory = prev.MemoryPercent
	}

	if cur.CPUPercent >= 90 && prevCPU < 90 {
		alerts = append(alerts, AlertDraft{
			Severity: "critical",
			Title:    "CPU Pressure Critical",
			Message:  fmt.Sprintf("CPU usage reached %.1f%%", cur.CPUPercent),
		})
		events = append(events, EventDraft{
			Type:    "ERROR",
			Message: fmt.Sprintf("cpu_critical threshold_crossed %.1f%%", cur.CPUPercent),
		})
	}

	if cur.MemoryPercent >= 90 && prevMemory < 90 {
		alerts = append(alerts, AlertDraft{
			Severity: "warning",
			Title:    "Memory Pressure High",
			Message:  fmt.Sprintf("Memory usage reached %.1f%%", cur.MemoryPercent),
		})
	}

	if cur.BatteryPercent != nil && *cur.BatteryPercent <= 20 {
		alerts = append(alerts, AlertDraft{
			Severity: "warning",
			Title:    "Low Battery Detected",
			Message:  fmt.Sprintf("Battery at %.1f%%", *cur.BatteryPercent),
		})
	}

	if cur.Industrial != nil && cur.Industrial.FaultFlag {
		alerts = append(alerts, AlertDraft{
			Severity: "critical",
			Title:    "Grid Failure Simulation Active",
			Message:  "Grid status is DOWN - failover path engaged",
		})
		events = append(events, EventDraft{
			Type:    "ERROR",
			Message: "grid_failure detected; failover policy recommended",
		})
	}

	return alerts, events
}

// ScanSummary is the informational event appended once per cycle regardless
// of alert state.
func ScanSummary(s telemetry.Snapshot, score float64) EventDraft {
	return EventDraft{
		Type: "INFO",
		Message: fmt.Sprintf("scan_complete mode=%s scenario=%s cpu=%.1f%% mem=%.1f%% grid=%.2f score=%.1f",
			s.ScanMode, s.Scenario, s.CPUPercent, s.MemoryPercent, s.GridLoad(), score),
	}
}

func clamp100(v float64) float64 {
	return math.Max(0.0, math.Min(100.0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
