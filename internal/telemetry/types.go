// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"hash/fnv"
	"math"
	"time"
)

// Snapshot is one cycle's consolidated telemetry reading. It is immutable
// once produced; the runtime hands out copies, never internal references.
type Snapshot struct {
	Timestamp      time.Time          `json:"timestamp"`
	Hostname       string             `json:"hostname"`
	Platform       string             `json:"platform"`
	CPUPercent     float64            `json:"cpu_percent"`
	MemoryPercent  float64            `json:"memory_percent"`
	DiskPercent    float64            `json:"disk_percent"`
	BatteryPercent *float64           `json:"battery_percent"`
	PowerPlugged   *bool              `json:"power_plugged"`
	ProcessCount   int                `json:"process_count"`
	FaultFlag      bool               `json:"fault_flag"`
	GridStatus     string             `json:"grid_status"`
	ScanMode       string             `json:"scan_mode,omitempty"`
	Scenario       string             `json:"scenario,omitempty"`
	Industrial     *IndustrialMetrics `json:"industrial_metrics,omitempty"`
}

// IndustrialMetrics are the derived plant-level figures computed from a
// snapshot's raw resource percentages.
type IndustrialMetrics struct {
	SiteID         string  `json:"site_id"`
	EnergyUsageKWh float64 `json:"energy_usage_kwh"`
	ThermalIndexC  float64 `json:"thermal_index_c"`
	GridLoad       float64 `json:"grid_load"`
	GridStatus     string  `json:"grid_status"`
	FaultFlag      bool    `json:"fault_flag"`
}

// GridLoad returns the industrial grid load fraction, falling back to a
// CPU-derived estimate when industrial metrics are not attached yet.
func (s Snapshot) GridLoad() float64 {
	if s.Industrial != nil {
		return s.Industrial.GridLoad
	}
	return math.Min(1.0, math.Max(0.0, s.CPUPercent/100.0))
}

// DeriveIndustrial computes the industrial metric view of a snapshot.
// Energy usage has a 5 kWh floor, grid load is clamped to [0.05, 0.99], and
// an active fault adds 9C to the thermal index.
func DeriveIndustrial(s Snapshot) IndustrialMetrics {
	energy := math.Max(5.0, round2(s.CPUPercent*0.85+s.MemoryPercent*0.45+s.DiskPercent*0.25))
	thermal := 24.0 + s.CPUPercent*0.36
	if s.FaultFlag {
		thermal += 9.0
	}
	gridLoad := (s.CPUPercent*0.75 + s.MemoryPercent*0.25) / 100.0
	gridLoad = round2(math.Min(0.99, math.Max(0.05, gridLoad)))

	status := s.GridStatus
	if status == "" {
		status = "healthy"
	}

	return IndustrialMetrics{
		SiteID:         siteID(s.Hostname),
		EnergyUsageKWh: energy,
		ThermalIndexC:  round2(thermal),
		GridLoad:       gridLoad,
		GridStatus:     status,
		FaultFlag:      s.FaultFlag,
	}
}

// siteID maps a hostname onto one of seven stable plant identifiers.
func siteID(hostname string) string {
	if hostname == "" {
		hostname = "edge-node"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	return "plant-" + string(rune('1'+h.Sum32()%7))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampPercent(v float64) float64 {
	return math.Max(0.0, math.Min(100.0, v))
}
