// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"fmt"
	"math"
	"time"
)

// edgeWeight is the live share of every blended numeric field.
const edgeWeight = 0.65

// Blend combines a live edge snapshot with a simulated one for HYBRID mode.
// Numeric fields are weighted edge*0.65 + sim*0.35; optional fields prefer
// the edge value when present; the fault flag is the OR of both sides; grid
// status prefers edge, then sim, then "healthy".
func Blend(edge, sim Snapshot) Snapshot {
	hostname := edge.Hostname
	if hostname == "" {
		hostname = sim.Hostname
	}
	if hostname == "" {
		hostname = "edge-hybrid"
	}

	platform := edge.Platform
	if platform == "" {
		platform = "edge"
	}

	battery := edge.BatteryPercent
	if battery == nil {
		battery = sim.BatteryPercent
	}
	plugged := edge.PowerPlugged
	if plugged == nil {
		plugged = sim.PowerPlugged
	}

	gridStatus := edge.GridStatus
	if gridStatus == "" {
		gridStatus = sim.GridStatus
	}
	if gridStatus == "" {
		gridStatus = "healthy"
	}

	return Snapshot{
		Timestamp:      time.Now().UTC(),
		Hostname:       hostname,
		Platform:       fmt.Sprintf("Hybrid (%s + simulation)", platform),
		CPUPercent:     round2(blendNumber(edge.CPUPercent, sim.CPUPercent)),
		MemoryPercent:  round2(blendNumber(edge.MemoryPercent, sim.MemoryPercent)),
		DiskPercent:    round2(blendNumber(edge.DiskPercent, sim.DiskPercent)),
		BatteryPercent: battery,
		PowerPlugged:   plugged,
		ProcessCount:   int(math.Round(blendNumber(float64(edge.ProcessCount), float64(sim.ProcessCount)))),
		FaultFlag:      edge.FaultFlag || sim.FaultFlag,
		GridStatus:     gridStatus,
	}
}

func blendNumber(edgeValue, simValue float64) float64 {
	return edgeValue*edgeWeight + simValue*(1.0-edgeWeight)
}
