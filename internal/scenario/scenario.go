// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package scenario overrides snapshot fields to emulate fault and load
// conditions for a bounded number of scan cycles.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gridpulse/internal/telemetry"
)

const (
	Normal      = "normal"
	PeakLoad    = "peak_load"
	LowLoad     = "low_load"
	GridFailure = "grid_failure"
)

// MaxCycles caps how long an injected scenario may run.
const MaxCycles = 240

// ErrUnsupported is returned for scenario names outside the known set.
var ErrUnsupported = errors.New("unsupported scenario")

var valid = map[string]bool{
	Normal:      true,
	PeakLoad:    true,
	LowLoad:     true,
	GridFailure: true,
}

// Normalize lowercases and trims a scenario name and validates it.
func Normalize(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !valid[n] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	return n, nil
}

// Names returns the supported scenario names, sorted.
func Names() []string {
	names := make([]string, 0, len(valid))
	for n := range valid {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ClampCycles bounds a requested cycle count to [0, MaxCycles].
func ClampCycles(cycles int) int {
	if cycles < 0 {
		return 0
	}
	if cycles > MaxCycles {
		return MaxCycles
	}
	return cycles
}

// Apply returns a copy of the snapshot with the scenario's deterministic
// override in place. An unknown or normal scenario clears the fault flag and
// marks the grid healthy.
func Apply(s telemetry.Snapshot, name string) telemetry.Snapshot {
	out := s

	switch name {
	case PeakLoad:
		out.CPUPercent = math.Max(92.0, out.CPUPercent)
		out.MemoryPercent = math.Max(88.0, out.MemoryPercent)
		out.DiskPercent = math.Max(78.0, out.DiskPercent)
		if out.ProcessCount < 450 {
			out.ProcessCount = 450
		}
		out.FaultFlag = false
		out.GridStatus = "stressed"
	case LowLoad:
		out.CPUPercent = math.Min(18.0, out.CPUPercent)
		out.MemoryPercent = math.Min(40.0, out.MemoryPercent)
		if out.ProcessCount < 30 {
			out.ProcessCount = 30
		} else if out.ProcessCount > 120 {
			out.ProcessCount = 120
		}
		out.FaultFlag = false
		out.GridStatus = "relaxed"
	case GridFailure:
		out.CPUPercent = math.Max(72.0, out.CPUPercent)
		out.MemoryPercent = math.Max(70.0, out.MemoryPercent)
		out.FaultFlag = true
		out.GridStatus = "down"
	default:
		out.FaultFlag = false
		out.GridStatus = "healthy"
	}
	return out
}
