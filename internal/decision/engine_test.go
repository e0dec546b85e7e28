// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package decision

import (
	"math"
	"testing"
	"time"

	"gridpulse/internal/optimize"
	"gridpulse/internal/telemetry"
)

func TestStabilityDefault(t *testing.T) {
	if got := (Decision{}).Stability(); got != 0.9 {
		t.Fatalf("missing payload stability = %v, want 0.9", got)
	}

	d := Decision{Optimized: &optimize.Result{StabilityScore: 1.5}}
	if got := d.Stability(); got != 0.9 {
		t.Fatalf("out-of-range stability = %v, want 0.9", got)
	}

	d = Decision{Optimized: &optimize.Result{StabilityScore: math.NaN()}}
	if got := d.Stability(); got != 0.9 {
		t.Fatalf("NaN stability = %v, want 0.9", got)
	}

	d = Decision{Optimized: &optimize.Result{StabilityScore: 0.85}}
	if got := d.Stability(); got != 0.85 {
		t.Fatalf("valid stability = %v, want 0.85", got)
	}
}

func TestFromSnapshotBasics(t *testing.T) {
	now := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	s := telemetry.Snapshot{Hostname: "edge-1", CPUPercent: 50, MemoryPercent: 40, ProcessCount: 200}

	in := FromSnapshot(s, now)
	if in.BuildingID != 1 {
		t.Fatalf("building id = %d, want 1", in.BuildingID)
	}
	if in.Occupancy != 200 {
		t.Fatalf("occupancy = %d, want 200", in.Occupancy)
	}
	if in.DayOfWeek != int(now.Weekday()) || in.Hour != 14 {
		t.Fatalf("clock projection wrong: day %d hour %d", in.DayOfWeek, in.Hour)
	}
	if in.CurrentLoad != 50.0 {
		t.Fatalf("current load = %v, want 50 (cpu fallback)", in.CurrentLoad)
	}
	if in.State != "normal" {
		t.Fatalf("state = %q, want normal", in.State)
	}
	if in.Location != "edge-1" {
		t.Fatalf("location = %q, want edge-1", in.Location)
	}
}

func TestFromSnapshotOccupancyFloor(t *testing.T) {
	in := FromSnapshot(telemetry.Snapshot{ProcessCount: 0}, time.Now())
	if in.Occupancy != 1 {
		t.Fatalf("occupancy = %d, want floor of 1", in.Occupancy)
	}
}

func TestFromSnapshotStates(t *testing.T) {
	now := time.Now()

	in := FromSnapshot(telemetry.Snapshot{FaultFlag: true}, now)
	if in.State != "grid_failure" {
		t.Fatalf("fault state = %q, want grid_failure", in.State)
	}

	in = FromSnapshot(telemetry.Snapshot{GridStatus: "down"}, now)
	if in.State != "grid_failure" {
		t.Fatalf("down-grid state = %q, want grid_failure", in.State)
	}

	in = FromSnapshot(telemetry.Snapshot{CPUPercent: 90}, now)
	if in.State != "high_load" {
		t.Fatalf("high cpu state = %q, want high_load", in.State)
	}
}

func TestFromSnapshotPrefersIndustrial(t *testing.T) {
	s := telemetry.Snapshot{
		CPUPercent: 50,
		Industrial: &telemetry.IndustrialMetrics{
			SiteID:         "plant-3",
			EnergyUsageKWh: 88.5,
			ThermalIndexC:  42.0,
			GridLoad:       0.6,
		},
	}
	in := FromSnapshot(s, time.Now())
	if in.Location != "plant-3" {
		t.Fatalf("location = %q, want plant-3", in.Location)
	}
	if in.EnergyUsageKWh != 88.5 || in.Temperature != 42.0 {
		t.Fatalf("industrial figures not used: %+v", in)
	}
	if in.CurrentLoad != 60.0 {
		t.Fatalf("current load = %v, want 60 (industrial grid load)", in.CurrentLoad)
	}
}

func TestFromSnapshotPure(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	s := telemetry.Snapshot{Hostname: "edge-1", CPUPercent: 33.3, MemoryPercent: 44.4, ProcessCount: 77}
	if FromSnapshot(s, now) != FromSnapshot(s, now) {
		t.Fatal("projection must be deterministic for a fixed snapshot and clock")
	}
}

func TestForecastFactor(t *testing.T) {
	for _, tc := range []struct {
		in   Input
		want float64
	}{
		{Input{State: "grid_failure"}, 1.25},
		{Input{State: "high_load"}, 1.15},
		{Input{State: "normal", Hour: 12}, 1.05},
		{Input{State: "normal", Hour: 22}, 0.95},
		{Input{State: "normal", Hour: 3}, 0.95},
	} {
		if got := forecastFactor(tc.in); got != tc.want {
			t.Errorf("forecastFactor(%+v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGenerateDecisionHold(t *testing.T) {
	e := NewHeuristicEngine(nil)

	// load 40 at night forecasts 38: no overload, light trim below 10
	d := e.GenerateDecision(Input{State: "normal", Hour: 2, CurrentLoad: 40})
	if d.Action != "hold" {
		t.Fatalf("action = %q, want hold", d.Action)
	}
	if d.Optimized == nil || d.Optimized.Status != optimize.StatusOK {
		t.Fatalf("expected an ok optimized payload, got %+v", d.Optimized)
	}
	if d.GeneratedAt.IsZero() {
		t.Fatal("expected a generation timestamp")
	}
}

func TestGenerateDecisionShedsOnGridFailure(t *testing.T) {
	e := NewHeuristicEngine(nil)
	d := e.GenerateDecision(Input{State: "grid_failure", CurrentLoad: 60})
	if d.Action != "shed_load" {
		t.Fatalf("action = %q, want shed_load", d.Action)
	}
}

func TestGenerateDecisionShedsOnOverload(t *testing.T) {
	e := NewHeuristicEngine(nil)

	// 120 * 1.15 forecast is well above the 100 allowance
	d := e.GenerateDecision(Input{State: "high_load", CurrentLoad: 120})
	if d.Action != "shed_load" {
		t.Fatalf("action = %q, want shed_load", d.Action)
	}
	if d.Optimized.RecommendedReduction < 10 {
		t.Fatalf("expected a reduction of at least 10%%, got %v", d.Optimized.RecommendedReduction)
	}
}

func TestGenerateDecisionDegradedOptimization(t *testing.T) {
	e := NewHeuristicEngine(nil)
	d := e.GenerateDecision(Input{State: "normal", CurrentLoad: math.NaN()})
	if d.Action != "hold" {
		t.Fatalf("action = %q, want hold on failure", d.Action)
	}
	if d.Optimized == nil || d.Optimized.Status != optimize.StatusFailed {
		t.Fatalf("expected failed optimized payload, got %+v", d.Optimized)
	}
}
