// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"math"
	"strings"
	"testing"
)

func TestBlendWeightsNumerics(t *testing.T) {
	edge := Snapshot{Hostname: "laptop", Platform: "Linux", CPUPercent: 80, MemoryPercent: 60, DiskPercent: 40, ProcessCount: 200}
	sim := Snapshot{Hostname: "digital-twin-edge", CPUPercent: 20, MemoryPercent: 40, DiskPercent: 80, ProcessCount: 100}

	out := Blend(edge, sim)

	wantCPU := 80*0.65 + 20*0.35
	if math.Abs(out.CPUPercent-wantCPU) > 0.01 {
		t.Fatalf("blended cpu = %v, want %v", out.CPUPercent, wantCPU)
	}
	wantMem := 60*0.65 + 40*0.35
	if math.Abs(out.MemoryPercent-wantMem) > 0.01 {
		t.Fatalf("blended memory = %v, want %v", out.MemoryPercent, wantMem)
	}
	wantProcs := int(math.Round(200*0.65 + 100*0.35))
	if out.ProcessCount != wantProcs {
		t.Fatalf("blended process count = %d, want %d", out.ProcessCount, wantProcs)
	}
}

func TestBlendIdentityAndPlatform(t *testing.T) {
	out := Blend(Snapshot{Hostname: "laptop", Platform: "Linux"}, Snapshot{Hostname: "digital-twin-edge"})
	if out.Hostname != "laptop" {
		t.Fatalf("expected edge hostname to win, got %q", out.Hostname)
	}
	if !strings.HasPrefix(out.Platform, "Hybrid (") {
		t.Fatalf("expected hybrid platform tag, got %q", out.Platform)
	}

	out = Blend(Snapshot{}, Snapshot{Hostname: "digital-twin-edge"})
	if out.Hostname != "digital-twin-edge" {
		t.Fatalf("expected sim hostname fallback, got %q", out.Hostname)
	}

	out = Blend(Snapshot{}, Snapshot{})
	if out.Hostname != "edge-hybrid" {
		t.Fatalf("expected edge-hybrid fallback, got %q", out.Hostname)
	}
}

func TestBlendOptionalFieldsPreferEdge(t *testing.T) {
	edgeBattery := 55.0
	simBattery := 90.0
	plugged := true

	out := Blend(
		Snapshot{BatteryPercent: &edgeBattery},
		Snapshot{BatteryPercent: &simBattery, PowerPlugged: &plugged},
	)
	if out.BatteryPercent == nil || *out.BatteryPercent != 55.0 {
		t.Fatalf("expected edge battery 55, got %v", out.BatteryPercent)
	}
	// edge had no plug state, sim's fills in
	if out.PowerPlugged == nil || !*out.PowerPlugged {
		t.Fatal("expected sim plug state to fill the gap")
	}
}

func TestBlendFaultAndGridStatus(t *testing.T) {
	out := Blend(Snapshot{FaultFlag: false}, Snapshot{FaultFlag: true, GridStatus: "down"})
	if !out.FaultFlag {
		t.Fatal("fault flag should be the OR of both sides")
	}
	if out.GridStatus != "down" {
		t.Fatalf("expected sim grid status fallback, got %q", out.GridStatus)
	}

	out = Blend(Snapshot{GridStatus: "stressed"}, Snapshot{GridStatus: "down"})
	if out.GridStatus != "stressed" {
		t.Fatalf("expected edge grid status to win, got %q", out.GridStatus)
	}

	out = Blend(Snapshot{}, Snapshot{})
	if out.GridStatus != "healthy" {
		t.Fatalf("expected healthy default, got %q", out.GridStatus)
	}
}
