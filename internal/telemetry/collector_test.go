// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"testing"
	"time"
)

// TestHostCollectorCollect ensures a live collection yields a usable snapshot
// regardless of which fallback tier served it.
func TestHostCollectorCollect(t *testing.T) {
	c := NewHostCollector()
	c.CPUInterval = 50 * time.Millisecond

	snap, err := c.Collect()
	if err != nil {
		t.Logf("collect degraded: %v", err)
	}
	if snap.Timestamp.IsZero() {
		t.Fatal("snapshot missing timestamp")
	}
	if snap.CPUPercent < 0 || snap.CPUPercent > 100 {
		t.Fatalf("cpu percent out of range: %v", snap.CPUPercent)
	}
	if snap.MemoryPercent < 0 || snap.MemoryPercent > 100 {
		t.Fatalf("memory percent out of range: %v", snap.MemoryPercent)
	}
	t.Logf("collected: cpu=%v mem=%v disk=%v procs=%d", snap.CPUPercent, snap.MemoryPercent, snap.DiskPercent, snap.ProcessCount)
}

func TestFallbackSnapshot(t *testing.T) {
	c := NewHostCollector()
	snap := c.fallbackSnapshot()
	if snap.Timestamp.IsZero() {
		t.Fatal("fallback snapshot missing timestamp")
	}
	if snap.CPUPercent < 0 || snap.CPUPercent > 100 {
		t.Fatalf("fallback cpu out of range: %v", snap.CPUPercent)
	}
	if snap.FaultFlag {
		t.Fatal("fallback snapshot must not report a fault")
	}
}
