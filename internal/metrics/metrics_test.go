// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ScanCycles.Inc()
	m.ScanErrors.Inc()
	m.AlertsRaised.WithLabelValues("critical").Inc()
	m.AlertsRaised.WithLabelValues("warning").Add(2)
	m.OptimizationScore.Set(77.5)
	m.CPUPercent.Set(42)
	m.MemoryPercent.Set(55)
	m.GridLoad.Set(0.61)

	if got := testutil.ToFloat64(m.ScanCycles); got != 1 {
		t.Fatalf("scan cycles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AlertsRaised.WithLabelValues("warning")); got != 2 {
		t.Fatalf("warning alerts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OptimizationScore); got != 77.5 {
		t.Fatalf("score gauge = %v, want 77.5", got)
	}
	if got := testutil.ToFloat64(m.GridLoad); got != 0.61 {
		t.Fatalf("grid load gauge = %v, want 0.61", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) != 7 {
		t.Fatalf("expected 7 metric families, got %d", len(families))
	}
}
