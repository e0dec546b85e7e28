// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package metrics exposes the scan loop's counters and gauges to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the runtime's Prometheus instruments.
type Metrics struct {
	ScanCycles        prometheus.Counter
	ScanErrors        prometheus.Counter
	AlertsRaised      *prometheus.CounterVec
	OptimizationScore prometheus.Gauge
	CPUPercent        prometheus.Gauge
	MemoryPercent     prometheus.Gauge
	GridLoad          prometheus.Gauge
}

// New creates and registers the instrument set on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScanCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridpulse_scan_cycles_total",
			Help: "Completed scan iterations.",
		}),
		ScanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridpulse_scan_errors_total",
			Help: "Scan iterations that recorded a telemetry error.",
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpulse_alerts_total",
			Help: "Alerts raised, by severity.",
		}, []string{"severity"}),
		OptimizationScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_optimization_score",
			Help: "Latest optimization score in [5,100].",
		}),
		CPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_cpu_percent",
			Help: "Latest snapshot CPU usage percentage.",
		}),
		MemoryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_memory_percent",
			Help: "Latest snapshot memory usage percentage.",
		}),
		GridLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_grid_load",
			Help: "Latest derived grid load fraction in [0,1].",
		}),
	}

	reg.MustRegister(
		m.ScanCycles,
		m.ScanErrors,
		m.AlertsRaised,
		m.OptimizationScore,
		m.CPUPercent,
		m.MemoryPercent,
		m.GridLoad,
	)
	return m
}
