// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Simulator is the digital-twin side of the runtime: a bounded random walk
// over the snapshot fields. Each Simulator owns its generator, so a fixed
// seed yields a reproducible walk.
type Simulator struct {
	rng *rand.Rand

	cpu      float64
	memory   float64
	diskUsed float64
	battery  float64
	plugged  bool
	procs    int
}

// NewSimulator creates a simulator. Seed 0 selects a time-based seed.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng:      rand.New(rand.NewSource(seed)),
		cpu:      38.0,
		memory:   52.0,
		diskUsed: 48.0,
		battery:  78.0,
		plugged:  false,
		procs:    190,
	}
}

// Collect advances the walk one step and returns the resulting snapshot,
// tagged with the synthetic twin identity.
func (s *Simulator) Collect() Snapshot {
	s.cpu = s.bounded(s.cpu, 7.0, 8.0, 96.0)
	s.memory = s.bounded(s.memory, 4.0, 20.0, 96.0)
	s.diskUsed = s.bounded(s.diskUsed, 1.2, 20.0, 98.0)
	s.procs = clampInt(s.procs+s.rng.Intn(21)-8, 40, 600)
	s.stepBattery()

	battery := round2(s.battery)
	plugged := s.plugged
	return Snapshot{
		Timestamp:      time.Now().UTC(),
		Hostname:       "digital-twin-edge",
		Platform:       "Industrial Digital Twin",
		CPUPercent:     round2(s.cpu),
		MemoryPercent:  round2(s.memory),
		DiskPercent:    round2(s.diskUsed),
		BatteryPercent: &battery,
		PowerPlugged:   &plugged,
		ProcessCount:   s.procs,
		FaultFlag:      false,
		GridStatus:     "healthy",
	}
}

// stepBattery drifts charge up while plugged and down while on battery,
// occasionally flipping the plug state near either extreme.
func (s *Simulator) stepBattery() {
	if s.plugged {
		s.battery = math.Min(100.0, s.battery+s.uniform(0.1, 0.7))
		if s.battery >= 96 && s.rng.Float64() < 0.2 {
			s.plugged = false
		}
	} else {
		s.battery = math.Max(8.0, s.battery-s.uniform(0.2, 0.9))
		if s.battery <= 18 && s.rng.Float64() < 0.35 {
			s.plugged = true
		}
	}
}

func (s *Simulator) bounded(value, delta, low, high float64) float64 {
	next := value + s.uniform(-delta, delta)
	return math.Max(low, math.Min(high, next))
}

func (s *Simulator) uniform(low, high float64) float64 {
	return low + s.rng.Float64()*(high-low)
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
