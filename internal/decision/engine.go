// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package decision bridges telemetry snapshots to the decision function and
// the load optimizer.
package decision

import (
	"math"
	"time"

	"gridpulse/internal/optimize"
	"gridpulse/internal/telemetry"
)

// defaultStability is assumed when a decision carries no optimized payload.
const defaultStability = 0.9

// Input is the schema the decision function expects. Occupancy is always
// at least 1.
type Input struct {
	BuildingID     int     `json:"building_id"`
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	Occupancy      int     `json:"occupancy"`
	DayOfWeek      int     `json:"day_of_week"`
	Hour           int     `json:"hour"`
	CurrentLoad    float64 `json:"current_load"`
	EnergyUsageKWh float64 `json:"energy_usage_kwh"`
	State          string  `json:"state"`
	Location       string  `json:"location"`
	FaultFlag      bool    `json:"fault_flag"`
	GridStatus     string  `json:"grid_status"`
}

// Decision is the structured payload a decision function returns.
type Decision struct {
	Action      string           `json:"action"`
	Reason      string           `json:"reason"`
	Optimized   *optimize.Result `json:"optimized_decision,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Stability returns the embedded stability score, defaulting to 0.9 when the
// optimized payload is absent or carries a value outside [0,1].
func (d Decision) Stability() float64 {
	if d.Optimized == nil {
		return defaultStability
	}
	s := d.Optimized.StabilityScore
	if s < 0 || s > 1 || math.IsNaN(s) {
		return defaultStability
	}
	return s
}

// Engine is the external decision function contract.
type Engine interface {
	GenerateDecision(in Input) Decision
}

// FromSnapshot projects a snapshot into the decision input schema. The
// projection is pure: the same snapshot and clock always yield the same
// input.
func FromSnapshot(s telemetry.Snapshot, now time.Time) Input {
	cpu := s.CPUPercent
	memory := s.MemoryPercent

	temperature := math.Max(25.0, math.Min(85.0, 30.0+cpu*0.45))
	energy := math.Max(1.0, round2(cpu*0.55+memory*0.25))
	location := s.Hostname
	if location == "" {
		location = "local-machine"
	}
	if s.Industrial != nil {
		temperature = s.Industrial.ThermalIndexC
		energy = s.Industrial.EnergyUsageKWh
		location = s.Industrial.SiteID
	}
	humidity := math.Max(30.0, math.Min(85.0, 35.0+memory*0.35))

	gridStatus := s.GridStatus
	if gridStatus == "" {
		gridStatus = "healthy"
	}

	state := "normal"
	if s.FaultFlag || gridStatus == "down" {
		state = "grid_failure"
	} else if cpu >= 85 {
		state = "high_load"
	}

	occupancy := s.ProcessCount
	if occupancy < 1 {
		occupancy = 1
	}

	return Input{
		BuildingID:     1,
		Temperature:    round2(temperature),
		Humidity:       round2(humidity),
		Occupancy:      occupancy,
		DayOfWeek:      int(now.Weekday()),
		Hour:           now.Hour(),
		CurrentLoad:    round2(s.GridLoad() * 100.0),
		EnergyUsageKWh: energy,
		State:          state,
		Location:       location,
		FaultFlag:      s.FaultFlag,
		GridStatus:     gridStatus,
	}
}

// HeuristicEngine is the built-in decision function: it forecasts load from
// the input's operating state and daypart, runs the optimizer, and wraps the
// outcome as a decision.
type HeuristicEngine struct {
	opt *optimize.Optimizer
}

// NewHeuristicEngine builds the default engine around an optimizer.
func NewHeuristicEngine(opt *optimize.Optimizer) *HeuristicEngine {
	if opt == nil {
		opt = optimize.New(optimize.DefaultConfig())
	}
	return &HeuristicEngine{opt: opt}
}

// GenerateDecision always returns a well-formed decision; optimization
// failures show up as a degraded optimized payload, never as an error.
func (e *HeuristicEngine) GenerateDecision(in Input) Decision {
	predicted := in.CurrentLoad * forecastFactor(in)
	res := e.opt.OptimizeLoad(in.CurrentLoad, predicted)

	action := "hold"
	reason := "load within policy bounds"
	switch {
	case res.Status == optimize.StatusFailed:
		action = "hold"
		reason = "optimization unavailable"
	case in.State == "grid_failure":
		action = "shed_load"
		reason = "grid failure state"
	case res.RecommendedReduction >= 10:
		action = "shed_load"
		reason = "predicted load above allowance"
	}

	return Decision{
		Action:      action,
		Reason:      reason,
		Optimized:   &res,
		GeneratedAt: time.Now().UTC(),
	}
}

func forecastFactor(in Input) float64 {
	switch in.State {
	case "grid_failure":
		return 1.25
	case "high_load":
		return 1.15
	}
	if in.Hour >= 8 && in.Hour < 18 {
		return 1.05
	}
	return 0.95
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
