// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package optimize implements the constrained load-reduction computation:
// it turns a predicted load into a bounded, floor-preserving reduction
// recommendation with a cost estimate and a coarse stability score.
package optimize

import (
	"math"
	"sync"
	"time"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// maxReductionPercent caps any recommendation.
const maxReductionPercent = 50.0

// Config carries the optimization policy knobs.
type Config struct {
	DefaultReductionPercent float64
	MaxAllowedLoad          float64
	MinAllowedLoad          float64
	EnergyCostPerUnit       float64
	CostWeight              float64
	StabilityWeight         float64
}

// DefaultConfig returns the stock policy.
func DefaultConfig() Config {
	return Config{
		DefaultReductionPercent: 10.0,
		MaxAllowedLoad:          100.0,
		MinAllowedLoad:          50.0,
		EnergyCostPerUnit:       0.15,
		CostWeight:              0.6,
		StabilityWeight:         0.4,
	}
}

// Result is one optimization outcome. The optimizer retains only the latest.
type Result struct {
	RecommendedReduction float64   `json:"recommended_reduction"`
	PredictedLoad        float64   `json:"predicted_load"`
	CostSavingEstimate   float64   `json:"cost_saving_estimate"`
	StabilityScore       float64   `json:"stability_score"`
	Timestamp            time.Time `json:"optimization_timestamp"`
	Status               string    `json:"status"`
}

// Optimizer computes constrained reduction recommendations.
type Optimizer struct {
	cfg Config

	mu       sync.Mutex
	lastTime time.Time
	last     *Result
}

// New creates an optimizer with the given policy.
func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// OptimizeLoad produces a reduction recommendation for the current and
// predicted loads. Any failure yields a degraded result with status
// "failed" and a zero reduction; it never panics through to the caller.
func (o *Optimizer) OptimizeLoad(currentLoad, predictedLoad float64) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{Status: StatusFailed}
		}
	}()

	if !isFinite(currentLoad) || !isFinite(predictedLoad) || currentLoad < 0 {
		return Result{Status: StatusFailed}
	}

	reduction := o.requiredReduction(predictedLoad)
	reduction = o.applyConstraints(currentLoad, reduction)

	res = Result{
		RecommendedReduction: reduction,
		PredictedLoad:        predictedLoad,
		CostSavingEstimate:   o.costSaving(reduction, currentLoad),
		StabilityScore:       StabilityScore(reduction),
		Timestamp:            time.Now().UTC(),
		Status:               StatusOK,
	}

	o.mu.Lock()
	o.last = &res
	o.lastTime = res.Timestamp
	o.mu.Unlock()
	return res
}

// requiredReduction derives the raw reduction percentage. Overload demands
// at least the proportional trim; otherwise a light default trim applies.
func (o *Optimizer) requiredReduction(predictedLoad float64) float64 {
	if predictedLoad > o.cfg.MaxAllowedLoad {
		overload := predictedLoad - o.cfg.MaxAllowedLoad
		percent := overload / predictedLoad * 100.0
		return math.Max(percent, o.cfg.DefaultReductionPercent)
	}
	return o.cfg.DefaultReductionPercent * 0.3
}

// applyConstraints bounds the reduction so the reduced load never breaches
// the configured floor, and caps it at 50%.
func (o *Optimizer) applyConstraints(currentLoad, reduction float64) float64 {
	if currentLoad == 0 {
		return 0
	}

	reducedLoad := currentLoad * (1.0 - reduction/100.0)
	if reducedLoad < o.cfg.MinAllowedLoad {
		safe := (currentLoad - o.cfg.MinAllowedLoad) / currentLoad * 100.0
		return math.Max(safe, 0)
	}
	return math.Min(reduction, maxReductionPercent)
}

func (o *Optimizer) costSaving(reduction, currentLoad float64) float64 {
	energySaved := currentLoad * (reduction / 100.0)
	return energySaved * o.cfg.EnergyCostPerUnit
}

// StabilityScore bands a reduction into three risk tiers.
func StabilityScore(reduction float64) float64 {
	if reduction < 10 {
		return 0.95
	}
	if reduction < 25 {
		return 0.85
	}
	return 0.70
}

// MultiObjectiveScore linearly scalarizes cost saving against stability for
// downstream ranking; the scan loop itself does not consume it.
func (o *Optimizer) MultiObjectiveScore(costSaving, stabilityScore float64) float64 {
	return costSaving*o.cfg.CostWeight + stabilityScore*o.cfg.StabilityWeight
}

// LastResult returns the most recent result and its timestamp, or nil when
// no optimization has run yet.
func (o *Optimizer) LastResult() (*Result, time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil, time.Time{}
	}
	cp := *o.last
	return &cp, o.lastTime
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
