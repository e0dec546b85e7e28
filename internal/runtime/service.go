// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package runtime owns the scan loop and all shared state: mode, scenario,
// ring buffers, and the latest aggregated payload.
package runtime

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gridpulse/internal/decision"
	"gridpulse/internal/health"
	"gridpulse/internal/metrics"
	"gridpulse/internal/power"
	"gridpulse/internal/scenario"
	"gridpulse/internal/stream"
	"gridpulse/internal/telemetry"
)

// DefaultScanInterval is the loop cadence when none is configured.
const DefaultScanInterval = 5 * time.Second

// DefaultScenarioCycles is how long an injected scenario runs when the
// caller does not say.
const DefaultScenarioCycles = 12

// Options configures a Service. Zero fields fall back to working defaults.
type Options struct {
	Interval  time.Duration
	Collector telemetry.Collector
	Simulator *telemetry.Simulator
	Engine    decision.Engine
	Power     *power.Controller
	Metrics   *metrics.Metrics
	Hub       *stream.Hub
	AutoApply bool
}

// Service runs the periodic scan loop and serializes all access to the
// shared runtime state. A scan-iteration lock keeps ticks and manual
// rescans from overlapping; a finer state lock guards the buffers and
// flags and is never held across a blocking call.
type Service struct {
	interval  time.Duration
	collector telemetry.Collector
	simulator *telemetry.Simulator
	engine    decision.Engine
	power     *power.Controller
	metrics   *metrics.Metrics
	hub       *stream.Hub

	scanMu sync.Mutex
	mu     sync.Mutex

	running            bool
	stop               chan struct{}
	mode               Mode
	scenarioName       string
	scenarioCyclesLeft int
	autoApply          bool

	history *Ring[HistoryRecord]
	events  *Ring[Event]
	alerts  *Ring[Alert]

	latestSnapshot *telemetry.Snapshot
	latestDecision *decision.Decision
	latestHealth   []health.Metric
	prevSnapshot   *telemetry.Snapshot
	lastScanErr    string

	nextEventID int64
	nextAlertID int64
}

// New builds a service. It does not start the loop.
func New(o Options) *Service {
	if o.Interval <= 0 {
		o.Interval = DefaultScanInterval
	}
	if o.Collector == nil {
		o.Collector = telemetry.NewHostCollector()
	}
	if o.Simulator == nil {
		o.Simulator = telemetry.NewSimulator(0)
	}
	if o.Engine == nil {
		o.Engine = decision.NewHeuristicEngine(nil)
	}
	if o.Power == nil {
		o.Power = power.NewController()
	}

	return &Service{
		interval:     o.Interval,
		collector:    o.Collector,
		simulator:    o.Simulator,
		engine:       o.Engine,
		power:        o.Power,
		metrics:      o.Metrics,
		hub:          o.Hub,
		mode:         ModeLiveEdge,
		scenarioName: scenario.Normal,
		autoApply:    o.AutoApply,
		history:      NewRing[HistoryRecord](historyCapacity),
		events:       NewRing[Event](eventCapacity),
		alerts:       NewRing[Alert](alertCapacity),
	}
}

// Start launches the background scan loop. Calling Start on a running
// service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	go s.loop(stop)
	log.Println("[RUNTIME] scan loop started")
}

// Stop signals the loop to exit. An in-flight cycle completes first.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	log.Println("[RUNTIME] scan loop stopped")
}

func (s *Service) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ScanNow()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ScanNow()
		}
	}
}

// ScanNow runs one scan iteration synchronously. Concurrent callers are
// serialized; a panicking iteration is recorded as the last scan error and
// never escapes.
func (s *Service) ScanNow() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[RUNTIME] scan iteration panicked: %v", r)
			s.mu.Lock()
			s.lastScanErr = fmt.Sprintf("scan iteration: %v", r)
			s.mu.Unlock()
		}
	}()
	s.scanIteration()
}

// SetMode switches the telemetry source selection and triggers an immediate
// rescan. Unrecognized modes fail with ErrUnsupportedMode and leave state
// unchanged.
func (s *Service) SetMode(mode string) error {
	normalized := Mode(strings.ToUpper(strings.TrimSpace(mode)))
	switch normalized {
	case ModeLiveEdge, ModeSimulation, ModeHybrid:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}

	s.mu.Lock()
	s.mode = normalized
	s.appendEventLocked("INFO", "runtime_mode_changed "+string(normalized), timeLabel(time.Now().UTC()))
	s.mu.Unlock()

	s.ScanNow()
	return nil
}

// SetScenario injects a scenario for a bounded number of cycles and
// triggers an immediate rescan. "normal" cancels any active scenario.
func (s *Service) SetScenario(name string, cycles int) error {
	normalized, err := scenario.Normalize(name)
	if err != nil {
		return err
	}

	cycles = scenario.ClampCycles(cycles)
	eventType := "WARN"
	if normalized == scenario.Normal {
		eventType = "INFO"
	}

	s.mu.Lock()
	s.scenarioName = normalized
	if normalized == scenario.Normal {
		s.scenarioCyclesLeft = 0
	} else {
		s.scenarioCyclesLeft = max(1, cycles)
	}
	s.appendEventLocked(eventType, "scenario_set "+normalized, timeLabel(time.Now().UTC()))
	s.mu.Unlock()

	s.ScanNow()
	return nil
}

// SetAutoApply toggles whether picked power profiles are applied to the
// host.
func (s *Service) SetAutoApply(enabled bool) {
	s.mu.Lock()
	s.autoApply = enabled
	s.mu.Unlock()
}

// HealthStatus returns the service flags, last scan error and current
// mode/scenario.
func (s *Service) HealthStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// LatestPayload assembles the dashboard view with bounded slices of the
// three ring buffers. Non-positive limits fall back to 30/30/10.
func (s *Service) LatestPayload(historyLimit, eventLimit, alertLimit int) Payload {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	if eventLimit <= 0 {
		eventLimit = 30
	}
	if alertLimit <= 0 {
		alertLimit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var snap *telemetry.Snapshot
	if s.latestSnapshot != nil {
		cp := *s.latestSnapshot
		snap = &cp
	}
	var dec *decision.Decision
	if s.latestDecision != nil {
		cp := *s.latestDecision
		dec = &cp
	}
	rh := make([]health.Metric, len(s.latestHealth))
	copy(rh, s.latestHealth)

	return Payload{
		Status:        "ok",
		Mode:          s.mode,
		Scenario:      s.scenarioName,
		Timestamp:     time.Now().UTC(),
		Telemetry:     snap,
		Decision:      dec,
		RuntimeHealth: rh,
		History:       s.history.Tail(historyLimit),
		Events:        s.events.Tail(eventLimit),
		Alerts:        s.alerts.Tail(alertLimit),
		ServiceHealth: ServiceHealth{
			Status:             s.statusLocked(),
			SupportedModes:     Modes(),
			SupportedScenarios: scenario.Names(),
		},
	}
}

// scanIteration runs one full cycle: collect, blend, inject, decide, score,
// act, and commit. Runs with scanMu held.
func (s *Service) scanIteration() {
	s.mu.Lock()
	mode := s.mode
	scen := s.scenarioName
	prev := s.prevSnapshot
	auto := s.autoApply
	s.mu.Unlock()

	edge, collectErr := s.collector.Collect()
	sim := s.simulator.Collect()

	var snap telemetry.Snapshot
	switch mode {
	case ModeSimulation:
		snap = sim
	case ModeHybrid:
		snap = telemetry.Blend(edge, sim)
	default:
		snap = edge
	}

	var scenarioDone bool
	if scen != scenario.Normal {
		snap = scenario.Apply(snap, scen)
		s.mu.Lock()
		if s.scenarioCyclesLeft > 0 {
			s.scenarioCyclesLeft--
		}
		if s.scenarioCyclesLeft == 0 {
			s.scenarioName = scenario.Normal
			scen = scenario.Normal
			scenarioDone = true
		}
		s.mu.Unlock()
	} else {
		// While the scenario is normal the fault flag is cleared even if the
		// live side reported one; simulation determinism wins here.
		snap.FaultFlag = false
		snap.GridStatus = "healthy"
	}

	snap.ScanMode = string(mode)
	snap.Scenario = scen
	industrial := telemetry.DeriveIndustrial(snap)
	snap.Industrial = &industrial

	input := decision.FromSnapshot(snap, time.Now().UTC())
	dec := s.engine.GenerateDecision(input)
	score := health.OptimizationScore(snap)

	profile := power.Pick(snap)
	var applied power.ApplyResult
	if mode == ModeSimulation {
		applied = power.ApplyResult{Applied: false, Reason: "simulation_mode", RequestedProfile: profile}
	} else {
		applied = s.power.Apply(profile, auto)
	}

	runtimeHealth := health.Indicators(snap, dec.Stability())
	alertDrafts, eventDrafts := health.DetectTransitions(prev, snap)
	summary := health.ScanSummary(snap, score)

	label := timeLabel(snap.Timestamp)
	record := HistoryRecord{
		Timestamp:    snap.Timestamp,
		Time:         label,
		Optimization: score,
		Energy:       snap.CPUPercent,
	}

	s.mu.Lock()
	s.latestSnapshot = &snap
	s.latestDecision = &dec
	s.latestHealth = runtimeHealth
	s.history.Push(record)
	if scenarioDone {
		s.appendEventLocked("INFO", "scenario_completed normal", label)
	}
	s.appendEventLocked(summary.Type, summary.Message, label)
	for _, e := range eventDrafts {
		s.appendEventLocked(e.Type, e.Message, label)
	}
	for _, a := range alertDrafts {
		s.appendAlertLocked(a, label)
	}
	if applied.Applied {
		s.appendEventLocked("SUCCESS", "power_profile_applied "+applied.Profile, label)
	} else if profile != "" {
		reason := applied.Reason
		if reason == "" {
			reason = "n/a"
		}
		s.appendEventLocked("WARN", fmt.Sprintf("power_profile_not_applied %s (%s)", profile, reason), label)
	}
	if collectErr != nil {
		s.lastScanErr = collectErr.Error()
	} else {
		s.lastScanErr = ""
	}
	s.prevSnapshot = &snap
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ScanCycles.Inc()
		if collectErr != nil {
			s.metrics.ScanErrors.Inc()
		}
		s.metrics.OptimizationScore.Set(score)
		s.metrics.CPUPercent.Set(snap.CPUPercent)
		s.metrics.MemoryPercent.Set(snap.MemoryPercent)
		s.metrics.GridLoad.Set(snap.GridLoad())
		for _, a := range alertDrafts {
			s.metrics.AlertsRaised.WithLabelValues(a.Severity).Inc()
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(s.LatestPayload(30, 30, 10))
	}
}

// appendEventLocked appends an event with the next monotonic id. Caller
// holds mu.
func (s *Service) appendEventLocked(eventType, message, label string) {
	s.nextEventID++
	s.events.Push(Event{
		ID:      s.nextEventID,
		Type:    eventType,
		Message: message,
		Time:    label,
	})
}

// appendAlertLocked appends an alert with the next monotonic id. Caller
// holds mu.
func (s *Service) appendAlertLocked(a health.AlertDraft, label string) {
	s.nextAlertID++
	s.alerts.Push(Alert{
		ID:       s.nextAlertID,
		Severity: a.Severity,
		Title:    a.Title,
		Message:  a.Message,
		Time:     label,
	})
}

func (s *Service) statusLocked() Status {
	st := Status{
		Running:             s.running,
		ScanIntervalSeconds: s.interval.Seconds(),
		LastScanError:       s.lastScanErr,
		AutoApplyProfile:    s.autoApply,
		Mode:                s.mode,
		Scenario:            s.scenarioName,
		ScenarioCyclesLeft:  s.scenarioCyclesLeft,
	}
	if s.latestSnapshot != nil {
		ts := s.latestSnapshot.Timestamp
		st.LatestTimestamp = &ts
	}
	return st
}

func timeLabel(t time.Time) string {
	return t.Format("15:04:05")
}
