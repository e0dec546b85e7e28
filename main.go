// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gridpulse/internal/config"
	"gridpulse/internal/dataset"
	"gridpulse/internal/decision"
	"gridpulse/internal/metrics"
	"gridpulse/internal/optimize"
	"gridpulse/internal/power"
	"gridpulse/internal/runtime"
	"gridpulse/internal/server"
	"gridpulse/internal/stream"
	"gridpulse/internal/telemetry"
)

func main() {
	port := flag.Int("port", 0, "port to listen on (overrides config)")
	configPath := flag.String("config", "", "path to config.ini (overrides standard locations)")
	interval := flag.Int("interval", 0, "scan interval in seconds (overrides config)")
	seed := flag.Int64("sim-seed", 0, "simulator seed, 0 for time-based (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *interval > 0 {
		cfg.ScanIntervalSeconds = *interval
	}
	if *seed != 0 {
		cfg.SimSeed = *seed
	}
	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		cfg.DataDir = filepath.Join(home, ".gridpulse", "data")
	}
	if cfg.LogDir == "" {
		home, _ := os.UserHomeDir()
		cfg.LogDir = filepath.Join(home, ".gridpulse", "logs")
	}

	optimizer := optimize.New(optimize.Config{
		DefaultReductionPercent: cfg.DefaultReductionPercent,
		MaxAllowedLoad:          cfg.MaxAllowedLoad,
		MinAllowedLoad:          cfg.MinAllowedLoad,
		EnergyCostPerUnit:       cfg.EnergyCostPerUnit,
		CostWeight:              cfg.CostWeight,
		StabilityWeight:         cfg.StabilityWeight,
	})

	powerCtl := power.NewController()
	if cfg.SchemeFile != "" {
		if err := powerCtl.LoadSchemeOverrides(cfg.SchemeFile); err != nil {
			log.Printf("power scheme overrides: %v", err)
		}
	}

	hub := stream.NewHub()
	svc := runtime.New(runtime.Options{
		Interval:  time.Duration(cfg.ScanIntervalSeconds) * time.Second,
		Simulator: telemetry.NewSimulator(cfg.SimSeed),
		Engine:    decision.NewHeuristicEngine(optimizer),
		Power:     powerCtl,
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Hub:       hub,
		AutoApply: cfg.AutoApplyProfile,
	})

	store := dataset.NewStore(cfg.DataDir, cfg.DatasetMaxRows)

	srv := server.New(svc, store, hub, cfg.LogDir)
	srv.Routes()

	svc.Start()
	srv.Start(cfg.Port)

	stopWatch := watchConfig(*configPath, svc, powerCtl)
	defer stopWatch()

	// wait for interrupt (Ctrl-C) or termination signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutdown signal received, shutting down...")

	svc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("error during server shutdown: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.ParseFile(path, config.DefaultConfig())
	}
	return config.Load()
}

// watchConfig hot-reloads the tunable subset of the configuration when the
// file changes: the auto-apply flag and the power scheme overrides.
func watchConfig(path string, svc *runtime.Service, powerCtl *power.Controller) func() {
	if path == "" {
		return func() {}
	}

	stop, err := config.Watch(path, config.DefaultConfig(), func(next *config.Config) {
		svc.SetAutoApply(next.AutoApplyProfile)
		if next.SchemeFile != "" {
			if err := powerCtl.LoadSchemeOverrides(next.SchemeFile); err != nil {
				log.Printf("power scheme overrides: %v", err)
			}
		}
	})
	if err != nil {
		log.Printf("config watch unavailable: %v", err)
		return func() {}
	}
	return stop
}
