// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	Port                int
	ScanIntervalSeconds int
	AutoApplyProfile    bool
	SimSeed             int64
	DataDir             string
	LogDir              string
	SchemeFile          string
	DatasetMaxRows      int

	DefaultReductionPercent float64
	MaxAllowedLoad          float64
	MinAllowedLoad          float64
	EnergyCostPerUnit       float64
	CostWeight              float64
	StabilityWeight         float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:                8090,
		ScanIntervalSeconds: 5,
		AutoApplyProfile:    true,
		SimSeed:             0,  // time-based
		DataDir:             "", // defaults to ~/.gridpulse/data in main
		LogDir:              "",
		SchemeFile:          "",
		DatasetMaxRows:      500000,

		DefaultReductionPercent: 10.0,
		MaxAllowedLoad:          100.0,
		MinAllowedLoad:          50.0,
		EnergyCostPerUnit:       0.15,
		CostWeight:              0.6,
		StabilityWeight:         0.4,
	}
}

// Load attempts to load configuration from the standard locations.
// Priority:
// 1. ~/.gridpulse/config.ini
// 2. /etc/gridpulse/config.ini
//
// It returns the loaded config (with defaults for missing fields) or the
// default config if no file is found. Errors are returned only if a file
// exists but cannot be read.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".gridpulse", "config.ini")
		if _, err := os.Stat(userPath); err == nil {
			return ParseFile(userPath, cfg)
		}
	}

	sysPath := "/etc/gridpulse/config.ini"
	if _, err := os.Stat(sysPath); err == nil {
		return ParseFile(sysPath, cfg)
	}

	return cfg, nil
}

// ParseFile reads a simple key=value INI file on top of the given defaults.
func ParseFile(path string, defaults *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// copy defaults
	cfg := *defaults

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		// Section headers are ignored; the structure is flat.
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		// remove quotes if present
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}

		switch strings.ToLower(key) {
		case "port":
			if i, err := strconv.Atoi(val); err == nil {
				cfg.Port = i
			}
		case "scan_interval_seconds", "scan_interval":
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				cfg.ScanIntervalSeconds = i
			}
		case "auto_apply", "auto_apply_power_profile":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.AutoApplyProfile = b
			}
		case "sim_seed":
			if i, err := strconv.ParseInt(val, 10, 64); err == nil {
				cfg.SimSeed = i
			}
		case "data_dir", "datadir":
			cfg.DataDir = expandHome(val)
		case "log_dir", "logdir":
			cfg.LogDir = expandHome(val)
		case "scheme_file", "schemefile":
			cfg.SchemeFile = expandHome(val)
		case "dataset_max_rows":
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				cfg.DatasetMaxRows = i
			}
		case "default_reduction_percent":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.DefaultReductionPercent = v
			}
		case "max_allowed_load":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.MaxAllowedLoad = v
			}
		case "min_allowed_load":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.MinAllowedLoad = v
			}
		case "energy_cost_per_unit":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.EnergyCostPerUnit = v
			}
		case "cost_weight":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.CostWeight = v
			}
		case "stability_weight":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.StabilityWeight = v
			}
		}
	}

	return &cfg, scanner.Err()
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
