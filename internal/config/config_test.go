// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8090 {
		t.Fatalf("default port = %d, want 8090", cfg.Port)
	}
	if cfg.ScanIntervalSeconds != 5 {
		t.Fatalf("default interval = %d, want 5", cfg.ScanIntervalSeconds)
	}
	if !cfg.AutoApplyProfile {
		t.Fatal("auto apply should default to true")
	}
	if cfg.DatasetMaxRows != 500000 {
		t.Fatalf("default dataset cap = %d, want 500000", cfg.DatasetMaxRows)
	}
	if cfg.MaxAllowedLoad != 100.0 || cfg.MinAllowedLoad != 50.0 {
		t.Fatalf("default load bounds wrong: %+v", cfg)
	}
}

func TestParseFile(t *testing.T) {
	path := writeConfig(t, `
# gridpulse config
[server]
port = 9000
scan_interval_seconds = 10

[power]
auto_apply = false

[optimizer]
default_reduction_percent = 12.5
min_allowed_load = 40
`)

	cfg, err := ParseFile(path, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Port)
	}
	if cfg.ScanIntervalSeconds != 10 {
		t.Fatalf("interval = %d, want 10", cfg.ScanIntervalSeconds)
	}
	if cfg.AutoApplyProfile {
		t.Fatal("auto apply not parsed")
	}
	if cfg.DefaultReductionPercent != 12.5 {
		t.Fatalf("reduction = %v, want 12.5", cfg.DefaultReductionPercent)
	}
	if cfg.MinAllowedLoad != 40 {
		t.Fatalf("min load = %v, want 40", cfg.MinAllowedLoad)
	}
	// untouched keys keep their defaults
	if cfg.MaxAllowedLoad != 100.0 {
		t.Fatalf("max load = %v, want default 100", cfg.MaxAllowedLoad)
	}
}

func TestParseFileQuotedValues(t *testing.T) {
	path := writeConfig(t, `
data_dir = "/var/lib/gridpulse"
scheme_file = '/etc/gridpulse/schemes.yaml'
`)
	cfg, err := ParseFile(path, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if cfg.DataDir != "/var/lib/gridpulse" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.SchemeFile != "/etc/gridpulse/schemes.yaml" {
		t.Fatalf("scheme file = %q", cfg.SchemeFile)
	}
}

func TestParseFileIgnoresJunk(t *testing.T) {
	path := writeConfig(t, `
; comment
not a key value pair
port = notanumber
scan_interval = -3
unknown_key = 1
`)
	cfg, err := ParseFile(path, DefaultConfig())
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("bad port value should keep default, got %d", cfg.Port)
	}
	if cfg.ScanIntervalSeconds != 5 {
		t.Fatalf("non-positive interval should keep default, got %d", cfg.ScanIntervalSeconds)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.ini"), DefaultConfig()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir available")
	}
	if got := expandHome("~/data"); got != filepath.Join(home, "data") {
		t.Fatalf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
