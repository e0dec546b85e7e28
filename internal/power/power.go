// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package power chooses a target power profile from snapshot state and
// conditionally applies it to the host.
package power

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"gridpulse/internal/telemetry"
)

const (
	ProfilePowerSaver      = "power_saver"
	ProfileBalanced        = "balanced"
	ProfileHighPerformance = "high_performance"
)

const (
	// applyCooldown is the minimum gap between re-applying the same profile.
	applyCooldown = 120 * time.Second
	// commandTimeout bounds the out-of-process scheme switch.
	commandTimeout = 8 * time.Second
)

// ApplyResult reports whether a profile was applied and, if not, why.
type ApplyResult struct {
	Applied          bool   `json:"applied"`
	Profile          string `json:"profile,omitempty"`
	RequestedProfile string `json:"requested_profile,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// Pick selects the target profile for a snapshot. Faults force high
// performance so the failover path keeps full capacity.
func Pick(s telemetry.Snapshot) string {
	if s.FaultFlag {
		return ProfileHighPerformance
	}

	plugged := s.PowerPlugged != nil && *s.PowerPlugged
	if s.BatteryPercent != nil && !plugged && *s.BatteryPercent <= 25 {
		return ProfilePowerSaver
	}
	if plugged && s.CPUPercent >= 85 {
		return ProfileHighPerformance
	}
	return ProfileBalanced
}

// schemeFile is the optional YAML override mapping profiles to platform
// scheme identifiers.
type schemeFile struct {
	Schemes map[string]string `yaml:"schemes"`
}

// Controller applies power profiles through the platform scheme switch,
// subject to a per-profile cooldown.
type Controller struct {
	mu          sync.Mutex
	schemes     map[string]string
	lastProfile string
	lastApplied time.Time

	supported bool
	now       func() time.Time
	setScheme func(ctx context.Context, scheme string) error
}

// NewController returns a controller with the stock scheme aliases. Only
// Windows hosts support out-of-process control.
func NewController() *Controller {
	c := &Controller{
		schemes: map[string]string{
			ProfilePowerSaver:      "SCHEME_MAX",
			ProfileBalanced:        "SCHEME_BALANCED",
			ProfileHighPerformance: "SCHEME_MIN",
		},
		supported: runtime.GOOS == "windows",
		now:       time.Now,
	}
	c.setScheme = runPowercfg
	return c
}

// LoadSchemeOverrides merges profile-to-scheme mappings from a YAML file.
// A missing file is not an error.
func (c *Controller) LoadSchemeOverrides(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var f schemeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("scheme overrides %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for profile, scheme := range f.Schemes {
		if scheme != "" {
			c.schemes[profile] = scheme
		}
	}
	return nil
}

// Apply switches the host to the requested profile. It returns a structured
// not-applied result when auto-apply is off, the platform is unsupported,
// the same profile was applied within the cooldown window, or the scheme
// switch fails; it never returns an error.
func (c *Controller) Apply(profile string, autoApply bool) ApplyResult {
	if profile == "" {
		return ApplyResult{Applied: false}
	}
	if !autoApply {
		return ApplyResult{Applied: false, Reason: "auto_apply_disabled", RequestedProfile: profile}
	}
	if !c.supported {
		return ApplyResult{Applied: false, Reason: "unsupported_platform", RequestedProfile: profile}
	}

	c.mu.Lock()
	now := c.now()
	if c.lastProfile == profile && now.Sub(c.lastApplied) < applyCooldown {
		c.mu.Unlock()
		return ApplyResult{Applied: false, Reason: "cooldown", RequestedProfile: profile}
	}
	scheme, ok := c.schemes[profile]
	c.mu.Unlock()

	if !ok {
		return ApplyResult{Applied: false, Reason: "unknown_profile", RequestedProfile: profile}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := c.setScheme(ctx, scheme); err != nil {
		return ApplyResult{Applied: false, Reason: err.Error(), RequestedProfile: profile}
	}

	c.mu.Lock()
	c.lastProfile = profile
	c.lastApplied = now
	c.mu.Unlock()
	return ApplyResult{Applied: true, Profile: profile}
}

func runPowercfg(ctx context.Context, scheme string) error {
	out, err := exec.CommandContext(ctx, "powercfg", "/SETACTIVE", scheme).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = "powercfg_failed"
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}
