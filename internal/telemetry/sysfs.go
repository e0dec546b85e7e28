package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Raw /proc and /sys readers used when the sensor library cannot serve a
// field. Linux only; every function degrades to a zero value elsewhere.

// readBattery reads charge percentage and AC state from
// /sys/class/power_supply. Returns (nil, nil) when no battery is present.
func readBattery() (*float64, *bool) {
	if runtime.GOOS != "linux" {
		return nil, nil
	}
	entries, err := os.ReadDir("/sys/class/power_supply")
	if err != nil {
		return nil, nil
	}

	var pct *float64
	var plugged *bool
	for _, e := range entries {
		dir := filepath.Join("/sys/class/power_supply", e.Name())
		if strings.HasPrefix(e.Name(), "BAT") {
			if data, err := os.ReadFile(filepath.Join(dir, "capacity")); err == nil {
				if v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64); err == nil {
					pct = &v
				}
			}
		}
		if strings.HasPrefix(e.Name(), "AC") || strings.HasPrefix(e.Name(), "ADP") {
			if data, err := os.ReadFile(filepath.Join(dir, "online")); err == nil {
				v := strings.TrimSpace(string(data)) == "1"
				plugged = &v
			}
		}
	}
	if pct == nil {
		return nil, nil
	}
	return pct, plugged
}

// readLoadAvg returns the 1-minute load average from /proc/loadavg.
// Returns -1 on failure or non-Linux.
func readLoadAvg() float64 {
	if runtime.GOOS != "linux" {
		return -1
	}
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return -1
	}
	var load1 float64
	if _, err := fmt.Sscanf(string(data), "%f", &load1); err != nil {
		return -1
	}
	return load1
}

// readMemInfo reads /proc/meminfo and returns the used-memory percentage.
// It prefers MemAvailable over MemFree. Returns -1 on failure or non-Linux.
func readMemInfo() float64 {
	if runtime.GOOS != "linux" {
		return -1
	}
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return -1
	}
	var key string
	var val uint64
	var total, avail, free uint64
	for _, line := range strings.Split(string(data), "\n") {
		if _, err := fmt.Sscanf(line, "%s %d kB", &key, &val); err == nil {
			switch key {
			case "MemTotal:":
				total = val
			case "MemAvailable:":
				avail = val
			case "MemFree:":
				free = val
			}
		}
	}
	if total == 0 {
		return -1
	}
	if avail == 0 {
		avail = free
	}
	return float64(total-avail) / float64(total) * 100.0
}
