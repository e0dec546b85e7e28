// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// commandTimeout bounds every out-of-process telemetry query.
const commandTimeout = 8 * time.Second

// Collector produces a live snapshot of the host.
type Collector interface {
	Collect() (Snapshot, error)
}

// HostCollector reads host sensors through gopsutil, degrading to a
// platform-specific out-of-process query and finally to a load-average
// estimate. Collect always returns a usable snapshot; the error is non-nil
// only when the out-of-process query was reached and failed.
type HostCollector struct {
	DiskPath    string
	CPUInterval time.Duration
}

// NewHostCollector returns a collector for the local machine.
func NewHostCollector() *HostCollector {
	diskPath := "/"
	if runtime.GOOS == "windows" {
		diskPath = "C:\\"
	}
	return &HostCollector{DiskPath: diskPath, CPUInterval: 200 * time.Millisecond}
}

// Collect gathers a live snapshot. Sensor failures degrade through the
// fallback chain instead of propagating.
func (c *HostCollector) Collect() (Snapshot, error) {
	if snap, ok := c.collectSensors(); ok {
		return snap, nil
	}
	if runtime.GOOS == "windows" {
		snap, err := c.collectWindows()
		if err != nil {
			return c.fallbackSnapshot(), err
		}
		return snap, nil
	}
	return c.fallbackSnapshot(), nil
}

// collectSensors reads everything through gopsutil. CPU is the gating
// reading; the remaining fields are best-effort.
func (c *HostCollector) collectSensors() (Snapshot, bool) {
	pct, err := cpu.Percent(c.CPUInterval, false)
	if err != nil || len(pct) == 0 {
		return Snapshot{}, false
	}

	snap := baseSnapshot()
	snap.CPUPercent = round2(pct[0])

	if v, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = round2(v.UsedPercent)
	} else if m := readMemInfo(); m >= 0 {
		snap.MemoryPercent = round2(m)
	}
	if d, err := disk.Usage(c.DiskPath); err == nil {
		snap.DiskPercent = round2(d.UsedPercent)
	}
	if pids, err := process.Pids(); err == nil {
		snap.ProcessCount = len(pids)
	}
	snap.BatteryPercent, snap.PowerPlugged = readBattery()
	return snap, true
}

// windowsProbe is the CIM query payload returned by the powershell fallback.
type windowsProbe struct {
	CPUPercent     float64  `json:"cpu_percent"`
	MemoryPercent  float64  `json:"memory_percent"`
	DiskPercent    float64  `json:"disk_percent"`
	BatteryPercent *float64 `json:"battery_percent"`
	PowerPlugged   *bool    `json:"power_plugged"`
	ProcessCount   int      `json:"process_count"`
}

const windowsProbeScript = `
$os = Get-CimInstance Win32_OperatingSystem
$cpuLoad = (Get-CimInstance Win32_Processor | Measure-Object -Property LoadPercentage -Average).Average
$disk = Get-CimInstance Win32_LogicalDisk -Filter "DeviceID='C:'" | Select-Object -First 1
$battery = Get-CimInstance Win32_Battery | Select-Object -First 1
$processCount = (Get-Process | Measure-Object).Count

$diskPercent = 0
if ($disk -and $disk.Size -gt 0) {
  $diskPercent = (($disk.Size - $disk.FreeSpace) / $disk.Size) * 100
}

$memoryPercent = 0
if ($os -and $os.TotalVisibleMemorySize -gt 0) {
  $memoryPercent = (($os.TotalVisibleMemorySize - $os.FreePhysicalMemory) / $os.TotalVisibleMemorySize) * 100
}

$batteryPercent = $null
$powerPlugged = $null
if ($battery) {
  $batteryPercent = [double]$battery.EstimatedChargeRemaining
  $powerPlugged = @('2','6','7','8','9') -contains [string]$battery.BatteryStatus
}

[PSCustomObject]@{
  cpu_percent = [math]::Round([double]$cpuLoad, 2)
  memory_percent = [math]::Round([double]$memoryPercent, 2)
  disk_percent = [math]::Round([double]$diskPercent, 2)
  battery_percent = if($batteryPercent -eq $null){$null}else{[math]::Round($batteryPercent, 2)}
  power_plugged = $powerPlugged
  process_count = [int]$processCount
} | ConvertTo-Json -Compress
`

// collectWindows queries host state through a powershell CIM probe.
func (c *HostCollector) collectWindows() (Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", windowsProbeScript).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Snapshot{}, fmt.Errorf("windows telemetry probe: %s", string(exitErr.Stderr))
		}
		return Snapshot{}, fmt.Errorf("windows telemetry probe: %w", err)
	}

	var probe windowsProbe
	if err := json.Unmarshal(out, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("windows telemetry probe: %w", err)
	}

	snap := baseSnapshot()
	snap.CPUPercent = round2(probe.CPUPercent)
	snap.MemoryPercent = round2(probe.MemoryPercent)
	snap.DiskPercent = round2(probe.DiskPercent)
	snap.BatteryPercent = probe.BatteryPercent
	snap.PowerPlugged = probe.PowerPlugged
	snap.ProcessCount = probe.ProcessCount
	return snap, nil
}

// fallbackSnapshot produces the minimal load-average estimate with memory,
// disk and battery left at zero/unknown.
func (c *HostCollector) fallbackSnapshot() Snapshot {
	snap := baseSnapshot()
	if load := readLoadAvg(); load >= 0 {
		snap.CPUPercent = round2(clampPercent(load * 25.0))
	}
	return snap
}

func baseSnapshot() Snapshot {
	hostname, _ := os.Hostname()
	platformLabel := runtime.GOOS + "/" + runtime.GOARCH
	if info, err := host.Info(); err == nil && info.Platform != "" {
		platformLabel = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	}
	return Snapshot{
		Timestamp: time.Now().UTC(),
		Hostname:  hostname,
		Platform:  platformLabel,
	}
}
