// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

// collectSystemResources reads host level usage. It is only meaningful when
// the monitor runs on the database host itself. The mysqld process and the
// datadir disk usage are best-effort extras on top of the host totals.
func (c *Collector) collectSystemResources(ctx context.Context, sn *snapshot.Snapshot) error {
	var res snapshot.SystemResources

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return err
	}
	if len(percents) > 0 {
		res.CPUPercent = percents[0]
	}
	if count, err := cpu.CountsWithContext(ctx, true); err == nil {
		res.CPUCount = int64(count)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return err
	}
	res.MemoryTotal = int64(vm.Total)
	res.MemoryUsed = int64(vm.Used)
	res.MemoryAvailable = int64(vm.Available)
	res.MemoryPercent = vm.UsedPercent

	if avg, err := load.AvgWithContext(ctx); err == nil {
		res.Load1 = avg.Load1
		res.Load5 = avg.Load5
		res.Load15 = avg.Load15
	}

	if proc, err := c.findServerProcess(ctx); err != nil {
		c.Debugf("could not get mysql process stats: %v", err)
	} else {
		res.Process = proc
	}

	if c.varDataDir != "" {
		if usage, err := disk.UsageWithContext(ctx, c.varDataDir); err != nil {
			c.Debugf("could not get disk usage for '%s': %v", c.varDataDir, err)
		} else {
			res.DataDir = &snapshot.DiskUsage{
				Total:   int64(usage.Total),
				Used:    int64(usage.Used),
				Free:    int64(usage.Free),
				Percent: usage.UsedPercent,
			}
		}
	}

	sn.SystemResources = res
	return nil
}

// findServerProcess locates the mysqld process by name and listening port.
func (c *Collector) findServerProcess(ctx context.Context) (*snapshot.ServerProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil || !strings.Contains(strings.ToLower(name), "mysql") {
			continue
		}

		conns, err := proc.ConnectionsWithContext(ctx)
		if err != nil {
			continue
		}

		var listens bool
		for _, conn := range conns {
			if conn.Status == "LISTEN" && int(conn.Laddr.Port) == c.Port {
				listens = true
				break
			}
		}
		if !listens {
			continue
		}

		sp := &snapshot.ServerProcess{
			PID:         proc.Pid,
			Connections: int64(len(conns)),
		}
		if v, err := proc.CPUPercentWithContext(ctx); err == nil {
			sp.CPUPercent = v
		}
		if mi, err := proc.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			sp.MemoryRSS = int64(mi.RSS)
			sp.MemoryVMS = int64(mi.VMS)
		}
		if v, err := proc.MemoryPercentWithContext(ctx); err == nil {
			sp.MemoryPercent = float64(v)
		}
		if v, err := proc.NumThreadsWithContext(ctx); err == nil {
			sp.Threads = int64(v)
		}
		if counters, err := proc.IOCountersWithContext(ctx); err == nil && counters != nil {
			sp.IOReadCount = int64(counters.ReadCount)
			sp.IOWriteCount = int64(counters.WriteCount)
			sp.IOReadBytes = int64(counters.ReadBytes)
			sp.IOWriteBytes = int64(counters.WriteBytes)
		}

		return sp, nil
	}

	return nil, nil
}
