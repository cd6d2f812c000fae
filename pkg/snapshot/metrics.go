// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
)

// Metrics flattens the snapshot into a transport neutral numeric form with
// dotted keys. Textual status/variable values that have no numeric
// representation are skipped rather than reported as zero; booleans are
// reported as 0/1.
func (s *Snapshot) Metrics() map[string]float64 {
	mx := make(map[string]float64)

	mx["server_info.uptime"] = float64(s.ServerInfo.Uptime)

	for name, value := range s.GlobalStatus {
		if coerce.IsNumeric(value) {
			mx["global_status."+name] = coerce.Float64(value)
		}
	}
	for name, value := range s.GlobalVariables {
		if coerce.IsNumeric(value) {
			mx["global_variables."+name] = coerce.Float64(value)
		}
	}
	for name, value := range s.InnoDBStatus {
		mx["innodb_status."+name] = float64(value)
	}

	mx["performance_data.enabled"] = boolToFloat(s.Performance.Enabled)
	mx["process_list.count"] = float64(len(s.ProcessList))

	if s.Replication.Primary != nil {
		mx["replication_status.master_position"] = float64(s.Replication.Primary.Position)
	}
	if s.Replication.Replica != nil {
		mx["replication_status.seconds_behind_master"] = float64(s.Replication.Replica.SecondsBehindMaster)
	}

	mx["system_resources.cpu_percent"] = s.SystemResources.CPUPercent
	mx["system_resources.memory_percent"] = s.SystemResources.MemoryPercent
	mx["system_resources.memory_used"] = float64(s.SystemResources.MemoryUsed)
	if s.SystemResources.DataDir != nil {
		mx["system_resources.datadir_percent"] = s.SystemResources.DataDir.Percent
	}

	for name, db := range s.DatabaseSizes {
		prefix := fmt.Sprintf("database_sizes.%s.", name)
		mx[prefix+"table_count"] = float64(db.TableCount)
		mx[prefix+"total_rows"] = float64(db.TotalRows)
		mx[prefix+"total_size"] = float64(db.TotalSize)
		mx[prefix+"free_size"] = float64(db.FreeSize)
	}

	mx["query_cache.enabled"] = boolToFloat(s.QueryCache.Enabled)
	if s.QueryCache.Enabled {
		mx["query_cache.hit_rate"] = s.QueryCache.HitRate
		mx["query_cache.size"] = float64(s.QueryCache.Size)
	}

	mx["binlog_info.enabled"] = boolToFloat(s.BinlogInfo.Enabled)
	if s.BinlogInfo.Enabled {
		mx["binlog_info.log_count"] = float64(s.BinlogInfo.FileCount)
		mx["binlog_info.total_size"] = float64(s.BinlogInfo.TotalSize)
		mx["binlog_info.current_position"] = float64(s.BinlogInfo.CurrentPosition)
	}

	mx["connection_pool.total_connections"] = float64(s.ConnectionPool.Total)
	mx["connection_pool.active_connections"] = float64(s.ConnectionPool.Active)
	mx["connection_pool.idle_connections"] = float64(s.ConnectionPool.Idle)
	mx["connection_pool.connection_usage_pct"] = s.ConnectionPool.UsagePct

	mx["slow_queries.enabled"] = boolToFloat(s.SlowQueries.Enabled)
	mx["slow_queries.count"] = float64(s.SlowQueries.Count)

	mx["lock_waits.current"] = float64(len(s.LockWaits.Current))
	mx["lock_waits.row_lock_waits"] = float64(s.LockWaits.RowLockWaits)
	mx["lock_waits.row_lock_time"] = float64(s.LockWaits.RowLockTime)
	mx["lock_waits.table_locks_waited"] = float64(s.LockWaits.TableLocksWaited)

	mx["buffer_pool.total_size"] = float64(s.BufferPool.TotalSize)
	mx["buffer_pool.usage_pct"] = s.BufferPool.UsagePct
	mx["buffer_pool.dirty_pct"] = s.BufferPool.DirtyPct
	mx["buffer_pool.avg_hit_rate"] = s.BufferPool.AvgHitRate

	mx["transactions.count"] = float64(s.Transactions.Count)
	mx["transactions.long_running"] = float64(len(s.Transactions.LongRunning))
	mx["transactions.com_commit"] = float64(s.Transactions.Commits)
	mx["transactions.com_rollback"] = float64(s.Transactions.Rollbacks)

	mx["features.query_cache"] = boolToFloat(s.Features.QueryCache)
	mx["features.replication"] = boolToFloat(s.Features.Replication)

	return mx
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
