// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

// enabledSteps builds the non-mandatory collector list once, at Init time.
// The order is fixed; configuration only decides whether the optional
// replication and query cache collectors are part of the cycle.
func (c *Collector) enabledSteps() []collectStep {
	steps := []collectStep{
		{"innodb engine status", c.collectInnoDBStatus},
		{"performance schema", c.collectPerformanceData},
		{"process list", c.collectProcessList},
	}
	if c.EnableReplication {
		steps = append(steps, collectStep{"replication status", c.collectReplication})
	}
	steps = append(steps,
		collectStep{"system resources", c.collectSystemResources},
		collectStep{"database sizes", c.collectDatabaseSizes},
		collectStep{"table statistics", c.collectTableStats},
	)
	if c.EnableQueryCache {
		steps = append(steps, collectStep{"query cache", c.collectQueryCache})
	}
	steps = append(steps,
		collectStep{"binary logs", c.collectBinlogInfo},
		collectStep{"connection pool", c.collectConnectionPool},
		collectStep{"slow queries", c.collectSlowQueries},
		collectStep{"lock waits", c.collectLockWaits},
		collectStep{"buffer pool", c.collectBufferPool},
		collectStep{"transactions", c.collectTransactions},
		collectStep{"storage engines", c.collectStorageEngines},
	)
	return steps
}
