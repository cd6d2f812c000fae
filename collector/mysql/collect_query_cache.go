// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const (
	queryQueryCacheVariables = "SHOW GLOBAL VARIABLES LIKE 'query_cache_%';"
	queryQueryCacheStatus    = "SHOW GLOBAL STATUS LIKE 'Qcache_%';"
)

// collectQueryCache reports the query cache, removed in MySQL 8.0 but still
// present in MariaDB. A server without it keeps the section at enabled=false.
func (c *Collector) collectQueryCache(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryQueryCacheVariables
	c.Debugf("executing query: '%s'", q)

	vars := make(map[string]string)
	var name string
	err := c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "Variable_name":
			name = value
		case "Value":
			vars[name] = value
		}
	})
	if err != nil {
		return err
	}

	if vars["query_cache_type"] == "" || vars["query_cache_type"] == "OFF" {
		return nil
	}

	q = queryQueryCacheStatus
	c.Debugf("executing query: '%s'", q)

	status := make(map[string]string)
	err = c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "Variable_name":
			name = value
		case "Value":
			status[name] = value
		}
	})
	if err != nil {
		return err
	}

	hits := coerce.Int64(status["Qcache_hits"])
	inserts := coerce.Int64(status["Qcache_inserts"])

	sn.QueryCache = snapshot.QueryCache{
		Enabled:        true,
		Size:           coerce.Int64(vars["query_cache_size"]),
		Limit:          coerce.Int64(vars["query_cache_limit"]),
		Hits:           hits,
		Inserts:        inserts,
		HitRate:        cacheHitRate(hits, inserts),
		QueriesInCache: coerce.Int64(status["Qcache_queries_in_cache"]),
		FreeMemory:     coerce.Int64(status["Qcache_free_memory"]),
		FreeBlocks:     coerce.Int64(status["Qcache_free_blocks"]),
		TotalBlocks:    coerce.Int64(status["Qcache_total_blocks"]),
	}

	return nil
}
