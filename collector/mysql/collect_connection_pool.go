// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryConnectionPool = `
SELECT
  COUNT(*) AS total_connections,
  SUM(CASE WHEN COMMAND = 'Sleep' THEN 1 ELSE 0 END) AS idle_connections,
  SUM(CASE WHEN COMMAND != 'Sleep' THEN 1 ELSE 0 END) AS active_connections,
  MAX(TIME) AS max_connection_time,
  AVG(TIME) AS avg_connection_time
FROM information_schema.PROCESSLIST;`

func (c *Collector) collectConnectionPool(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryConnectionPool
	c.Debugf("executing query: '%s'", q)

	var pool snapshot.ConnectionPool
	err := c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "total_connections":
			pool.Total = coerce.Int64(value)
		case "idle_connections":
			pool.Idle = coerce.Int64(value)
		case "active_connections":
			pool.Active = coerce.Int64(value)
		case "max_connection_time":
			pool.MaxTime = coerce.Int64(value)
		case "avg_connection_time":
			pool.AvgTime = coerce.Float64(value)
		}
	})
	if err != nil {
		return err
	}

	pool.MaxConnections = coerce.Int64(sn.GlobalVariables["max_connections"])
	pool.MaxUsedConnections = coerce.Int64(sn.GlobalStatus["Max_used_connections"])
	pool.UsagePct = connectionUsagePct(pool.MaxUsedConnections, pool.MaxConnections)

	sn.ConnectionPool = pool
	return nil
}
