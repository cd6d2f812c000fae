// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryShowEngines = "SHOW ENGINES;"

func (c *Collector) queryEnginesInUse() string {
	return fmt.Sprintf(`
SELECT
  ENGINE,
  COUNT(*) AS table_count,
  SUM(DATA_LENGTH) AS total_data_size,
  SUM(INDEX_LENGTH) AS total_index_size,
  SUM(DATA_LENGTH + INDEX_LENGTH) AS total_size
FROM information_schema.TABLES
WHERE %s
  AND ENGINE IS NOT NULL
GROUP BY ENGINE;`, c.filter.condition("TABLE_SCHEMA"))
}

func (c *Collector) collectStorageEngines(ctx context.Context, sn *snapshot.Snapshot) error {
	q := c.queryEnginesInUse()
	c.Debugf("executing query: '%s'", q)

	var engine string
	var usage snapshot.EngineUsage
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "ENGINE":
			engine = value
		case "table_count":
			usage.TableCount = coerce.Int64(value)
		case "total_data_size":
			usage.DataSize = coerce.Int64(value)
		case "total_index_size":
			usage.IndexSize = coerce.Int64(value)
		case "total_size":
			usage.TotalSize = coerce.Int64(value)
		}
		if lineEnd {
			sn.StorageEngines.InUse[engine] = usage
			usage = snapshot.EngineUsage{}
		}
	})
	if err != nil {
		return err
	}

	q = queryShowEngines
	c.Debugf("executing query: '%s'", q)

	var name string
	var support snapshot.EngineSupport
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "Engine":
			name = value
		case "Support":
			support.Support = value
		case "Comment":
			support.Comment = value
		case "Transactions":
			support.Transactions = value
		case "XA":
			support.XA = value
		case "Savepoints":
			support.Savepoints = value
		}
		if lineEnd {
			sn.StorageEngines.Available[name] = support
			support = snapshot.EngineSupport{}
		}
	})
}
