// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

func (c *Collector) queryDatabaseSizes() string {
	return fmt.Sprintf(`
SELECT
  table_schema AS db_name,
  COUNT(DISTINCT table_name) AS table_count,
  SUM(table_rows) AS total_rows,
  SUM(data_length) AS data_size,
  SUM(index_length) AS index_size,
  SUM(data_length + index_length) AS total_size,
  SUM(data_free) AS free_size
FROM information_schema.tables
WHERE %s
GROUP BY table_schema;`, c.filter.condition("table_schema"))
}

func (c *Collector) collectDatabaseSizes(ctx context.Context, sn *snapshot.Snapshot) error {
	q := c.queryDatabaseSizes()
	c.Debugf("executing query: '%s'", q)

	var name string
	var row snapshot.DatabaseSize
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "db_name":
			name = value
		case "table_count":
			row.TableCount = coerce.Int64(value)
		case "total_rows":
			row.TotalRows = coerce.Int64(value)
		case "data_size":
			row.DataSize = coerce.Int64(value)
		case "index_size":
			row.IndexSize = coerce.Int64(value)
		case "total_size":
			row.TotalSize = coerce.Int64(value)
		case "free_size":
			row.FreeSize = coerce.Int64(value)
		}
		if lineEnd {
			sn.DatabaseSizes[name] = row
			row = snapshot.DatabaseSize{}
		}
	})
}
