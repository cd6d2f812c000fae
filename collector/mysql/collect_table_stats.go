// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

func (c *Collector) queryLargestTables() string {
	return fmt.Sprintf(`
SELECT
  table_schema,
  table_name,
  table_rows,
  data_length,
  index_length,
  data_length + index_length AS total_size,
  data_free
FROM information_schema.tables
WHERE %s
  AND table_type = 'BASE TABLE'
ORDER BY (data_length + index_length) DESC
LIMIT %d;`, c.filter.condition("table_schema"), c.TableStatsLimit)
}

func (c *Collector) queryFragmentedTables() string {
	return fmt.Sprintf(`
SELECT
  table_schema,
  table_name,
  data_free,
  data_length + index_length AS total_size,
  ROUND((data_free / (data_length + index_length + 1)) * 100, 2) AS fragmentation_pct
FROM information_schema.tables
WHERE %s
  AND data_free > 0
  AND data_length + index_length > 0
  AND table_type = 'BASE TABLE'
ORDER BY data_free DESC
LIMIT %d;`, c.filter.condition("table_schema"), c.TableStatsLimit)
}

func (c *Collector) queryTablesWithoutPK() string {
	return fmt.Sprintf(`
SELECT
  t.table_schema,
  t.table_name,
  t.table_rows,
  t.data_length + t.index_length AS total_size
FROM information_schema.tables t
WHERE %s
  AND NOT EXISTS (
    SELECT 1
    FROM information_schema.statistics s
    WHERE s.table_schema = t.table_schema
      AND s.table_name = t.table_name
      AND s.index_name = 'PRIMARY'
  )
  AND t.table_type = 'BASE TABLE'
ORDER BY (t.data_length + t.index_length) DESC
LIMIT %d;`, c.filter.condition("t.table_schema"), c.TableStatsLimit)
}

// collectTableStats ranks tables three ways. The rankings fail
// independently, a failing one stays an empty list.
func (c *Collector) collectTableStats(ctx context.Context, sn *snapshot.Snapshot) error {
	if rows, err := c.collectTableRows(ctx, c.queryLargestTables()); err != nil {
		c.Debugf("error on collecting largest tables: %v", err)
	} else {
		sn.TableStats.Largest = rows
	}

	if rows, err := c.collectTableRows(ctx, c.queryFragmentedTables()); err != nil {
		c.Debugf("error on collecting fragmented tables: %v", err)
	} else {
		sn.TableStats.Fragmented = rows
	}

	if rows, err := c.collectTableRows(ctx, c.queryTablesWithoutPK()); err != nil {
		c.Debugf("error on collecting tables without primary key: %v", err)
	} else {
		sn.TableStats.WithoutPrimaryKey = rows
	}

	return nil
}

func (c *Collector) collectTableRows(ctx context.Context, q string) ([]snapshot.TableInfo, error) {
	c.Debugf("executing query: '%s'", q)

	rows := []snapshot.TableInfo{}
	var row snapshot.TableInfo
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "table_schema":
			row.Schema = value
		case "table_name":
			row.Name = value
		case "table_rows":
			row.Rows = coerce.Int64(value)
		case "data_length":
			row.DataSize = coerce.Int64(value)
		case "index_length":
			row.IndexSize = coerce.Int64(value)
		case "total_size":
			row.TotalSize = coerce.Int64(value)
		case "data_free":
			row.DataFree = coerce.Int64(value)
		case "fragmentation_pct":
			row.FragmentationPct = coerce.Float64(value)
		}
		if lineEnd {
			rows = append(rows, row)
			row = snapshot.TableInfo{}
		}
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
