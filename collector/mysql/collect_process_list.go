// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/blang/semver/v4"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

// Table Schema:
// (MariaDB) https://mariadb.com/kb/en/information-schema-processlist-table/
// (MySql) https://dev.mysql.com/doc/refman/5.7/en/information-schema-processlist-table.html
const queryProcessList = `
SELECT
  ID,
  USER,
  HOST,
  DB,
  COMMAND,
  TIME,
  STATE,
  INFO
FROM information_schema.PROCESSLIST
WHERE COMMAND != 'Sleep'
ORDER BY TIME DESC
LIMIT 20;`

// Performance Schema
// (MySQL) https://dev.mysql.com/doc/refman/8.0/en/performance-schema-processlist-table.html
const queryProcessListPS = `
SELECT
  PROCESSLIST_ID AS ID,
  PROCESSLIST_USER AS USER,
  PROCESSLIST_HOST AS HOST,
  PROCESSLIST_DB AS DB,
  PROCESSLIST_COMMAND AS COMMAND,
  PROCESSLIST_TIME AS TIME,
  PROCESSLIST_STATE AS STATE,
  PROCESSLIST_INFO AS INFO
FROM performance_schema.threads
WHERE TYPE = 'FOREGROUND'
  AND PROCESSLIST_COMMAND != 'Sleep'
ORDER BY PROCESSLIST_TIME DESC
LIMIT 20;`

func (c *Collector) collectProcessList(ctx context.Context, sn *snapshot.Snapshot) error {
	var q string
	mysqlMinVer := semver.Version{Major: 8, Minor: 0, Patch: 22}
	if !c.isMariaDB && c.version.GTE(mysqlMinVer) && c.varPerformanceSchema == "ON" {
		q = queryProcessListPS
	} else {
		q = queryProcessList
	}
	c.Debugf("executing query: '%s'", q)

	var row snapshot.Process
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "ID":
			row.ID = coerce.Int64(value)
		case "USER":
			row.User = value
		case "HOST":
			row.Host = value
		case "DB":
			row.DB = value
		case "COMMAND":
			row.Command = value
		case "TIME":
			row.Time = coerce.Int64(value)
		case "STATE":
			row.State = value
		case "INFO":
			row.Info = value
		}
		if lineEnd {
			sn.ProcessList = append(sn.ProcessList, row)
			row = snapshot.Process{}
		}
	})
}
