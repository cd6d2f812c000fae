// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryTopStatements = `
SELECT
  DIGEST_TEXT,
  COUNT_STAR,
  SUM_TIMER_WAIT,
  SUM_LOCK_TIME,
  SUM_ROWS_AFFECTED,
  SUM_ROWS_SENT,
  SUM_ROWS_EXAMINED
FROM performance_schema.events_statements_summary_by_digest
WHERE DIGEST_TEXT IS NOT NULL
ORDER BY SUM_TIMER_WAIT DESC
LIMIT 10;`

const queryFileIOSummary = `
SELECT
  FILE_NAME,
  COUNT_STAR,
  SUM_TIMER_WAIT,
  COUNT_READ,
  COUNT_WRITE,
  SUM_NUMBER_OF_BYTES_READ,
  SUM_NUMBER_OF_BYTES_WRITE
FROM performance_schema.file_summary_by_instance
WHERE FILE_NAME IS NOT NULL
ORDER BY SUM_TIMER_WAIT DESC
LIMIT 10;`

const queryUserSummary = `
SELECT
  USER,
  CURRENT_CONNECTIONS,
  TOTAL_CONNECTIONS
FROM performance_schema.users
WHERE USER IS NOT NULL;`

func (c *Collector) queryTableIOSummary() string {
	return fmt.Sprintf(`
SELECT
  OBJECT_SCHEMA,
  OBJECT_NAME,
  COUNT_STAR,
  SUM_TIMER_WAIT,
  COUNT_READ,
  COUNT_WRITE,
  COUNT_FETCH,
  COUNT_INSERT,
  COUNT_UPDATE,
  COUNT_DELETE
FROM performance_schema.table_io_waits_summary_by_table
WHERE %s
  AND OBJECT_SCHEMA IS NOT NULL
ORDER BY SUM_TIMER_WAIT DESC
LIMIT 10;`, c.filter.condition("OBJECT_SCHEMA"))
}

// collectPerformanceData gathers performance_schema digests. The four
// sub-queries are independent, a failing one leaves its list empty.
func (c *Collector) collectPerformanceData(ctx context.Context, sn *snapshot.Snapshot) error {
	if c.varPerformanceSchema != "ON" {
		return nil
	}

	sn.Performance.Enabled = true

	if err := c.collectTopStatements(ctx, sn); err != nil {
		c.Debugf("error on collecting statement digests: %v", err)
	}
	if err := c.collectTableIO(ctx, sn); err != nil {
		c.Debugf("error on collecting table io summary: %v", err)
	}
	if err := c.collectFileIO(ctx, sn); err != nil {
		c.Debugf("error on collecting file io summary: %v", err)
	}
	if err := c.collectUserSummary(ctx, sn); err != nil {
		c.Debugf("error on collecting user summary: %v", err)
	}

	return nil
}

func (c *Collector) collectTopStatements(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryTopStatements
	c.Debugf("executing query: '%s'", q)

	var row snapshot.StatementDigest
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "DIGEST_TEXT":
			row.Digest = value
		case "COUNT_STAR":
			row.Calls = coerce.Int64(value)
		case "SUM_TIMER_WAIT":
			row.TimerWait = coerce.Int64(value)
		case "SUM_LOCK_TIME":
			row.LockTime = coerce.Int64(value)
		case "SUM_ROWS_AFFECTED":
			row.RowsAffected = coerce.Int64(value)
		case "SUM_ROWS_SENT":
			row.RowsSent = coerce.Int64(value)
		case "SUM_ROWS_EXAMINED":
			row.RowsExamined = coerce.Int64(value)
		}
		if lineEnd {
			sn.Performance.TopStatements = append(sn.Performance.TopStatements, row)
			row = snapshot.StatementDigest{}
		}
	})
}

func (c *Collector) collectTableIO(ctx context.Context, sn *snapshot.Snapshot) error {
	q := c.queryTableIOSummary()
	c.Debugf("executing query: '%s'", q)

	var row snapshot.TableIOSummary
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "OBJECT_SCHEMA":
			row.Schema = value
		case "OBJECT_NAME":
			row.Table = value
		case "COUNT_STAR":
			row.Count = coerce.Int64(value)
		case "SUM_TIMER_WAIT":
			row.TimerWait = coerce.Int64(value)
		case "COUNT_READ":
			row.Reads = coerce.Int64(value)
		case "COUNT_WRITE":
			row.Writes = coerce.Int64(value)
		case "COUNT_FETCH":
			row.Fetches = coerce.Int64(value)
		case "COUNT_INSERT":
			row.Inserts = coerce.Int64(value)
		case "COUNT_UPDATE":
			row.Updates = coerce.Int64(value)
		case "COUNT_DELETE":
			row.Deletes = coerce.Int64(value)
		}
		if lineEnd {
			sn.Performance.TableIO = append(sn.Performance.TableIO, row)
			row = snapshot.TableIOSummary{}
		}
	})
}

func (c *Collector) collectFileIO(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryFileIOSummary
	c.Debugf("executing query: '%s'", q)

	var row snapshot.FileIOSummary
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "FILE_NAME":
			row.File = value
		case "COUNT_STAR":
			row.Count = coerce.Int64(value)
		case "SUM_TIMER_WAIT":
			row.TimerWait = coerce.Int64(value)
		case "COUNT_READ":
			row.Reads = coerce.Int64(value)
		case "COUNT_WRITE":
			row.Writes = coerce.Int64(value)
		case "SUM_NUMBER_OF_BYTES_READ":
			row.BytesRead = coerce.Int64(value)
		case "SUM_NUMBER_OF_BYTES_WRITE":
			row.BytesWritten = coerce.Int64(value)
		}
		if lineEnd {
			sn.Performance.FileIO = append(sn.Performance.FileIO, row)
			row = snapshot.FileIOSummary{}
		}
	})
}

func (c *Collector) collectUserSummary(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryUserSummary
	c.Debugf("executing query: '%s'", q)

	var row snapshot.UserSummary
	return c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "USER":
			row.User = value
		case "CURRENT_CONNECTIONS":
			row.CurrentConnections = coerce.Int64(value)
		case "TOTAL_CONNECTIONS":
			row.TotalConnections = coerce.Int64(value)
		}
		if lineEnd {
			sn.Performance.Users = append(sn.Performance.Users, row)
			row = snapshot.UserSummary{}
		}
	})
}
