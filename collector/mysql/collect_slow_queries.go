// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

// AVG_TIMER_WAIT is in picoseconds, long_query_time in seconds.
func queryTopSlowQueries(longQueryTime float64) string {
	return fmt.Sprintf(`
SELECT
  DIGEST_TEXT,
  COUNT_STAR,
  SUM_TIMER_WAIT,
  MAX_TIMER_WAIT,
  AVG_TIMER_WAIT,
  SUM_ROWS_EXAMINED,
  SUM_ROWS_SENT
FROM performance_schema.events_statements_summary_by_digest
WHERE AVG_TIMER_WAIT > %.0f * 1000000000
  AND DIGEST_TEXT IS NOT NULL
ORDER BY SUM_TIMER_WAIT DESC
LIMIT 10;`, longQueryTime)
}

// collectSlowQueries reports slow query log settings and, when the
// performance schema allows it, the digests exceeding long_query_time.
// The section stays at enabled=false when the slow query log is off.
func (c *Collector) collectSlowQueries(ctx context.Context, sn *snapshot.Snapshot) error {
	if sn.GlobalVariables["slow_query_log"] != "ON" {
		return nil
	}

	sn.SlowQueries.Enabled = true
	sn.SlowQueries.LogFile = sn.GlobalVariables["slow_query_log_file"]
	sn.SlowQueries.LogNotUsingIndexes = coerce.Bool(sn.GlobalVariables["log_queries_not_using_indexes"])
	sn.SlowQueries.Count = coerce.Int64(sn.GlobalStatus["Slow_queries"])

	longQueryTime := coerce.Float64(sn.GlobalVariables["long_query_time"])
	if longQueryTime == 0 {
		longQueryTime = 10
	}
	sn.SlowQueries.LongQueryTime = longQueryTime

	q := queryTopSlowQueries(longQueryTime)
	c.Debugf("executing query: '%s'", q)

	top := []snapshot.SlowQueryDigest{}
	var row snapshot.SlowQueryDigest
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "DIGEST_TEXT":
			row.Digest = value
		case "COUNT_STAR":
			row.Calls = coerce.Int64(value)
		case "SUM_TIMER_WAIT":
			row.TimerWait = coerce.Int64(value)
		case "MAX_TIMER_WAIT":
			row.MaxTimerWait = coerce.Int64(value)
		case "AVG_TIMER_WAIT":
			row.AvgTimerWait = coerce.Int64(value)
		case "SUM_ROWS_EXAMINED":
			row.RowsExamined = coerce.Int64(value)
		case "SUM_ROWS_SENT":
			row.RowsSent = coerce.Int64(value)
		}
		if lineEnd {
			top = append(top, row)
			row = snapshot.SlowQueryDigest{}
		}
	})
	if err != nil {
		c.Debugf("error on collecting slow query digests: %v", err)
		return nil
	}

	sn.SlowQueries.Top = top
	return nil
}
