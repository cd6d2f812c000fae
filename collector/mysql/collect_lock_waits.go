// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const querySysLockWaits = `
SELECT
  waiting_trx_id,
  waiting_pid,
  waiting_query,
  blocking_trx_id,
  blocking_pid,
  blocking_query,
  wait_started,
  wait_age_secs,
  locked_table,
  locked_index
FROM sys.innodb_lock_waits
LIMIT 10;`

// fallback for servers without the sys schema
const queryInnoDBLockWaits = `
SELECT
  r.trx_id AS waiting_trx_id,
  r.trx_mysql_thread_id AS waiting_pid,
  r.trx_query AS waiting_query,
  b.trx_id AS blocking_trx_id,
  b.trx_mysql_thread_id AS blocking_pid,
  b.trx_query AS blocking_query,
  r.trx_wait_started AS wait_started
FROM information_schema.innodb_lock_waits w
JOIN information_schema.innodb_trx r ON w.requesting_trx_id = r.trx_id
JOIN information_schema.innodb_trx b ON w.blocking_trx_id = b.trx_id
LIMIT 10;`

func (c *Collector) collectLockWaits(ctx context.Context, sn *snapshot.Snapshot) error {
	waits, err := c.collectLockWaitRows(ctx, querySysLockWaits)
	if err != nil {
		c.Debugf("sys.innodb_lock_waits not available, falling back: %v", err)
		waits, err = c.collectLockWaitRows(ctx, queryInnoDBLockWaits)
		if err != nil {
			return err
		}
	}
	sn.LockWaits.Current = waits

	sn.LockWaits.Timeout = coerce.Int64(sn.GlobalVariables["innodb_lock_wait_timeout"])
	if sn.LockWaits.Timeout == 0 {
		sn.LockWaits.Timeout = 50
	}

	sn.LockWaits.RowLockWaits = coerce.Int64(sn.GlobalStatus["Innodb_row_lock_waits"])
	sn.LockWaits.RowLockTime = coerce.Int64(sn.GlobalStatus["Innodb_row_lock_time"])
	sn.LockWaits.RowLockTimeAvg = coerce.Int64(sn.GlobalStatus["Innodb_row_lock_time_avg"])
	sn.LockWaits.RowLockTimeMax = coerce.Int64(sn.GlobalStatus["Innodb_row_lock_time_max"])
	sn.LockWaits.TableLocksWaited = coerce.Int64(sn.GlobalStatus["Table_locks_waited"])

	return nil
}

func (c *Collector) collectLockWaitRows(ctx context.Context, q string) ([]snapshot.LockWait, error) {
	c.Debugf("executing query: '%s'", q)

	waits := []snapshot.LockWait{}
	var row snapshot.LockWait
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "waiting_trx_id":
			row.WaitingTrxID = value
		case "waiting_pid":
			row.WaitingPID = coerce.Int64(value)
		case "waiting_query":
			row.WaitingQuery = value
		case "blocking_trx_id":
			row.BlockingTrxID = value
		case "blocking_pid":
			row.BlockingPID = coerce.Int64(value)
		case "blocking_query":
			row.BlockingQuery = value
		case "wait_started":
			row.WaitStarted = value
		case "wait_age_secs":
			row.WaitAgeSecs = coerce.Int64(value)
		case "locked_table":
			row.LockedTable = value
		case "locked_index":
			row.LockedIndex = value
		}
		if lineEnd {
			waits = append(waits, row)
			row = snapshot.LockWait{}
		}
	})
	if err != nil {
		return nil, err
	}
	return waits, nil
}
