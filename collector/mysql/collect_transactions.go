// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"time"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryInnoDBTrx = `
SELECT
  trx_id,
  trx_state,
  trx_started,
  trx_mysql_thread_id,
  trx_query,
  trx_operation_state,
  trx_tables_in_use,
  trx_tables_locked,
  trx_rows_locked,
  trx_rows_modified
FROM information_schema.INNODB_TRX
ORDER BY trx_started;`

const (
	queryTransactionIsolation = "SELECT @@transaction_isolation AS isolation_level;"
	// removed in MySQL 8.0, still present in older servers and MariaDB
	queryTxIsolation = "SELECT @@tx_isolation AS isolation_level;"
)

const longRunningTransactionAge = 60 * time.Second

// trx_started arrives in the session time zone without offset.
const trxTimeLayout = "2006-01-02 15:04:05"

func (c *Collector) collectTransactions(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryInnoDBTrx
	c.Debugf("executing query: '%s'", q)

	trxs := []snapshot.Transaction{}
	var row snapshot.Transaction
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "trx_id":
			row.ID = value
		case "trx_state":
			row.State = value
		case "trx_started":
			if t, err := time.ParseInLocation(trxTimeLayout, value, time.Local); err == nil {
				row.Started = t
			}
		case "trx_mysql_thread_id":
			row.ThreadID = coerce.Int64(value)
		case "trx_query":
			row.Query = value
		case "trx_operation_state":
			row.OperationState = value
		case "trx_tables_in_use":
			row.TablesInUse = coerce.Int64(value)
		case "trx_tables_locked":
			row.TablesLocked = coerce.Int64(value)
		case "trx_rows_locked":
			row.RowsLocked = coerce.Int64(value)
		case "trx_rows_modified":
			row.RowsModified = coerce.Int64(value)
		}
		if lineEnd {
			trxs = append(trxs, row)
			row = snapshot.Transaction{}
		}
	})
	if err != nil {
		return err
	}

	sn.Transactions.Active = trxs
	sn.Transactions.Count = int64(len(trxs))
	sn.Transactions.LongRunning = longRunningTransactions(trxs, time.Now())

	sn.Transactions.IsolationLevel = c.collectIsolationLevel(ctx)

	sn.Transactions.Commits = coerce.Int64(sn.GlobalStatus["Com_commit"])
	sn.Transactions.Rollbacks = coerce.Int64(sn.GlobalStatus["Com_rollback"])
	sn.Transactions.RollbacksToSavepoint = coerce.Int64(sn.GlobalStatus["Com_rollback_to_savepoint"])
	sn.Transactions.Savepoints = coerce.Int64(sn.GlobalStatus["Com_savepoint"])

	return nil
}

// longRunningTransactions returns the transactions open for more than a
// minute. Transactions with an unknown start time are never long running.
func longRunningTransactions(trxs []snapshot.Transaction, now time.Time) []snapshot.Transaction {
	long := []snapshot.Transaction{}
	for _, trx := range trxs {
		if trx.Started.IsZero() {
			continue
		}
		if now.Sub(trx.Started) > longRunningTransactionAge {
			long = append(long, trx)
		}
	}
	return long
}

func (c *Collector) collectIsolationLevel(ctx context.Context) string {
	for _, q := range []string{queryTransactionIsolation, queryTxIsolation} {
		c.Debugf("executing query: '%s'", q)

		var level string
		err := c.collectQuery(ctx, q, func(column, value string, _ bool) {
			if column == "isolation_level" {
				level = value
			}
		})
		if err == nil && level != "" {
			return level
		}
	}
	return "UNKNOWN"
}
