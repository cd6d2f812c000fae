// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Init(t *testing.T) {
	tests := map[string]struct {
		config   Config
		wantFail bool
	}{
		"fails with default config": {
			config:   New().Config,
			wantFail: true,
		},
		"succeeds with dsn": {
			config: func() Config {
				cfg := New().Config
				cfg.DSN = "user:pass@tcp(127.0.0.1:3306)/"
				return cfg
			}(),
		},
		"succeeds with host": {
			config: func() Config {
				cfg := New().Config
				cfg.Host = "127.0.0.1"
				cfg.Username = "monitor"
				cfg.Password = "secret"
				return cfg
			}(),
		},
		"fails with malformed dsn": {
			config: func() Config {
				cfg := New().Config
				cfg.DSN = "network://unknown"
				return cfg
			}(),
			wantFail: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			collr := New()
			collr.Config = test.config

			if test.wantFail {
				assert.Error(t, collr.Init(context.Background()))
			} else {
				assert.NoError(t, collr.Init(context.Background()))
			}
		})
	}
}

func TestCollector_Init_MasksPasswordInSafeDSN(t *testing.T) {
	collr := New()
	collr.DSN = "user:secretpass@tcp(127.0.0.1:3306)/"

	require.NoError(t, collr.Init(context.Background()))

	assert.NotContains(t, collr.safeDSN, "secretpass")
	assert.Contains(t, collr.safeDSN, "user")
}

func TestCollector_Cleanup(t *testing.T) {
	t.Run("no open connection", func(t *testing.T) {
		assert.NotPanics(t, func() { New().Cleanup(context.Background()) })
	})

	t.Run("closes open connection", func(t *testing.T) {
		collr, mock := prepareCollector(t)
		mock.ExpectClose()

		collr.Cleanup(context.Background())

		assert.Nil(t, collr.db)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCollector_Check(t *testing.T) {
	t.Run("success when version query succeeds", func(t *testing.T) {
		collr, mock := prepareCollector(t)
		mockExpectVersion(mock, "8.0.36", "MySQL Community Server - GPL")

		assert.NoError(t, collr.Check(context.Background()))
		assert.Equal(t, "8.0.36", collr.version.String())
		assert.False(t, collr.isMariaDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when version query fails", func(t *testing.T) {
		collr, mock := prepareCollector(t)
		mock.ExpectQuery(queryShowVersion).WillReturnError(errors.New("no privileges"))

		assert.Error(t, collr.Check(context.Background()))
	})

	t.Run("detects mariadb flavor", func(t *testing.T) {
		collr, mock := prepareCollector(t)
		mockExpectVersion(mock, "10.8.4-MariaDB", "mariadb.org binary distribution")

		assert.NoError(t, collr.Check(context.Background()))
		assert.True(t, collr.isMariaDB)
	})
}

func TestCollector_Collect(t *testing.T) {
	collr, mock := prepareCollector(t)
	mockExpectFullCycle(t, mock, collr)

	sn, err := collr.Collect(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sn)

	assert.Equal(t, "8.0.36", sn.ServerInfo.Version)
	assert.Equal(t, "db1", sn.ServerInfo.Hostname)
	assert.Equal(t, int64(86400), sn.ServerInfo.Uptime)

	assert.Equal(t, "151", sn.GlobalVariables["max_connections"])
	assert.Equal(t, "12345", sn.GlobalStatus["Queries"])

	assert.Equal(t, int64(130), sn.InnoDBStatus["history_list_length"])
	assert.Equal(t, int64(0), sn.InnoDBStatus["has_recent_deadlock"])

	assert.True(t, sn.Performance.Enabled)
	require.Len(t, sn.Performance.TopStatements, 1)
	assert.Equal(t, "SELECT * FROM `users`", sn.Performance.TopStatements[0].Digest)

	require.Len(t, sn.ProcessList, 1)
	assert.Equal(t, "monitor", sn.ProcessList[0].User)

	require.NotNil(t, sn.Replication.Primary)
	assert.Equal(t, "binlog.000042", sn.Replication.Primary.File)
	assert.Nil(t, sn.Replication.Replica)

	assert.Contains(t, sn.DatabaseSizes, "shop")
	assert.Equal(t, int64(42), sn.DatabaseSizes["shop"].TableCount)

	require.Len(t, sn.TableStats.Largest, 1)
	assert.Equal(t, "orders", sn.TableStats.Largest[0].Name)

	// query cache removed in this server version
	assert.False(t, sn.QueryCache.Enabled)

	assert.True(t, sn.BinlogInfo.Enabled)
	assert.Equal(t, int64(2), sn.BinlogInfo.FileCount)
	assert.Equal(t, int64(1500), sn.BinlogInfo.TotalSize)
	assert.Equal(t, "binlog.000042", sn.BinlogInfo.CurrentFile)

	assert.Equal(t, int64(10), sn.ConnectionPool.Total)
	assert.InDelta(t, 13.245, sn.ConnectionPool.UsagePct, 0.01)

	assert.False(t, sn.SlowQueries.Enabled)

	assert.Empty(t, sn.LockWaits.Current)
	assert.Equal(t, int64(50), sn.LockWaits.Timeout)
	assert.Equal(t, int64(7), sn.LockWaits.RowLockWaits)

	assert.Equal(t, int64(1), sn.BufferPool.PoolCount)
	assert.Equal(t, int64(8192), sn.BufferPool.TotalSize)

	assert.Equal(t, int64(1), sn.Transactions.Count)
	assert.Equal(t, "REPEATABLE-READ", sn.Transactions.IsolationLevel)
	assert.Equal(t, int64(100), sn.Transactions.Commits)

	assert.Contains(t, sn.StorageEngines.InUse, "InnoDB")
	assert.Contains(t, sn.StorageEngines.Available, "InnoDB")

	assert.True(t, sn.Features.QueryCache)
	assert.True(t, sn.Features.Replication)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollector_Collect_FailsOnGlobalStatusError(t *testing.T) {
	collr, mock := prepareCollector(t)

	mockExpectVersion(mock, "8.0.36", "MySQL Community Server - GPL")
	mockExpectServerInfo(mock)
	mock.ExpectQuery(queryShowGlobalStatus).WillReturnError(errors.New("server has gone away"))

	sn, err := collr.Collect(context.Background())

	assert.Error(t, err)
	assert.Nil(t, sn)
}

func TestCollector_Collect_FailsOnVersionError(t *testing.T) {
	collr, mock := prepareCollector(t)
	mock.ExpectQuery(queryShowVersion).WillReturnError(errors.New("access denied"))

	sn, err := collr.Collect(context.Background())

	assert.Error(t, err)
	assert.Nil(t, sn)
}

func TestCollector_Collect_NonFatalSectionsDegrade(t *testing.T) {
	collr, mock := prepareCollector(t)
	mockExpectFullCycleDegraded(t, mock, collr)

	sn, err := collr.Collect(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sn)

	// every failed section keeps its default value
	assert.Empty(t, sn.InnoDBStatus)
	assert.Empty(t, sn.ProcessList)
	assert.True(t, sn.Replication.Empty())
	assert.Empty(t, sn.DatabaseSizes)
	assert.Empty(t, sn.TableStats.Largest)
	assert.False(t, sn.QueryCache.Enabled)
	assert.False(t, sn.BinlogInfo.Enabled)
	assert.Empty(t, sn.LockWaits.Current)
	assert.Empty(t, sn.BufferPool.Pools)
	assert.Empty(t, sn.Transactions.Active)
	assert.Empty(t, sn.StorageEngines.InUse)

	// the mandatory sections are still there
	assert.Equal(t, "8.0.36", sn.ServerInfo.Version)
	assert.NotEmpty(t, sn.GlobalStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollector_Collect_DisabledFeatures(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	collr := New()
	collr.DSN = "monitor:secret@tcp(127.0.0.1:3306)/"
	collr.EnableReplication = false
	collr.EnableQueryCache = false
	require.NoError(t, collr.Init(context.Background()))
	collr.db = db

	mockExpectFullCycleNoFeatures(t, mock, collr)

	sn, err := collr.Collect(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sn)

	assert.True(t, sn.Replication.Empty())
	assert.False(t, sn.QueryCache.Enabled)
	assert.False(t, sn.Features.QueryCache)
	assert.False(t, sn.Features.Replication)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func prepareCollector(t *testing.T) (*Collector, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	collr := New()
	collr.DSN = "monitor:secret@tcp(127.0.0.1:3306)/"
	require.NoError(t, collr.Init(context.Background()))
	collr.db = db

	return collr, mock
}

func mockExpectVersion(mock sqlmock.Sqlmock, version, comment string) {
	rows := sqlmock.NewRows([]string{"Variable_name", "Value"}).
		AddRow("version", version).
		AddRow("version_comment", comment)
	mock.ExpectQuery(queryShowVersion).WillReturnRows(rows)
}

func mockExpectServerInfo(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"version", "hostname", "datadir", "server_time"}).
		AddRow("8.0.36", "db1", "/var/lib/mysql/", "2024-05-01 10:00:00")
	mock.ExpectQuery(queryServerInfo).WillReturnRows(rows)

	uptime := sqlmock.NewRows([]string{"Variable_name", "Value"}).
		AddRow("Uptime", "86400")
	mock.ExpectQuery(queryUptime).WillReturnRows(uptime)
}

func kvRows(pairs ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"Variable_name", "Value"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func mockExpectGlobals(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(queryShowGlobalStatus).WillReturnRows(kvRows(
		"Queries", "12345",
		"Uptime", "86400",
		"Max_used_connections", "20",
		"Slow_queries", "3",
		"Innodb_row_lock_waits", "7",
		"Innodb_row_lock_time", "1400",
		"Innodb_row_lock_time_avg", "200",
		"Innodb_row_lock_time_max", "900",
		"Table_locks_waited", "1",
		"Com_commit", "100",
		"Com_rollback", "5",
		"Com_rollback_to_savepoint", "0",
		"Com_savepoint", "2",
	))
	mock.ExpectQuery(queryShowGlobalVariables).WillReturnRows(kvRows(
		"max_connections", "151",
		"datadir", "/var/lib/mysql/",
		"performance_schema", "ON",
		"log_bin", "ON",
		"binlog_format", "ROW",
		"slow_query_log", "OFF",
		"innodb_lock_wait_timeout", "50",
	))
}

// mockExpectFullCycle sets up every query of a healthy collection cycle, in
// the order the collector runs them.
func mockExpectFullCycle(t *testing.T, mock sqlmock.Sqlmock, collr *Collector) {
	t.Helper()

	mockExpectVersion(mock, "8.0.36", "MySQL Community Server - GPL")
	mockExpectServerInfo(mock)
	mockExpectGlobals(mock)

	innodb := sqlmock.NewRows([]string{"Type", "Name", "Status"}).
		AddRow("InnoDB", "", "History list length 130\nLog sequence number 123456789\n")
	mock.ExpectQuery(queryShowEngineInnoDBStatus).WillReturnRows(innodb)

	statements := sqlmock.NewRows([]string{
		"DIGEST_TEXT", "COUNT_STAR", "SUM_TIMER_WAIT", "SUM_LOCK_TIME",
		"SUM_ROWS_AFFECTED", "SUM_ROWS_SENT", "SUM_ROWS_EXAMINED",
	}).AddRow("SELECT * FROM `users`", "100", "5000000", "1000", "0", "100", "200")
	mock.ExpectQuery(queryTopStatements).WillReturnRows(statements)

	tableIO := sqlmock.NewRows([]string{
		"OBJECT_SCHEMA", "OBJECT_NAME", "COUNT_STAR", "SUM_TIMER_WAIT", "COUNT_READ",
		"COUNT_WRITE", "COUNT_FETCH", "COUNT_INSERT", "COUNT_UPDATE", "COUNT_DELETE",
	}).AddRow("shop", "orders", "50", "900000", "40", "10", "40", "5", "4", "1")
	mock.ExpectQuery(collr.queryTableIOSummary()).WillReturnRows(tableIO)

	fileIO := sqlmock.NewRows([]string{
		"FILE_NAME", "COUNT_STAR", "SUM_TIMER_WAIT", "COUNT_READ",
		"COUNT_WRITE", "SUM_NUMBER_OF_BYTES_READ", "SUM_NUMBER_OF_BYTES_WRITE",
	}).AddRow("/var/lib/mysql/ibdata1", "10", "200", "5", "5", "4096", "8192")
	mock.ExpectQuery(queryFileIOSummary).WillReturnRows(fileIO)

	users := sqlmock.NewRows([]string{"USER", "CURRENT_CONNECTIONS", "TOTAL_CONNECTIONS"}).
		AddRow("monitor", "1", "42")
	mock.ExpectQuery(queryUserSummary).WillReturnRows(users)

	processes := sqlmock.NewRows([]string{"ID", "USER", "HOST", "DB", "COMMAND", "TIME", "STATE", "INFO"}).
		AddRow("7", "monitor", "localhost:5432", "shop", "Query", "2", "executing", "SELECT 1")
	mock.ExpectQuery(queryProcessListPS).WillReturnRows(processes)

	master := sqlmock.NewRows([]string{"File", "Position", "Binlog_Do_DB", "Binlog_Ignore_DB"}).
		AddRow("binlog.000042", "157", "", "")
	mock.ExpectQuery(queryShowMasterStatus).WillReturnRows(master)

	replica := sqlmock.NewRows([]string{"Replica_IO_State", "Source_Host"})
	mock.ExpectQuery(queryShowReplicaStatus).WillReturnRows(replica)

	sizes := sqlmock.NewRows([]string{
		"db_name", "table_count", "total_rows", "data_size", "index_size", "total_size", "free_size",
	}).AddRow("shop", "42", "100000", "1048576", "524288", "1572864", "0")
	mock.ExpectQuery(collr.queryDatabaseSizes()).WillReturnRows(sizes)

	largest := sqlmock.NewRows([]string{
		"table_schema", "table_name", "table_rows", "data_length", "index_length", "total_size", "data_free",
	}).AddRow("shop", "orders", "50000", "1048576", "262144", "1310720", "0")
	mock.ExpectQuery(collr.queryLargestTables()).WillReturnRows(largest)

	fragmented := sqlmock.NewRows([]string{
		"table_schema", "table_name", "data_free", "total_size", "fragmentation_pct",
	}).AddRow("shop", "logs", "65536", "1048576", "6.25")
	mock.ExpectQuery(collr.queryFragmentedTables()).WillReturnRows(fragmented)

	withoutPK := sqlmock.NewRows([]string{"table_schema", "table_name", "table_rows", "total_size"})
	mock.ExpectQuery(collr.queryTablesWithoutPK()).WillReturnRows(withoutPK)

	// query cache is removed in MySQL 8.0
	mock.ExpectQuery(queryQueryCacheVariables).WillReturnRows(kvRows())

	binlogs := sqlmock.NewRows([]string{"Log_name", "File_size"}).
		AddRow("binlog.000041", "1000").
		AddRow("binlog.000042", "500")
	mock.ExpectQuery(queryShowBinaryLogs).WillReturnRows(binlogs)

	master2 := sqlmock.NewRows([]string{"File", "Position"}).
		AddRow("binlog.000042", "157")
	mock.ExpectQuery(queryShowMasterStatus).WillReturnRows(master2)

	pool := sqlmock.NewRows([]string{
		"total_connections", "idle_connections", "active_connections",
		"max_connection_time", "avg_connection_time",
	}).AddRow("10", "7", "3", "120", "14.5000")
	mock.ExpectQuery(queryConnectionPool).WillReturnRows(pool)

	lockWaits := sqlmock.NewRows([]string{
		"waiting_trx_id", "waiting_pid", "waiting_query", "blocking_trx_id",
		"blocking_pid", "blocking_query", "wait_started", "wait_age_secs",
		"locked_table", "locked_index",
	})
	mock.ExpectQuery(querySysLockWaits).WillReturnRows(lockWaits)

	buffer := sqlmock.NewRows([]string{
		"POOL_ID", "POOL_SIZE", "FREE_BUFFERS", "DATABASE_PAGES", "OLD_DATABASE_PAGES",
		"MODIFIED_DATABASE_PAGES", "PENDING_READS", "NUMBER_PAGES_READ",
		"NUMBER_PAGES_CREATED", "NUMBER_PAGES_WRITTEN", "HIT_RATE",
	}).AddRow("0", "8192", "1024", "7000", "2500", "100", "0", "5000", "2000", "3000", "1000")
	mock.ExpectQuery(queryBufferPoolStats).WillReturnRows(buffer)

	trx := sqlmock.NewRows([]string{
		"trx_id", "trx_state", "trx_started", "trx_mysql_thread_id", "trx_query",
		"trx_operation_state", "trx_tables_in_use", "trx_tables_locked",
		"trx_rows_locked", "trx_rows_modified",
	}).AddRow("421", "RUNNING", "2024-05-01 09:59:58", "7", "UPDATE orders SET total = 1", "", "1", "1", "1", "1")
	mock.ExpectQuery(queryInnoDBTrx).WillReturnRows(trx)

	isolation := sqlmock.NewRows([]string{"isolation_level"}).AddRow("REPEATABLE-READ")
	mock.ExpectQuery(queryTransactionIsolation).WillReturnRows(isolation)

	engines := sqlmock.NewRows([]string{
		"ENGINE", "table_count", "total_data_size", "total_index_size", "total_size",
	}).AddRow("InnoDB", "42", "1048576", "524288", "1572864")
	mock.ExpectQuery(collr.queryEnginesInUse()).WillReturnRows(engines)

	available := sqlmock.NewRows([]string{
		"Engine", "Support", "Comment", "Transactions", "XA", "Savepoints",
	}).AddRow("InnoDB", "DEFAULT", "Supports transactions", "YES", "YES", "YES")
	mock.ExpectQuery(queryShowEngines).WillReturnRows(available)
}

// mockExpectFullCycleDegraded fails every non-mandatory query.
func mockExpectFullCycleDegraded(t *testing.T, mock sqlmock.Sqlmock, collr *Collector) {
	t.Helper()

	errTable := errors.New("table doesn't exist")

	mockExpectVersion(mock, "8.0.36", "MySQL Community Server - GPL")
	mockExpectServerInfo(mock)
	mockExpectGlobals(mock)

	mock.ExpectQuery(queryShowEngineInnoDBStatus).WillReturnError(errTable)
	mock.ExpectQuery(queryTopStatements).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryTableIOSummary()).WillReturnError(errTable)
	mock.ExpectQuery(queryFileIOSummary).WillReturnError(errTable)
	mock.ExpectQuery(queryUserSummary).WillReturnError(errTable)
	mock.ExpectQuery(queryProcessListPS).WillReturnError(errTable)
	mock.ExpectQuery(queryShowMasterStatus).WillReturnError(errTable)
	mock.ExpectQuery(queryShowReplicaStatus).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryDatabaseSizes()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryLargestTables()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryFragmentedTables()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryTablesWithoutPK()).WillReturnError(errTable)
	mock.ExpectQuery(queryQueryCacheVariables).WillReturnError(errTable)
	mock.ExpectQuery(queryShowBinaryLogs).WillReturnError(errTable)
	mock.ExpectQuery(queryConnectionPool).WillReturnError(errTable)
	mock.ExpectQuery(querySysLockWaits).WillReturnError(errTable)
	mock.ExpectQuery(queryInnoDBLockWaits).WillReturnError(errTable)
	mock.ExpectQuery(queryBufferPoolStats).WillReturnError(errTable)
	mock.ExpectQuery(queryInnoDBTrx).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryEnginesInUse()).WillReturnError(errTable)
}

// mockExpectFullCycleNoFeatures is a cycle with replication and query cache
// collection disabled by configuration.
func mockExpectFullCycleNoFeatures(t *testing.T, mock sqlmock.Sqlmock, collr *Collector) {
	t.Helper()

	errTable := errors.New("table doesn't exist")

	mockExpectVersion(mock, "8.0.36", "MySQL Community Server - GPL")
	mockExpectServerInfo(mock)
	mockExpectGlobals(mock)

	mock.ExpectQuery(queryShowEngineInnoDBStatus).WillReturnError(errTable)
	mock.ExpectQuery(queryTopStatements).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryTableIOSummary()).WillReturnError(errTable)
	mock.ExpectQuery(queryFileIOSummary).WillReturnError(errTable)
	mock.ExpectQuery(queryUserSummary).WillReturnError(errTable)
	mock.ExpectQuery(queryProcessListPS).WillReturnError(errTable)
	// no replication and no query cache queries in between
	mock.ExpectQuery(collr.queryDatabaseSizes()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryLargestTables()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryFragmentedTables()).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryTablesWithoutPK()).WillReturnError(errTable)
	mock.ExpectQuery(queryShowBinaryLogs).WillReturnError(errTable)
	mock.ExpectQuery(queryConnectionPool).WillReturnError(errTable)
	mock.ExpectQuery(querySysLockWaits).WillReturnError(errTable)
	mock.ExpectQuery(queryInnoDBLockWaits).WillReturnError(errTable)
	mock.ExpectQuery(queryBufferPoolStats).WillReturnError(errTable)
	mock.ExpectQuery(queryInnoDBTrx).WillReturnError(errTable)
	mock.ExpectQuery(collr.queryEnginesInUse()).WillReturnError(errTable)
}
