// SPDX-License-Identifier: GPL-3.0-or-later

// Package snapshot defines the structured result of one collection cycle.
//
// A Snapshot is constructed fresh each cycle and is immutable once returned.
// Every section is always present; a collector that fails or is disabled
// leaves its section at the documented empty/default value, so consumers only
// ever check for emptiness, never for key absence.
package snapshot

import "time"

type ServerInfo struct {
	Version    string `json:"version"`
	Hostname   string `json:"hostname"`
	DataDir    string `json:"datadir"`
	ServerTime string `json:"current_time"`
	Uptime     int64  `json:"uptime"`
}

type StatementDigest struct {
	Digest       string `json:"digest_text"`
	Calls        int64  `json:"count_star"`
	TimerWait    int64  `json:"sum_timer_wait"`
	LockTime     int64  `json:"sum_lock_time"`
	RowsAffected int64  `json:"sum_rows_affected"`
	RowsSent     int64  `json:"sum_rows_sent"`
	RowsExamined int64  `json:"sum_rows_examined"`
}

type TableIOSummary struct {
	Schema    string `json:"object_schema"`
	Table     string `json:"object_name"`
	Count     int64  `json:"count_star"`
	TimerWait int64  `json:"sum_timer_wait"`
	Reads     int64  `json:"count_read"`
	Writes    int64  `json:"count_write"`
	Fetches   int64  `json:"count_fetch"`
	Inserts   int64  `json:"count_insert"`
	Updates   int64  `json:"count_update"`
	Deletes   int64  `json:"count_delete"`
}

type FileIOSummary struct {
	File         string `json:"file_name"`
	Count        int64  `json:"count_star"`
	TimerWait    int64  `json:"sum_timer_wait"`
	Reads        int64  `json:"count_read"`
	Writes       int64  `json:"count_write"`
	BytesRead    int64  `json:"sum_number_of_bytes_read"`
	BytesWritten int64  `json:"sum_number_of_bytes_write"`
}

type UserSummary struct {
	User               string `json:"user"`
	CurrentConnections int64  `json:"current_connections"`
	TotalConnections   int64  `json:"total_connections"`
}

// PerformanceData aggregates performance_schema digests. Each list is
// independently best-effort: a missing sub-table leaves it empty.
type PerformanceData struct {
	Enabled       bool              `json:"enabled"`
	TopStatements []StatementDigest `json:"top_statements"`
	TableIO       []TableIOSummary  `json:"table_io_summary"`
	FileIO        []FileIOSummary   `json:"file_io_summary"`
	Users         []UserSummary     `json:"user_summary"`
}

type Process struct {
	ID      int64  `json:"id"`
	User    string `json:"user"`
	Host    string `json:"host"`
	DB      string `json:"db"`
	Command string `json:"command"`
	Time    int64  `json:"time"`
	State   string `json:"state"`
	Info    string `json:"info"`
}

type PrimaryStatus struct {
	File     string `json:"file"`
	Position int64  `json:"position"`
}

type ReplicaStatus struct {
	IOState             string `json:"slave_io_state"`
	MasterHost          string `json:"master_host"`
	MasterPort          int64  `json:"master_port"`
	IORunning           string `json:"slave_io_running"`
	SQLRunning          string `json:"slave_sql_running"`
	SecondsBehindMaster int64  `json:"seconds_behind_master"`
	LastIOError         string `json:"last_io_error"`
	LastSQLError        string `json:"last_sql_error"`
	ExecMasterLogPos    int64  `json:"exec_master_log_pos"`
	RelayLogPos         int64  `json:"relay_log_pos"`
}

// ReplicationStatus is empty (both nil) when the server has no replication
// configured or replication monitoring is disabled.
type ReplicationStatus struct {
	Primary *PrimaryStatus `json:"master,omitempty"`
	Replica *ReplicaStatus `json:"slave,omitempty"`
}

func (r ReplicationStatus) Empty() bool { return r.Primary == nil && r.Replica == nil }

type DiskUsage struct {
	Total   int64   `json:"total"`
	Used    int64   `json:"used"`
	Free    int64   `json:"free"`
	Percent float64 `json:"percent"`
}

type ServerProcess struct {
	PID           int32   `json:"pid"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryRSS     int64   `json:"memory_rss"`
	MemoryVMS     int64   `json:"memory_vms"`
	MemoryPercent float64 `json:"memory_percent"`
	Threads       int64   `json:"num_threads"`
	Connections   int64   `json:"connections"`
	IOReadCount   int64   `json:"io_read_count"`
	IOWriteCount  int64   `json:"io_write_count"`
	IOReadBytes   int64   `json:"io_read_bytes"`
	IOWriteBytes  int64   `json:"io_write_bytes"`
}

// SystemResources holds host level usage. Sub-parts are independently
// best-effort: Process and DataDir stay nil when unavailable.
type SystemResources struct {
	CPUPercent      float64        `json:"cpu_percent"`
	CPUCount        int64          `json:"cpu_count"`
	MemoryTotal     int64          `json:"memory_total"`
	MemoryUsed      int64          `json:"memory_used"`
	MemoryAvailable int64          `json:"memory_available"`
	MemoryPercent   float64        `json:"memory_percent"`
	Load1           float64        `json:"load_1m"`
	Load5           float64        `json:"load_5m"`
	Load15          float64        `json:"load_15m"`
	Process         *ServerProcess `json:"mysql_process,omitempty"`
	DataDir         *DiskUsage     `json:"datadir_usage,omitempty"`
}

type DatabaseSize struct {
	TableCount int64 `json:"table_count"`
	TotalRows  int64 `json:"total_rows"`
	DataSize   int64 `json:"data_size"`
	IndexSize  int64 `json:"index_size"`
	TotalSize  int64 `json:"total_size"`
	FreeSize   int64 `json:"free_size"`
}

type TableInfo struct {
	Schema           string  `json:"table_schema"`
	Name             string  `json:"table_name"`
	Rows             int64   `json:"table_rows"`
	DataSize         int64   `json:"data_length"`
	IndexSize        int64   `json:"index_length"`
	TotalSize        int64   `json:"total_size"`
	DataFree         int64   `json:"data_free"`
	FragmentationPct float64 `json:"fragmentation_pct,omitempty"`
}

type TableStats struct {
	Largest           []TableInfo `json:"largest_tables"`
	Fragmented        []TableInfo `json:"fragmented_tables"`
	WithoutPrimaryKey []TableInfo `json:"tables_without_pk"`
}

type QueryCache struct {
	Enabled        bool    `json:"enabled"`
	Size           int64   `json:"size"`
	Limit          int64   `json:"limit"`
	Hits           int64   `json:"hits"`
	Inserts        int64   `json:"inserts"`
	HitRate        float64 `json:"hit_rate"`
	QueriesInCache int64   `json:"queries_in_cache"`
	FreeMemory     int64   `json:"free_memory"`
	FreeBlocks     int64   `json:"free_blocks"`
	TotalBlocks    int64   `json:"total_blocks"`
}

type BinlogFile struct {
	Name string `json:"log_name"`
	Size int64  `json:"file_size"`
}

type BinlogInfo struct {
	Enabled         bool         `json:"enabled"`
	Error           string       `json:"error,omitempty"`
	Format          string       `json:"format,omitempty"`
	Files           []BinlogFile `json:"log_files"`
	FileCount       int64        `json:"log_count"`
	TotalSize       int64        `json:"total_size"`
	CurrentFile     string       `json:"current_log,omitempty"`
	CurrentPosition int64        `json:"current_position"`
}

type ConnectionPool struct {
	Total              int64   `json:"total_connections"`
	Idle               int64   `json:"idle_connections"`
	Active             int64   `json:"active_connections"`
	MaxTime            int64   `json:"max_connection_time"`
	AvgTime            float64 `json:"avg_connection_time"`
	MaxConnections     int64   `json:"max_connections"`
	MaxUsedConnections int64   `json:"max_used_connections"`
	UsagePct           float64 `json:"connection_usage_pct"`
}

type SlowQueryDigest struct {
	Digest       string `json:"digest_text"`
	Calls        int64  `json:"count_star"`
	TimerWait    int64  `json:"sum_timer_wait"`
	MaxTimerWait int64  `json:"max_timer_wait"`
	AvgTimerWait int64  `json:"avg_timer_wait"`
	RowsExamined int64  `json:"sum_rows_examined"`
	RowsSent     int64  `json:"sum_rows_sent"`
}

type SlowQueries struct {
	Enabled            bool              `json:"enabled"`
	LogFile            string            `json:"slow_query_log_file,omitempty"`
	LongQueryTime      float64           `json:"long_query_time"`
	LogNotUsingIndexes bool              `json:"log_queries_not_using_indexes"`
	Count              int64             `json:"slow_query_count"`
	Top                []SlowQueryDigest `json:"top_slow_queries"`
}

type LockWait struct {
	WaitingTrxID  string `json:"waiting_trx_id"`
	WaitingPID    int64  `json:"waiting_pid"`
	WaitingQuery  string `json:"waiting_query"`
	BlockingTrxID string `json:"blocking_trx_id"`
	BlockingPID   int64  `json:"blocking_pid"`
	BlockingQuery string `json:"blocking_query"`
	WaitStarted   string `json:"wait_started"`
	WaitAgeSecs   int64  `json:"wait_age_secs,omitempty"`
	LockedTable   string `json:"locked_table,omitempty"`
	LockedIndex   string `json:"locked_index,omitempty"`
}

type LockWaits struct {
	Current          []LockWait `json:"current_lock_waits"`
	Timeout          int64      `json:"lock_wait_timeout"`
	RowLockWaits     int64      `json:"innodb_row_lock_waits"`
	RowLockTime      int64      `json:"innodb_row_lock_time"`
	RowLockTimeAvg   int64      `json:"innodb_row_lock_time_avg"`
	RowLockTimeMax   int64      `json:"innodb_row_lock_time_max"`
	TableLocksWaited int64      `json:"table_locks_waited"`
}

type BufferPoolInstance struct {
	ID            int64   `json:"pool_id"`
	Size          int64   `json:"pool_size"`
	FreeBuffers   int64   `json:"free_buffers"`
	DatabasePages int64   `json:"database_pages"`
	OldPages      int64   `json:"old_database_pages"`
	ModifiedPages int64   `json:"modified_database_pages"`
	PendingReads  int64   `json:"pending_reads"`
	PagesRead     int64   `json:"number_pages_read"`
	PagesCreated  int64   `json:"number_pages_created"`
	PagesWritten  int64   `json:"number_pages_written"`
	HitRate       float64 `json:"hit_rate"`
}

type BufferPool struct {
	PoolCount          int64                `json:"pool_count"`
	TotalSize          int64                `json:"total_size"`
	TotalFree          int64                `json:"total_free"`
	TotalDatabasePages int64                `json:"total_database_pages"`
	TotalDirtyPages    int64                `json:"total_dirty_pages"`
	AvgHitRate         float64              `json:"avg_hit_rate"`
	UsagePct           float64              `json:"usage_pct"`
	DirtyPct           float64              `json:"dirty_pct"`
	Pools              []BufferPoolInstance `json:"pools"`
}

type Transaction struct {
	ID             string    `json:"trx_id"`
	State          string    `json:"trx_state"`
	Started        time.Time `json:"trx_started"`
	ThreadID       int64     `json:"trx_mysql_thread_id"`
	Query          string    `json:"trx_query"`
	OperationState string    `json:"trx_operation_state,omitempty"`
	TablesInUse    int64     `json:"trx_tables_in_use"`
	TablesLocked   int64     `json:"trx_tables_locked"`
	RowsLocked     int64     `json:"trx_rows_locked"`
	RowsModified   int64     `json:"trx_rows_modified"`
}

type Transactions struct {
	Active               []Transaction `json:"active_transactions"`
	Count                int64         `json:"transaction_count"`
	LongRunning          []Transaction `json:"long_running_transactions"`
	IsolationLevel       string        `json:"default_isolation_level"`
	Commits              int64         `json:"com_commit"`
	Rollbacks            int64         `json:"com_rollback"`
	RollbacksToSavepoint int64         `json:"com_rollback_to_savepoint"`
	Savepoints           int64         `json:"com_savepoint"`
}

type EngineUsage struct {
	TableCount int64 `json:"table_count"`
	DataSize   int64 `json:"data_size"`
	IndexSize  int64 `json:"index_size"`
	TotalSize  int64 `json:"total_size"`
}

type EngineSupport struct {
	Support      string `json:"support"`
	Comment      string `json:"comment"`
	Transactions string `json:"transactions"`
	XA           string `json:"xa"`
	Savepoints   string `json:"savepoints"`
}

type StorageEngines struct {
	InUse     map[string]EngineUsage   `json:"engines_in_use"`
	Available map[string]EngineSupport `json:"available_engines"`
}

type Features struct {
	QueryCache  bool `json:"query_cache"`
	Replication bool `json:"replication"`
}

// Snapshot is the complete structured result of one polling cycle.
type Snapshot struct {
	ServerInfo      ServerInfo              `json:"server_info"`
	GlobalStatus    map[string]string       `json:"global_status"`
	GlobalVariables map[string]string       `json:"global_variables"`
	InnoDBStatus    map[string]int64        `json:"innodb_status"`
	Performance     PerformanceData         `json:"performance_data"`
	ProcessList     []Process               `json:"process_list"`
	Replication     ReplicationStatus       `json:"replication_status"`
	SystemResources SystemResources         `json:"system_resources"`
	DatabaseSizes   map[string]DatabaseSize `json:"database_sizes"`
	TableStats      TableStats              `json:"table_stats"`
	QueryCache      QueryCache              `json:"query_cache"`
	BinlogInfo      BinlogInfo              `json:"binlog_info"`
	ConnectionPool  ConnectionPool          `json:"connection_pool"`
	SlowQueries     SlowQueries             `json:"slow_queries"`
	LockWaits       LockWaits               `json:"lock_waits"`
	BufferPool      BufferPool              `json:"buffer_pool"`
	Transactions    Transactions            `json:"transactions"`
	StorageEngines  StorageEngines          `json:"storage_engines"`
	Features        Features                `json:"features"`
	CollectedAt     time.Time               `json:"collected_at"`
}

// New returns a Snapshot with every section at its documented empty/default
// value. Collectors fill sections in; a failed collector leaves its section
// untouched.
func New() *Snapshot {
	return &Snapshot{
		GlobalStatus:    make(map[string]string),
		GlobalVariables: make(map[string]string),
		InnoDBStatus:    make(map[string]int64),
		Performance: PerformanceData{
			TopStatements: []StatementDigest{},
			TableIO:       []TableIOSummary{},
			FileIO:        []FileIOSummary{},
			Users:         []UserSummary{},
		},
		ProcessList:   []Process{},
		DatabaseSizes: make(map[string]DatabaseSize),
		TableStats: TableStats{
			Largest:           []TableInfo{},
			Fragmented:        []TableInfo{},
			WithoutPrimaryKey: []TableInfo{},
		},
		BinlogInfo: BinlogInfo{Files: []BinlogFile{}},
		LockWaits:  LockWaits{Current: []LockWait{}},
		BufferPool: BufferPool{Pools: []BufferPoolInstance{}},
		Transactions: Transactions{
			Active:      []Transaction{},
			LongRunning: []Transaction{},
		},
		StorageEngines: StorageEngines{
			InUse:     make(map[string]EngineUsage),
			Available: make(map[string]EngineSupport),
		},
	}
}
