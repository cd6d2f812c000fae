// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/blang/semver/v4"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const (
	queryShowMasterStatus  = "SHOW MASTER STATUS;"
	queryShowReplicaStatus = "SHOW REPLICA STATUS;"
	queryShowSlaveStatus   = "SHOW SLAVE STATUS;"
)

// collectReplication fills both sides of the replication picture. A server
// that is neither a primary nor a replica leaves the section empty. The two
// sub-queries fail independently.
func (c *Collector) collectReplication(ctx context.Context, sn *snapshot.Snapshot) error {
	if err := c.collectPrimaryStatus(ctx, sn); err != nil {
		c.Debugf("error on collecting master status: %v", err)
	}
	if err := c.collectReplicaStatus(ctx, sn); err != nil {
		c.Debugf("error on collecting slave status: %v", err)
	}
	return nil
}

func (c *Collector) collectPrimaryStatus(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryShowMasterStatus
	c.Debugf("executing query: '%s'", q)

	var row snapshot.PrimaryStatus
	var found bool
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "File":
			row.File = value
		case "Position":
			row.Position = coerce.Int64(value)
		}
		if lineEnd {
			found = true
		}
	})
	if err != nil {
		return err
	}
	if found {
		sn.Replication.Primary = &row
	}
	return nil
}

func (c *Collector) collectReplicaStatus(ctx context.Context, sn *snapshot.Snapshot) error {
	// SHOW SLAVE STATUS was replaced in MySQL 8.0.22
	// https://dev.mysql.com/doc/refman/8.0/en/show-replica-status.html
	mysqlMinVer := semver.Version{Major: 8, Minor: 0, Patch: 22}
	q := queryShowSlaveStatus
	if !c.isMariaDB && c.version.GTE(mysqlMinVer) {
		q = queryShowReplicaStatus
	}
	c.Debugf("executing query: '%s'", q)

	var row snapshot.ReplicaStatus
	var found bool
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "Slave_IO_State", "Replica_IO_State":
			row.IOState = value
		case "Master_Host", "Source_Host":
			row.MasterHost = value
		case "Master_Port", "Source_Port":
			row.MasterPort = coerce.Int64(value)
		case "Slave_IO_Running", "Replica_IO_Running":
			row.IORunning = value
		case "Slave_SQL_Running", "Replica_SQL_Running":
			row.SQLRunning = value
		case "Seconds_Behind_Master", "Seconds_Behind_Source":
			row.SecondsBehindMaster = coerce.Int64(value)
		case "Last_IO_Error":
			row.LastIOError = value
		case "Last_SQL_Error":
			row.LastSQLError = value
		case "Exec_Master_Log_Pos", "Exec_Source_Log_Pos":
			row.ExecMasterLogPos = coerce.Int64(value)
		case "Relay_Log_Pos":
			row.RelayLogPos = coerce.Int64(value)
		}
		if lineEnd {
			found = true
		}
	})
	if err != nil {
		return err
	}
	if found {
		sn.Replication.Replica = &row
	}
	return nil
}
