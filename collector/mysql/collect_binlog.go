// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryShowBinaryLogs = "SHOW BINARY LOGS;"

// collectBinlogInfo reports binary log inventory. The section stays at
// enabled=false when log_bin is OFF.
func (c *Collector) collectBinlogInfo(ctx context.Context, sn *snapshot.Snapshot) error {
	if sn.GlobalVariables["log_bin"] != "ON" {
		return nil
	}

	sn.BinlogInfo.Enabled = true
	sn.BinlogInfo.Format = sn.GlobalVariables["binlog_format"]

	q := queryShowBinaryLogs
	c.Debugf("executing query: '%s'", q)

	var file snapshot.BinlogFile
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "Log_name":
			file.Name = value
		case "File_size":
			file.Size = coerce.Int64(value)
		}
		if lineEnd {
			sn.BinlogInfo.Files = append(sn.BinlogInfo.Files, file)
			sn.BinlogInfo.TotalSize += file.Size
			file = snapshot.BinlogFile{}
		}
	})
	if err != nil {
		sn.BinlogInfo = snapshot.BinlogInfo{Files: []snapshot.BinlogFile{}, Error: err.Error()}
		return err
	}
	sn.BinlogInfo.FileCount = int64(len(sn.BinlogInfo.Files))

	q = queryShowMasterStatus
	c.Debugf("executing query: '%s'", q)

	err = c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "File":
			sn.BinlogInfo.CurrentFile = value
		case "Position":
			sn.BinlogInfo.CurrentPosition = coerce.Int64(value)
		}
	})
	if err != nil {
		c.Debugf("error on collecting master status for binlog info: %v", err)
	}

	return nil
}
