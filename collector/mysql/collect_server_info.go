// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryServerInfo = `
SELECT
  VERSION() AS version,
  @@hostname AS hostname,
  @@datadir AS datadir,
  NOW() AS server_time;`

const queryUptime = "SHOW GLOBAL STATUS LIKE 'Uptime';"

func (c *Collector) collectServerInfo(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryServerInfo
	c.Debugf("executing query: '%s'", q)

	var info snapshot.ServerInfo
	err := c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "version":
			info.Version = value
		case "hostname":
			info.Hostname = value
		case "datadir":
			info.DataDir = value
		case "server_time":
			info.ServerTime = value
		}
	})
	if err != nil {
		return err
	}

	q = queryUptime
	c.Debugf("executing query: '%s'", q)

	err = c.collectQuery(ctx, q, func(column, value string, _ bool) {
		if column == "Value" {
			info.Uptime = coerce.Int64(value)
		}
	})
	if err != nil {
		return err
	}

	sn.ServerInfo = info
	return nil
}
