// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const (
	queryShowGlobalStatus    = "SHOW GLOBAL STATUS;"
	queryShowGlobalVariables = "SHOW GLOBAL VARIABLES;"
)

func (c *Collector) collectGlobalStatus(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryShowGlobalStatus
	c.Debugf("executing query: '%s'", q)

	var name string
	return c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "Variable_name":
			name = value
		case "Value":
			sn.GlobalStatus[name] = value
		}
	})
}

func (c *Collector) collectGlobalVariables(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryShowGlobalVariables
	c.Debugf("executing query: '%s'", q)

	var name string
	return c.collectQuery(ctx, q, func(column, value string, _ bool) {
		switch column {
		case "Variable_name":
			name = value
		case "Value":
			sn.GlobalVariables[name] = value
		}
	})
}
