// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

type collectStep struct {
	name string
	fn   func(context.Context, *snapshot.Snapshot) error
}

// collect runs one full cycle. Connection, version and the global counters
// are mandatory, their failure fails the cycle. Everything else degrades to
// the section's default value with a warning.
func (c *Collector) collect(ctx context.Context) (*snapshot.Snapshot, error) {
	if c.db == nil {
		if err := c.openConnection(ctx); err != nil {
			return nil, err
		}
	}
	if c.version == nil {
		if err := c.collectVersion(ctx); err != nil {
			return nil, fmt.Errorf("error on collecting version: %v", err)
		}
	}

	sn := snapshot.New()
	sn.CollectedAt = time.Now()

	if err := c.collectServerInfo(ctx, sn); err != nil {
		return nil, fmt.Errorf("error on collecting server info: %v", err)
	}
	if err := c.collectGlobalStatus(ctx, sn); err != nil {
		return nil, fmt.Errorf("error on collecting global status: %v", err)
	}
	if err := c.collectGlobalVariables(ctx, sn); err != nil {
		return nil, fmt.Errorf("error on collecting global variables: %v", err)
	}

	c.varPerformanceSchema = sn.GlobalVariables["performance_schema"]
	c.varDataDir = sn.GlobalVariables["datadir"]

	for _, step := range c.steps {
		if err := step.fn(ctx, sn); err != nil {
			c.Warningf("error on collecting %s: %v", step.name, err)
		}
	}

	sn.Features = snapshot.Features{
		QueryCache:  c.EnableQueryCache,
		Replication: c.EnableReplication,
	}

	return sn, nil
}
