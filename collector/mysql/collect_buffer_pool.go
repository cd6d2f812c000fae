// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/coerce"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryBufferPoolStats = `
SELECT
  POOL_ID,
  POOL_SIZE,
  FREE_BUFFERS,
  DATABASE_PAGES,
  OLD_DATABASE_PAGES,
  MODIFIED_DATABASE_PAGES,
  PENDING_READS,
  NUMBER_PAGES_READ,
  NUMBER_PAGES_CREATED,
  NUMBER_PAGES_WRITTEN,
  HIT_RATE
FROM information_schema.INNODB_BUFFER_POOL_STATS;`

func (c *Collector) collectBufferPool(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryBufferPoolStats
	c.Debugf("executing query: '%s'", q)

	pools := []snapshot.BufferPoolInstance{}
	var row snapshot.BufferPoolInstance
	err := c.collectQuery(ctx, q, func(column, value string, lineEnd bool) {
		switch column {
		case "POOL_ID":
			row.ID = coerce.Int64(value)
		case "POOL_SIZE":
			row.Size = coerce.Int64(value)
		case "FREE_BUFFERS":
			row.FreeBuffers = coerce.Int64(value)
		case "DATABASE_PAGES":
			row.DatabasePages = coerce.Int64(value)
		case "OLD_DATABASE_PAGES":
			row.OldPages = coerce.Int64(value)
		case "MODIFIED_DATABASE_PAGES":
			row.ModifiedPages = coerce.Int64(value)
		case "PENDING_READS":
			row.PendingReads = coerce.Int64(value)
		case "NUMBER_PAGES_READ":
			row.PagesRead = coerce.Int64(value)
		case "NUMBER_PAGES_CREATED":
			row.PagesCreated = coerce.Int64(value)
		case "NUMBER_PAGES_WRITTEN":
			row.PagesWritten = coerce.Int64(value)
		case "HIT_RATE":
			row.HitRate = coerce.Float64(value)
		}
		if lineEnd {
			pools = append(pools, row)
			row = snapshot.BufferPoolInstance{}
		}
	})
	if err != nil {
		return err
	}

	pool := snapshot.BufferPool{
		PoolCount: int64(len(pools)),
		Pools:     pools,
	}
	var hitRateSum float64
	for _, p := range pools {
		pool.TotalSize += p.Size
		pool.TotalFree += p.FreeBuffers
		pool.TotalDatabasePages += p.DatabasePages
		pool.TotalDirtyPages += p.ModifiedPages
		hitRateSum += p.HitRate
	}
	if len(pools) > 0 {
		pool.AvgHitRate = hitRateSum / float64(len(pools))
	}
	pool.UsagePct = bufferPoolUsagePct(pool.TotalSize, pool.TotalFree)
	pool.DirtyPct = bufferPoolDirtyPct(pool.TotalDirtyPages, pool.TotalSize)

	sn.BufferPool = pool
	return nil
}
