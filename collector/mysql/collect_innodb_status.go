// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

const queryShowEngineInnoDBStatus = "SHOW ENGINE INNODB STATUS;"

// innoDBStatusFields are extracted from the free form SHOW ENGINE INNODB
// STATUS output. Each field is matched independently: the output's layout
// differs between versions and flavors, and a section missing from the text
// only drops that field, never its neighbors.
var innoDBStatusFields = []struct {
	name string
	re   *regexp.Regexp
}{
	{"history_list_length", regexp.MustCompile(`History list length (\d+)`)},
	{"pending_log_flushes", regexp.MustCompile(`Pending flushes \(fsync\) log: (\d+)`)},
	{"log_sequence_number", regexp.MustCompile(`Log sequence number\s+(\d+)`)},
	{"log_flushed_up_to", regexp.MustCompile(`Log flushed up to\s+(\d+)`)},
	{"last_checkpoint_at", regexp.MustCompile(`Last checkpoint at\s+(\d+)`)},
	{"pending_aio_reads", regexp.MustCompile(`Pending normal aio reads: (\d+)`)},
	{"pending_aio_writes", regexp.MustCompile(`Pending normal aio writes: (\d+)`)},
	{"mutex_spin_waits", regexp.MustCompile(`Mutex spin waits (\d+)`)},
	{"mutex_spin_rounds", regexp.MustCompile(`Mutex spin rounds (\d+)`)},
	{"transaction_id_counter", regexp.MustCompile(`Trx id counter (\d+)`)},
}

func parseInnoDBStatus(text string) map[string]int64 {
	parsed := make(map[string]int64)

	for _, field := range innoDBStatusFields {
		m := field.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		parsed[field.name] = v
	}

	// always present, 1 when the status text carries a deadlock section
	if strings.Contains(text, "LATEST DETECTED DEADLOCK") {
		parsed["has_recent_deadlock"] = 1
	} else {
		parsed["has_recent_deadlock"] = 0
	}

	return parsed
}

func (c *Collector) collectInnoDBStatus(ctx context.Context, sn *snapshot.Snapshot) error {
	q := queryShowEngineInnoDBStatus
	c.Debugf("executing query: '%s'", q)

	var text string
	err := c.collectQuery(ctx, q, func(column, value string, _ bool) {
		if column == "Status" {
			text = value
		}
	})
	if err != nil {
		return err
	}

	sn.InnoDBStatus = parseInnoDBStatus(text)
	return nil
}
