// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dataInnoDBStatusMySQL8, _  = os.ReadFile("testdata/innodb_status_mysql8.txt")
	dataInnoDBStatusMinimal, _ = os.ReadFile("testdata/innodb_status_minimal.txt")
)

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataInnoDBStatusMySQL8":  dataInnoDBStatusMySQL8,
		"dataInnoDBStatusMinimal": dataInnoDBStatusMinimal,
	} {
		require.NotEmpty(t, data, name)
	}
}

func Test_parseInnoDBStatus(t *testing.T) {
	t.Run("full status text", func(t *testing.T) {
		parsed := parseInnoDBStatus(string(dataInnoDBStatusMySQL8))

		want := map[string]int64{
			"history_list_length":    130,
			"pending_log_flushes":    2,
			"log_sequence_number":    32902812,
			"log_flushed_up_to":      32902812,
			"last_checkpoint_at":     32902812,
			"pending_aio_reads":      3,
			"pending_aio_writes":     1,
			"mutex_spin_waits":       5672,
			"transaction_id_counter": 4321,
			"has_recent_deadlock":    1,
		}

		assert.Equal(t, want, parsed)
	})

	t.Run("fields are extracted independently", func(t *testing.T) {
		parsed := parseInnoDBStatus(string(dataInnoDBStatusMinimal))

		want := map[string]int64{
			"history_list_length":    12,
			"log_sequence_number":    19426718,
			"log_flushed_up_to":      19426718,
			"last_checkpoint_at":     19426606,
			"transaction_id_counter": 1807,
			"has_recent_deadlock":    0,
		}

		assert.Equal(t, want, parsed)

		_, ok := parsed["pending_aio_reads"]
		assert.False(t, ok)
	})

	t.Run("empty text still reports deadlock flag", func(t *testing.T) {
		parsed := parseInnoDBStatus("")

		assert.Equal(t, map[string]int64{"has_recent_deadlock": 0}, parsed)
	})
}
