// SPDX-License-Identifier: GPL-3.0-or-later

// Package coerce converts loosely typed wire protocol values into numbers.
// MySQL returns most counters as text, the driver returns NULLs for optional
// columns, and information_schema aggregates come back as DECIMAL strings.
// Every conversion falls back to the zero value instead of failing.
package coerce

import (
	"database/sql"
	"strconv"
	"strings"
)

// Int64 converts v to int64, returning 0 for values that have no sane
// integer representation.
func Int64(v any) int64 {
	switch v := v.(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	case *sql.NullString:
		if v == nil || !v.Valid {
			return 0
		}
		return parseInt(v.String)
	default:
		return 0
	}
}

// Float64 converts v to float64, returning 0 for values that have no sane
// numeric representation.
func Float64(v any) float64 {
	switch v := v.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	case *sql.NullString:
		if v == nil || !v.Valid {
			return 0
		}
		return parseFloat(v.String)
	default:
		return 0
	}
}

// IsNumeric reports whether s parses as a number. Used to decide whether a
// textual status/variable value belongs in a numeric representation at all.
func IsNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// Bool converts truthy server strings ("ON", "Yes", "1", "true") to true.
func Bool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "ON", "YES", "TRUE", "1":
			return true
		}
		return false
	default:
		return Int64(v) != 0
	}
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// information_schema SUM() columns arrive as DECIMAL text ("123.00")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(v)
	}
	return 0
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
