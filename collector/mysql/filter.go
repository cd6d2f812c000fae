// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"fmt"
	"strings"
)

// systemSchemas are never reported unless explicitly included.
var systemSchemas = []string{
	"information_schema",
	"mysql",
	"performance_schema",
	"sys",
}

// dbFilter limits schema level queries to the configured databases.
// An include list wins over the exclude list; with no include list the
// system schemas are always excluded on top of the configured exclusions.
type dbFilter struct {
	include []string
	exclude []string
}

func newDBFilter(include, exclude []string) *dbFilter {
	return &dbFilter{include: include, exclude: exclude}
}

// condition returns a WHERE fragment restricting col to the allowed schemas.
func (f *dbFilter) condition(col string) string {
	if len(f.include) > 0 {
		return fmt.Sprintf("%s IN (%s)", col, quoteList(f.include))
	}
	names := make([]string, 0, len(systemSchemas)+len(f.exclude))
	names = append(names, systemSchemas...)
	names = append(names, f.exclude...)
	return fmt.Sprintf("%s NOT IN (%s)", col, quoteList(names))
}

// allows reports whether schema passes the filter. Used for result sets that
// cannot be filtered server side.
func (f *dbFilter) allows(schema string) bool {
	if len(f.include) > 0 {
		for _, name := range f.include {
			if name == schema {
				return true
			}
		}
		return false
	}
	for _, name := range systemSchemas {
		if name == schema {
			return false
		}
	}
	for _, name := range f.exclude {
		if name == schema {
			return false
		}
	}
	return true
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
