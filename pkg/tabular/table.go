// Package tabular loads delimited export files whose header placement
// is not declared anywhere. Some exports prepend a metadata/title line
// above the real header, so the loader parses both candidate header
// rows and picks one by a hint rule. A failed or missing file yields
// an empty table: callers treat that as "source unavailable", never as
// an error.
package tabular

import "strings"

// Row maps column name to the raw string value for one record.
type Row map[string]string

// Table is an ordered sequence of rows sharing one column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the exact column name is present.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the first column whose name contains the given
// substring, case-insensitively. Export column names drift between
// versions ("com.samsung.health.step_count.count" vs "count"), so the
// reconcilers locate columns by fragment rather than exact name.
func (t Table) Column(substr string) (string, bool) {
	substr = strings.ToLower(substr)
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c), substr) {
			return c, true
		}
	}
	return "", false
}
