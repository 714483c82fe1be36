package tabular

import (
	"os"
	"strings"
)

// LoadShifted handles one known-bad export format whose quoting and
// metadata conventions defeat the CSV reader. Physical line 1
// (0-indexed) is taken as the header and line 2 onward as data, with
// rows padded or truncated to the header width. Splitting is plain
// comma splitting on purpose: the general-purpose reader cannot parse
// this file reliably.
func LoadShifted(path string) Table {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Table{}
	}

	columns := uniqueColumns(strings.Split(lines[1], ","))
	rows := make([]Row, 0, len(lines)-2)
	for _, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) > len(columns) {
			parts = parts[:len(columns)]
		}
		for len(parts) < len(columns) {
			parts = append(parts, "")
		}
		row := make(Row, len(columns))
		for i, c := range columns {
			row[c] = parts[i]
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}
