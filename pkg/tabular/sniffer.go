package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// Detection records which parse the sniffer selected. Callers can log
// or assert the decision without re-deriving it.
type Detection struct {
	// HeaderRow is the winning header row index (0 or 1), or -1 when
	// no parse succeeded.
	HeaderRow int

	// ColumnCount is the number of columns in the selected parse.
	ColumnCount int

	// RowCount is the number of data rows in the selected parse.
	RowCount int
}

// Load reads a delimited file with unknown header placement and
// returns typed rows plus the sniffing decision.
//
// The file is parsed twice, once treating row 0 as the header and once
// treating row 1 as the header. With hints (substrings expected among
// the real column names) the row-1 parse wins if it contains a hint
// and either the row-0 parse contains none or the row-1 parse has at
// least as many columns. Without hints, the parse with more columns
// wins. Missing or unreadable files yield an empty table.
func Load(path string, hints ...string) (Table, Detection) {
	records, err := readRecords(path)
	if err != nil || len(records) == 0 {
		return Table{}, Detection{HeaderRow: -1}
	}

	t0 := promoteHeader(records, 0)
	t1 := promoteHeader(records, 1)

	pick, headerRow := t0, 0
	if len(hints) > 0 {
		has0 := hasAnyHint(t0.Columns, hints)
		has1 := hasAnyHint(t1.Columns, hints)
		if has1 && (!has0 || len(t1.Columns) >= len(t0.Columns)) {
			pick, headerRow = t1, 1
		}
	} else if len(t1.Columns) > len(t0.Columns) {
		pick, headerRow = t1, 1
	}

	if len(pick.Columns) == 0 {
		return Table{}, Detection{HeaderRow: -1}
	}
	return pick, Detection{
		HeaderRow:   headerRow,
		ColumnCount: len(pick.Columns),
		RowCount:    len(pick.Rows),
	}
}

// readRecords reads every parseable line of the file. Lines the CSV
// reader rejects are skipped, not fatal.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// promoteHeader treats the given record index as the header row and
// every later record as data. Records whose field count does not match
// the header are skipped.
func promoteHeader(records [][]string, headerRow int) Table {
	if len(records) <= headerRow {
		return Table{}
	}

	columns := uniqueColumns(records[headerRow])
	rows := make([]Row, 0, len(records)-headerRow-1)
	for _, record := range records[headerRow+1:] {
		if len(record) != len(columns) {
			continue
		}
		row := make(Row, len(columns))
		for i, c := range columns {
			row[c] = record[i]
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

// uniqueColumns disambiguates repeated header names so rows keep one
// value per column.
func uniqueColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

// hasAnyHint reports whether any column name contains any hint,
// case-insensitively.
func hasAnyHint(columns, hints []string) bool {
	for _, c := range columns {
		lc := strings.ToLower(c)
		for _, h := range hints {
			if strings.Contains(lc, strings.ToLower(h)) {
				return true
			}
		}
	}
	return false
}
