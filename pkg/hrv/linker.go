package hrv

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vitalsum/vitalsum/pkg/logging"
	"github.com/vitalsum/vitalsum/pkg/tabular"
	"github.com/vitalsum/vitalsum/pkg/timestamp"
)

// DailyEntry is one linked HRV measurement. After deduplication there
// is at most one entry per (device, date) pair.
type DailyEntry struct {
	DeviceID      string
	Date          timestamp.Date
	SDNN          *float64
	RMSSD         *float64
	TotalSamples  *int
	CreateVersion string
	ModifyVersion string
}

// histogramDateFields are the candidate date-bearing fields inside a
// histogram object, in the order they are tried.
var histogramDateFields = []string{
	"date", "day_time", "recorded_date", "recorded_at", "timestamp", "start_time",
}

// dateAttempt is one step of the date-resolution chain for a linked
// row. The chain runs in order and stops at the first success.
type dateAttempt func(obj histogramObject, row tabular.Row, path string) (timestamp.Date, bool)

// dateChain resolves a date from, in order: the histogram object's own
// fields, the index row's bookkeeping times, and finally the file's
// last-modified time.
var dateChain = []dateAttempt{dateFromHistogram, dateFromRow, dateFromModTime}

// dateFromHistogram tries the fixed candidate fields inside the
// histogram object, each through the normalizer (epoch-ms first,
// free text second).
func dateFromHistogram(obj histogramObject, _ tabular.Row, _ string) (timestamp.Date, bool) {
	for _, field := range histogramDateFields {
		raw, ok := obj.stringField(field)
		if !ok {
			continue
		}
		if d, ok := timestamp.Normalize(raw); ok {
			return d, true
		}
	}
	return timestamp.Date{}, false
}

// dateFromRow falls back to the index row's update/create times,
// free-text parsed and subject to the validity gate.
func dateFromRow(_ histogramObject, row tabular.Row, _ string) (timestamp.Date, bool) {
	for _, col := range []string{"update_time", "create_time"} {
		if d, ok := timestamp.NormalizeWith([]timestamp.Attempt{timestamp.FreeText}, row[col]); ok {
			return d, true
		}
	}
	return timestamp.Date{}, false
}

// dateFromModTime is the last resort: the histogram file's mtime.
func dateFromModTime(_ histogramObject, _ tabular.Row, path string) (timestamp.Date, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return timestamp.Date{}, false
	}
	return timestamp.DateOf(info.ModTime()), true
}

// Linker resolves index rows against a histogram index.
type Linker struct {
	logger *zerolog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// New creates a new HRV linker.
func New(opts ...Option) *Linker {
	l := &Linker{logger: logging.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link walks every row of the HRV index table, resolves its histogram
// reference through the index, and assembles daily entries. Rows with
// no reference, an unresolvable reference, a malformed histogram, or
// no recoverable date are skipped.
func (l *Linker) Link(t tabular.Table, idx *Index) []DailyEntry {
	if t.Empty() {
		return nil
	}

	var entries []DailyEntry
	processed, found := 0, 0
	for _, row := range t.Rows {
		processed++

		ref, ok := extractReference(t.Columns, row)
		if !ok {
			continue
		}

		path, ok := idx.Resolve(ref)
		if !ok {
			l.logger.Debug().Str("ref", ref).Msg("histogram not found in index")
			continue
		}

		obj, ok := readHistogram(path)
		if !ok {
			l.logger.Debug().Str("path", path).Msg("histogram unparseable, skipping")
			continue
		}
		found++

		date, ok := resolveDate(obj, row, path)
		if !ok {
			l.logger.Debug().Str("ref", ref).Msg("no recoverable date for histogram, skipping")
			continue
		}

		entries = append(entries, DailyEntry{
			DeviceID:      row["deviceuuid"],
			Date:          date,
			SDNN:          obj.floatField("sdnn"),
			RMSSD:         obj.floatField("rmssd"),
			TotalSamples:  obj.intField("total_samples"),
			CreateVersion: row["create_sh_ver"],
			ModifyVersion: row["modify_sh_ver"],
		})
	}

	l.logger.Debug().
		Int("rows", processed).
		Int("histograms", found).
		Int("entries", len(entries)).
		Msg("hrv link pass complete")
	return entries
}

// resolveDate runs the date fallback chain.
func resolveDate(obj histogramObject, row tabular.Row, path string) (timestamp.Date, bool) {
	for _, attempt := range dateChain {
		if d, ok := attempt(obj, row, path); ok {
			return d, true
		}
	}
	return timestamp.Date{}, false
}

// extractReference finds the histogram-file reference in a row: the
// dedicated binning_data column when it carries a valid value,
// otherwise the first column value ending in the histogram suffix.
func extractReference(columns []string, row tabular.Row) (string, bool) {
	if ref := strings.TrimSpace(row["binning_data"]); strings.HasSuffix(ref, HistogramSuffix) {
		return ref, true
	}
	for _, c := range columns {
		if v := strings.TrimSpace(row[c]); strings.HasSuffix(v, HistogramSuffix) {
			return v, true
		}
	}
	return "", false
}
