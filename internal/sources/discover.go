package sources

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vitalsum/vitalsum/pkg/errors"
	"github.com/vitalsum/vitalsum/pkg/logging"
	"github.com/vitalsum/vitalsum/pkg/steps"
	"github.com/vitalsum/vitalsum/pkg/tabular"
)

// Export holds the resolved locations of every source inside one
// export directory. An empty path means that source is absent, which
// downstream pipelines treat as an empty contribution.
type Export struct {
	Base         string
	DaySummary   string
	Detailed     string
	Trend        string
	HRVIndex     string
	HistogramDir string
}

// Discover resolves the layout's naming patterns against a base
// directory. Only an unreadable base directory is an error; individual
// missing sources are not.
func Discover(base string, layout Layout) (Export, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return Export{}, errors.WrapIO("read", base, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	export := Export{
		Base:         base,
		DaySummary:   findByPrefix(base, names, layout.DaySummaryPrefix),
		Detailed:     findByPrefix(base, names, layout.DetailedPrefix),
		Trend:        findByPrefix(base, names, layout.TrendPrefix),
		HRVIndex:     findByPrefix(base, names, layout.HRVIndexPrefix),
		HistogramDir: filepath.Join(base, layout.HistogramDir),
	}

	logging.Debug().
		Str("day_summary", export.DaySummary).
		Str("detailed", export.Detailed).
		Str("trend", export.Trend).
		Str("hrv_index", export.HRVIndex).
		Msg("discovered export sources")
	return export, nil
}

// findByPrefix returns the first file name matching the prefix, or "".
func findByPrefix(base string, names []string, prefix string) string {
	if prefix == "" {
		return ""
	}
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			return filepath.Join(base, name)
		}
	}
	return ""
}

// StepSources loads the three step tables. The day-summary file uses
// the shifted manual loader: its quoting convention defeats the
// general-purpose reader.
func (e Export) StepSources() steps.Sources {
	s := steps.Sources{}
	if e.DaySummary != "" {
		s.DaySummary = tabular.LoadShifted(e.DaySummary)
	}
	if e.Detailed != "" {
		s.Detailed, _ = tabular.Load(e.Detailed, "run_step", "walk_step")
	}
	if e.Trend != "" {
		s.Trend, _ = tabular.Load(e.Trend, "count")
	}
	return s
}

// HRVIndexTable loads the HRV index table.
func (e Export) HRVIndexTable() tabular.Table {
	if e.HRVIndex == "" {
		return tabular.Table{}
	}
	t, detection := tabular.Load(e.HRVIndex, "binning_data", "start_time")
	logging.Debug().
		Int("header_row", detection.HeaderRow).
		Int("columns", detection.ColumnCount).
		Int("rows", detection.RowCount).
		Msg("loaded hrv index")
	return t
}
