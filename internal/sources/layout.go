// Package sources locates the export files inside a health export
// directory. File names carry dated suffixes that change per export,
// so sources are found by name prefix, first match wins. The default
// prefixes follow the Samsung Health export convention and can be
// overridden with a YAML layout file.
package sources

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/vitalsum/vitalsum/pkg/errors"
)

// Layout holds the naming patterns used to locate each source.
type Layout struct {
	DaySummaryPrefix string `yaml:"day_summary_prefix"`
	DetailedPrefix   string `yaml:"detailed_prefix"`
	TrendPrefix      string `yaml:"trend_prefix"`
	HRVIndexPrefix   string `yaml:"hrv_index_prefix"`
	HistogramDir     string `yaml:"histogram_dir"`
}

// DefaultLayout returns the Samsung Health export naming convention.
func DefaultLayout() Layout {
	return Layout{
		DaySummaryPrefix: "com.samsung.shealth.tracker.pedometer_day_summary",
		DetailedPrefix:   "com.samsung.shealth.tracker.pedometer_step_count",
		TrendPrefix:      "com.samsung.shealth.step_daily_trend",
		HRVIndexPrefix:   "com.samsung.health.hrv",
		HistogramDir:     "jsons",
	}
}

// LoadLayout reads a YAML layout file, filling unset fields from the
// defaults so an override file only needs to name what differs.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.WrapIO("read", path, err)
	}

	layout := Layout{}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, errors.WrapParse("yaml", path, err)
	}

	defaults := DefaultLayout()
	if layout.DaySummaryPrefix == "" {
		layout.DaySummaryPrefix = defaults.DaySummaryPrefix
	}
	if layout.DetailedPrefix == "" {
		layout.DetailedPrefix = defaults.DetailedPrefix
	}
	if layout.TrendPrefix == "" {
		layout.TrendPrefix = defaults.TrendPrefix
	}
	if layout.HRVIndexPrefix == "" {
		layout.HRVIndexPrefix = defaults.HRVIndexPrefix
	}
	if layout.HistogramDir == "" {
		layout.HistogramDir = defaults.HistogramDir
	}
	return layout, nil
}
