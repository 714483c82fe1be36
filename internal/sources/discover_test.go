package sources_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsum/vitalsum/internal/sources"
)

func writeExportFile(t *testing.T, base, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(base, name), []byte(content), 0o644))
}

func TestDiscoverDefaultLayout(t *testing.T) {
	base := t.TempDir()
	writeExportFile(t, base, "com.samsung.shealth.tracker.pedometer_day_summary.20240115.csv", "")
	writeExportFile(t, base, "com.samsung.shealth.tracker.pedometer_step_count.20240115.csv", "")
	writeExportFile(t, base, "com.samsung.shealth.step_daily_trend.20240115.csv", "")
	writeExportFile(t, base, "com.samsung.health.hrv.20240115.csv", "")
	writeExportFile(t, base, "com.samsung.shealth.exercise.20240115.csv", "")

	export, err := sources.Discover(base, sources.DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "com.samsung.shealth.tracker.pedometer_day_summary.20240115.csv"), export.DaySummary)
	assert.Equal(t, filepath.Join(base, "com.samsung.shealth.tracker.pedometer_step_count.20240115.csv"), export.Detailed)
	assert.Equal(t, filepath.Join(base, "com.samsung.shealth.step_daily_trend.20240115.csv"), export.Trend)
	assert.Equal(t, filepath.Join(base, "com.samsung.health.hrv.20240115.csv"), export.HRVIndex)
	assert.Equal(t, filepath.Join(base, "jsons"), export.HistogramDir)
}

func TestDiscoverMissingSourcesAreNotErrors(t *testing.T) {
	base := t.TempDir()
	writeExportFile(t, base, "com.samsung.health.hrv.20240115.csv", "")

	export, err := sources.Discover(base, sources.DefaultLayout())
	require.NoError(t, err)
	assert.Empty(t, export.DaySummary)
	assert.Empty(t, export.Detailed)
	assert.Empty(t, export.Trend)
	assert.NotEmpty(t, export.HRVIndex)
}

func TestDiscoverFirstMatchWins(t *testing.T) {
	// Two dated exports of the same source; names sort so the earliest
	// dated file wins deterministically.
	base := t.TempDir()
	writeExportFile(t, base, "com.samsung.shealth.step_daily_trend.20240201.csv", "")
	writeExportFile(t, base, "com.samsung.shealth.step_daily_trend.20240115.csv", "")

	export, err := sources.Discover(base, sources.DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "com.samsung.shealth.step_daily_trend.20240115.csv"), export.Trend)
}

func TestDiscoverIgnoresNonCSVAndDirs(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "com.samsung.shealth.step_daily_trend.dir"), 0o755))
	writeExportFile(t, base, "com.samsung.shealth.step_daily_trend.20240115.txt", "")

	export, err := sources.Discover(base, sources.DefaultLayout())
	require.NoError(t, err)
	assert.Empty(t, export.Trend)
}

func TestDiscoverUnreadableBase(t *testing.T) {
	_, err := sources.Discover(filepath.Join(t.TempDir(), "absent"), sources.DefaultLayout())
	assert.Error(t, err)
}

func TestStepSourcesLoadsWhatExists(t *testing.T) {
	base := t.TempDir()
	writeExportFile(t, base, "com.samsung.shealth.tracker.pedometer_day_summary.20240115.csv",
		"com.samsung.shealth.tracker.pedometer_day_summary,100045,4\n"+
			"day_time,step_count\n"+
			"1704067200000,8000\n")
	writeExportFile(t, base, "com.samsung.shealth.step_daily_trend.20240115.csv",
		"com.samsung.shealth.step_daily_trend,100001,3\n"+
			"day_time,count,distance\n"+
			"1704067200000,4100,3200\n")

	export, err := sources.Discover(base, sources.DefaultLayout())
	require.NoError(t, err)

	s := export.StepSources()
	require.Equal(t, 1, s.DaySummary.Len())
	assert.Equal(t, "8000", s.DaySummary.Rows[0]["step_count"])
	assert.True(t, s.Detailed.Empty())
	require.Equal(t, 1, s.Trend.Len())
	assert.Equal(t, "4100", s.Trend.Rows[0]["count"])
}

func TestHRVIndexTableAbsent(t *testing.T) {
	export := sources.Export{}
	assert.True(t, export.HRVIndexTable().Empty())
}
