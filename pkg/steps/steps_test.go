package steps_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsum/vitalsum/pkg/steps"
	"github.com/vitalsum/vitalsum/pkg/tabular"
	"github.com/vitalsum/vitalsum/pkg/timestamp"
)

func epochMillis(year int, month time.Month, day int) string {
	ms := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
	return strconv.FormatInt(ms, 10)
}

func daySummaryTable(rows ...tabular.Row) tabular.Table {
	return tabular.Table{
		Columns: []string{"day_time", "step_count", "distance"},
		Rows:    rows,
	}
}

func detailedTable(rows ...tabular.Row) tabular.Table {
	return tabular.Table{
		Columns: []string{
			"com.samsung.health.step_count.start_time",
			"run_step",
			"walk_step",
		},
		Rows: rows,
	}
}

func trendTable(rows ...tabular.Row) tabular.Table {
	return tabular.Table{
		Columns: []string{"day_time", "count"},
		Rows:    rows,
	}
}

func TestPrecedenceOrder(t *testing.T) {
	// The policy itself, independent of aggregation.
	require.Equal(t, []steps.Source{
		steps.SourceDaySummary,
		steps.SourceDetailed,
		steps.SourceTrend,
	}, steps.Precedence)

	merged, detailed, trend := 9000.0, 8700.0, 9100.0
	e := steps.MonthlyEstimate{
		MergedTotal:   &merged,
		DetailedTotal: &detailed,
		TrendTotal:    &trend,
	}
	v, source, ok := e.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 9000.0, v)
	assert.Equal(t, steps.SourceDaySummary, source)

	e.MergedTotal = nil
	v, source, ok = e.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 8700.0, v)
	assert.Equal(t, steps.SourceDetailed, source)

	e.DetailedTotal = nil
	v, source, ok = e.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 9100.0, v)
	assert.Equal(t, steps.SourceTrend, source)

	e.TrendTotal = nil
	_, _, ok = e.Authoritative()
	assert.False(t, ok)
}

func TestReconcileDaySummary(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		DaySummary: daySummaryTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 1), "step_count": "8000"},
			tabular.Row{"day_time": epochMillis(2024, time.January, 2), "step_count": "9000"},
		),
	})

	require.Len(t, estimates, 1)
	e := estimates[0]
	assert.Equal(t, timestamp.Month{Year: 2024, Month: time.January}, e.Month)
	require.NotNil(t, e.MergedTotal)
	assert.Equal(t, 17000.0, *e.MergedTotal)
	require.NotNil(t, e.AvgDaily)
	assert.Equal(t, 8500.0, *e.AvgDaily)
	assert.Nil(t, e.DetailedTotal)
	assert.Nil(t, e.TrendTotal)
}

func TestReconcileDaySummaryDeduplicates(t *testing.T) {
	// Duplicate export rows for one day keep the largest step value.
	day := epochMillis(2024, time.January, 1)
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		DaySummary: daySummaryTable(
			tabular.Row{"day_time": day, "step_count": "4000"},
			tabular.Row{"day_time": day, "step_count": "8000"},
			tabular.Row{"day_time": day, "step_count": "6000"},
		),
	})

	require.Len(t, estimates, 1)
	require.NotNil(t, estimates[0].MergedTotal)
	assert.Equal(t, 8000.0, *estimates[0].MergedTotal)
	assert.Equal(t, 8000.0, *estimates[0].AvgDaily, "one distinct day")
}

func TestReconcileDaySummaryAvgRounding(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		DaySummary: daySummaryTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 1), "step_count": "100"},
			tabular.Row{"day_time": epochMillis(2024, time.January, 2), "step_count": "101"},
		),
	})

	require.Len(t, estimates, 1)
	assert.Equal(t, 100.5, *estimates[0].AvgDaily)
}

func TestReconcileDaySummaryStartTimeFallback(t *testing.T) {
	// Without a day_time column the loader falls back to any column
	// containing start_time, free-text parsed.
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		DaySummary: tabular.Table{
			Columns: []string{"com.samsung.health.start_time", "step_count"},
			Rows: []tabular.Row{
				{"com.samsung.health.start_time": "2024-01-05 00:00:00.000", "step_count": "7500"},
			},
		},
	})

	require.Len(t, estimates, 1)
	assert.Equal(t, 7500.0, *estimates[0].MergedTotal)
}

func TestReconcileDetailedRunWalk(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		Detailed: detailedTable(
			tabular.Row{
				"com.samsung.health.step_count.start_time": "2024-01-03 10:15:00",
				"run_step":  "120",
				"walk_step": "380",
			},
			tabular.Row{
				// Missing run half counts as zero, row still contributes.
				"com.samsung.health.step_count.start_time": "2024-01-03 11:15:00",
				"run_step":  "",
				"walk_step": "200",
			},
		),
	})

	require.Len(t, estimates, 1)
	require.NotNil(t, estimates[0].DetailedTotal)
	assert.Equal(t, 700.0, *estimates[0].DetailedTotal)
	assert.Nil(t, estimates[0].MergedTotal)
}

func TestReconcileDetailedCountFallback(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		Detailed: tabular.Table{
			Columns: []string{"start_time", "count"},
			Rows: []tabular.Row{
				{"start_time": "2024-01-03 10:15:00", "count": "501"},
				{"start_time": "2024-01-03 11:15:00", "count": "not-a-number"},
			},
		},
	})

	require.Len(t, estimates, 1)
	assert.Equal(t, 501.0, *estimates[0].DetailedTotal)
}

func TestReconcileTrend(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		Trend: trendTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 1), "count": "4100"},
			tabular.Row{"day_time": epochMillis(2024, time.January, 2), "count": "5000"},
			// Unresolvable timestamps drop the row, not the pipeline.
			tabular.Row{"day_time": "garbage", "count": "9999"},
			tabular.Row{"day_time": "0", "count": "9999"},
		),
	})

	require.Len(t, estimates, 1)
	require.NotNil(t, estimates[0].TrendTotal)
	assert.Equal(t, 9100.0, *estimates[0].TrendTotal)
}

func TestReconcileGracefulAbsence(t *testing.T) {
	// An entirely missing day-summary source leaves merged/avg absent
	// while the other pipelines still populate.
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		Detailed: detailedTable(
			tabular.Row{
				"com.samsung.health.step_count.start_time": "2024-01-03 10:15:00",
				"run_step":  "100",
				"walk_step": "200",
			},
		),
		Trend: trendTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 1), "count": "4100"},
		),
	})

	require.Len(t, estimates, 1)
	e := estimates[0]
	assert.Nil(t, e.MergedTotal)
	assert.Nil(t, e.AvgDaily)
	require.NotNil(t, e.DetailedTotal)
	assert.Equal(t, 300.0, *e.DetailedTotal)
	require.NotNil(t, e.TrendTotal)
	assert.Equal(t, 4100.0, *e.TrendTotal)

	v, source, ok := e.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 300.0, v)
	assert.Equal(t, steps.SourceDetailed, source)
}

func TestReconcileAllSourcesEmpty(t *testing.T) {
	assert.Empty(t, steps.New().Reconcile(steps.Sources{}))
}

func TestReconcileTwoMonthsEndToEnd(t *testing.T) {
	r := steps.New()
	estimates := r.Reconcile(steps.Sources{
		DaySummary: daySummaryTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 10), "step_count": "9000"},
		),
		Detailed: detailedTable(
			tabular.Row{
				"com.samsung.health.step_count.start_time": "2024-01-10 09:00:00",
				"run_step":  "700",
				"walk_step": "8000",
			},
			tabular.Row{
				"com.samsung.health.step_count.start_time": "2024-02-02 09:00:00",
				"run_step":  "1000",
				"walk_step": "7700",
			},
		),
		Trend: trendTable(
			tabular.Row{"day_time": epochMillis(2024, time.January, 10), "count": "9100"},
			tabular.Row{"day_time": epochMillis(2024, time.February, 2), "count": "8800"},
		),
	})

	require.Len(t, estimates, 2)

	jan, feb := estimates[0], estimates[1]
	assert.Equal(t, timestamp.Month{Year: 2024, Month: time.January}, jan.Month)
	assert.Equal(t, timestamp.Month{Year: 2024, Month: time.February}, feb.Month)

	v, source, ok := jan.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 9000.0, v, "day summary wins over detailed and trend")
	assert.Equal(t, steps.SourceDaySummary, source)

	v, source, ok = feb.Authoritative()
	require.True(t, ok)
	assert.Equal(t, 8700.0, v, "february has no day summary, detailed wins")
	assert.Equal(t, steps.SourceDetailed, source)
}
