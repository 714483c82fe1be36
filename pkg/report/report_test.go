package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vitalsum/vitalsum/pkg/hrv"
	"github.com/vitalsum/vitalsum/pkg/report"
	"github.com/vitalsum/vitalsum/pkg/steps"
	"github.com/vitalsum/vitalsum/pkg/timestamp"
)

func f(v float64) *float64 { return &v }

func TestStepsSection(t *testing.T) {
	merged, avg := 185250.0, 5975.8
	detailed, trend := 180100.0, 186000.0
	out := report.StepsSection([]steps.MonthlyEstimate{
		{
			Month:         timestamp.Month{Year: 2024, Month: time.January},
			MergedTotal:   &merged,
			AvgDaily:      &avg,
			DetailedTotal: &detailed,
			TrendTotal:    &trend,
		},
	})

	assert.Contains(t, out, "=== Steps ===")
	assert.Contains(t, out, "===== 2024-01 =====")
	assert.Contains(t, out, "Steps: 185,250, avg/day ~5975.8")
	assert.Contains(t, out, "(merged=185,250, detailed=180,100, trend=186,000)")
}

func TestStepsSectionPartialSources(t *testing.T) {
	out := report.StepsSection([]steps.MonthlyEstimate{
		{
			Month:      timestamp.Month{Year: 2024, Month: time.February},
			TrendTotal: f(8800),
		},
	})

	assert.Contains(t, out, "Steps: 8,800, avg/day ~?")
	assert.Contains(t, out, "(trend=8,800)")
	assert.NotContains(t, out, "merged=")
	assert.NotContains(t, out, "detailed=")
}

func TestStepsSectionEmpty(t *testing.T) {
	out := report.StepsSection(nil)
	assert.Equal(t, "=== Steps ===\nNo step data found.\n", out)
}

func TestHRVSection(t *testing.T) {
	out := report.HRVSection([]hrv.MonthlySummary{
		{
			Month:       timestamp.Month{Year: 2024, Month: time.January},
			AvgRMSSD:    f(42.7),
			AvgSDNN:     f(50.5),
			DaysWithHRV: 17,
		},
		{
			Month:       timestamp.Month{Year: 2024, Month: time.February},
			DaysWithHRV: 2,
		},
	})

	assert.Contains(t, out, "=== HRV ===")
	assert.Contains(t, out, "===== 2024-01 =====")
	assert.Contains(t, out, "Days with HRV: 17")
	assert.Contains(t, out, "Average RMSSD: 42.7 ms")
	assert.Contains(t, out, "Average SDNN: 50.5 ms")

	// Months with linked entries but no usable metrics print the
	// placeholder, not a zero.
	assert.Contains(t, out, "Average RMSSD: ? ms")
}

func TestHRVSectionEmpty(t *testing.T) {
	out := report.HRVSection(nil)
	assert.Equal(t, "=== HRV ===\nNo HRV data found or unable to determine date for records.\n", out)
}

func TestRenderOrdersSections(t *testing.T) {
	out := report.Render(nil, nil)
	stepsAt := strings.Index(out, "=== Steps ===")
	hrvAt := strings.Index(out, "=== HRV ===")
	assert.NotEqual(t, -1, stepsAt)
	assert.NotEqual(t, -1, hrvAt)
	assert.Less(t, stepsAt, hrvAt)
}
