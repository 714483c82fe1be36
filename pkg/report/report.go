// Package report renders the reconciled monthly series into the
// human-readable summary text. Formatting only; all decisions about
// which numbers to trust were made upstream.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vitalsum/vitalsum/pkg/hrv"
	"github.com/vitalsum/vitalsum/pkg/steps"
)

// printer formats step totals with thousands separators.
var printer = message.NewPrinter(language.English)

// Render produces the full report: the steps section followed by the
// HRV section.
func Render(estimates []steps.MonthlyEstimate, summaries []hrv.MonthlySummary) string {
	sections := []string{
		StepsSection(estimates),
		HRVSection(summaries),
	}
	return strings.Join(sections, "\n")
}

// StepsSection renders the monthly step estimates. Each month shows
// the authoritative figure (per the fixed source precedence) and a
// breakdown of whichever source totals were present.
func StepsSection(estimates []steps.MonthlyEstimate) string {
	if len(estimates) == 0 {
		return "=== Steps ===\nNo step data found.\n"
	}

	lines := []string{"=== Steps ==="}
	for _, e := range estimates {
		best := "?"
		avg := "?"
		if v, _, ok := e.Authoritative(); ok {
			best = printer.Sprintf("%d", int64(v))
		}
		if e.AvgDaily != nil {
			avg = fmt.Sprintf("%.1f", *e.AvgDaily)
		}
		lines = append(lines, fmt.Sprintf("\n===== %s =====", e.Month))
		lines = append(lines, fmt.Sprintf("Steps: %s, avg/day ~%s", best, avg))

		var comps []string
		for _, s := range steps.Precedence {
			if v := e.Total(s); v != nil {
				comps = append(comps, printer.Sprintf("%s=%d", componentLabel(s), int64(*v)))
			}
		}
		if len(comps) > 0 {
			lines = append(lines, "  ("+strings.Join(comps, ", ")+")")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// componentLabel names a source in the per-month breakdown line.
func componentLabel(s steps.Source) string {
	switch s {
	case steps.SourceDaySummary:
		return "merged"
	case steps.SourceDetailed:
		return "detailed"
	case steps.SourceTrend:
		return "trend"
	}
	return string(s)
}

// HRVSection renders the monthly HRV summaries.
func HRVSection(summaries []hrv.MonthlySummary) string {
	if len(summaries) == 0 {
		return "=== HRV ===\nNo HRV data found or unable to determine date for records.\n"
	}

	lines := []string{"=== HRV ==="}
	for _, s := range summaries {
		lines = append(lines, fmt.Sprintf("\n===== %s =====", s.Month))
		lines = append(lines, fmt.Sprintf("Days with HRV: %d", s.DaysWithHRV))
		lines = append(lines, "Average RMSSD: "+optional1(s.AvgRMSSD)+" ms")
		lines = append(lines, "Average SDNN: "+optional1(s.AvgSDNN)+" ms")
	}
	return strings.Join(lines, "\n") + "\n"
}

// optional1 formats a nullable one-decimal value.
func optional1(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%.1f", *v)
}
