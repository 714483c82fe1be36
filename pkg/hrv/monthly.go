package hrv

import (
	"math"
	"sort"

	"github.com/vitalsum/vitalsum/pkg/timestamp"
)

// MonthlySummary is the aggregated HRV picture for one calendar month.
type MonthlySummary struct {
	Month timestamp.Month

	// AvgRMSSD and AvgSDNN are means of the non-null daily values,
	// rounded to one decimal. Nil when no value was present.
	AvgRMSSD *float64
	AvgSDNN  *float64

	// DaysWithHRV counts distinct dates with at least one entry.
	DaysWithHRV int
}

// Dedupe collapses entries to at most one per (device, date) pair,
// keeping the greatest modify version when duplicates exist. The sort
// is stable, so re-running on an already-deduplicated set is a no-op.
func Dedupe(entries []DailyEntry) []DailyEntry {
	sorted := make([]DailyEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.ModifyVersion < b.ModifyVersion
	})

	type key struct {
		device string
		date   timestamp.Date
	}
	// Walk in order and keep the last entry per key: after the sort
	// that is the one with the greatest modify version.
	last := map[key]DailyEntry{}
	var order []key
	for _, e := range sorted {
		k := key{device: e.DeviceID, date: e.Date}
		if _, seen := last[k]; !seen {
			order = append(order, k)
		}
		last[k] = e
	}

	deduped := make([]DailyEntry, 0, len(order))
	for _, k := range order {
		deduped = append(deduped, last[k])
	}
	return deduped
}

// Monthly groups deduplicated entries by calendar month.
func Monthly(entries []DailyEntry) []MonthlySummary {
	type monthAgg struct {
		rmssdSum float64
		rmssdN   int
		sdnnSum  float64
		sdnnN    int
		days     map[timestamp.Date]struct{}
	}

	agg := map[timestamp.Month]*monthAgg{}
	for _, e := range entries {
		m := e.Date.Month()
		a, ok := agg[m]
		if !ok {
			a = &monthAgg{days: map[timestamp.Date]struct{}{}}
			agg[m] = a
		}
		if e.RMSSD != nil {
			a.rmssdSum += *e.RMSSD
			a.rmssdN++
		}
		if e.SDNN != nil {
			a.sdnnSum += *e.SDNN
			a.sdnnN++
		}
		a.days[e.Date] = struct{}{}
	}

	summaries := make([]MonthlySummary, 0, len(agg))
	for m, a := range agg {
		s := MonthlySummary{Month: m, DaysWithHRV: len(a.days)}
		if a.rmssdN > 0 {
			v := round1(a.rmssdSum / float64(a.rmssdN))
			s.AvgRMSSD = &v
		}
		if a.sdnnN > 0 {
			v := round1(a.sdnnSum / float64(a.sdnnN))
			s.AvgSDNN = &v
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month.Before(summaries[j].Month)
	})
	return summaries
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
