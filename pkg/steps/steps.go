// Package steps reconciles three independently maintained step-count
// exports into one best-estimate monthly series. The sources routinely
// disagree and any of them may be missing; each pipeline degrades to
// an empty contribution rather than failing the run.
package steps

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vitalsum/vitalsum/pkg/logging"
	"github.com/vitalsum/vitalsum/pkg/tabular"
	"github.com/vitalsum/vitalsum/pkg/timestamp"
)

// Source identifies one of the step-count pipelines.
type Source string

// The three step-count sources, at daily-aggregate, per-event, and
// precomputed-trend granularity.
const (
	SourceDaySummary Source = "day_summary"
	SourceDetailed   Source = "detailed"
	SourceTrend      Source = "trend"
)

// Precedence is the fixed order used to pick the single authoritative
// figure per month. It is an explicit list, not inline branching, so
// the policy can be tested on its own.
var Precedence = []Source{SourceDaySummary, SourceDetailed, SourceTrend}

// MonthlyEstimate is the reconciled step data for one calendar month.
// Every total is optional: a month need not appear in all sources.
type MonthlyEstimate struct {
	Month timestamp.Month

	// MergedTotal and AvgDaily come from the day-summary source.
	MergedTotal *float64
	AvgDaily    *float64

	// DetailedTotal comes from the per-event pedometer source.
	DetailedTotal *float64

	// TrendTotal comes from the daily-trend source.
	TrendTotal *float64
}

// Total returns the month's total for the given source, if present.
func (e MonthlyEstimate) Total(s Source) *float64 {
	switch s {
	case SourceDaySummary:
		return e.MergedTotal
	case SourceDetailed:
		return e.DetailedTotal
	case SourceTrend:
		return e.TrendTotal
	}
	return nil
}

// Authoritative returns the single figure reported to the user,
// chosen by walking Precedence and taking the first present total.
func (e MonthlyEstimate) Authoritative() (float64, Source, bool) {
	for _, s := range Precedence {
		if v := e.Total(s); v != nil {
			return *v, s, true
		}
	}
	return 0, "", false
}

// Sources holds the loaded tables for the three pipelines. An empty
// table means that source is unavailable.
type Sources struct {
	DaySummary tabular.Table
	Detailed   tabular.Table
	Trend      tabular.Table
}

// Reconciler aggregates the three sources to monthly totals.
type Reconciler struct {
	logger *zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// New creates a new step-count reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs the three pipelines independently and merges their
// monthly keys into a single series sorted by month.
func (r *Reconciler) Reconcile(sources Sources) []MonthlyEstimate {
	merged := r.aggregateDaySummary(sources.DaySummary)
	detailed := r.aggregateDetailed(sources.Detailed)
	trend := r.aggregateTrend(sources.Trend)

	months := map[timestamp.Month]struct{}{}
	for m := range merged {
		months[m] = struct{}{}
	}
	for m := range detailed {
		months[m] = struct{}{}
	}
	for m := range trend {
		months[m] = struct{}{}
	}

	estimates := make([]MonthlyEstimate, 0, len(months))
	for m := range months {
		e := MonthlyEstimate{Month: m}
		if agg, ok := merged[m]; ok {
			total := agg.total
			avg := round1(agg.total / float64(len(agg.days)))
			e.MergedTotal = &total
			e.AvgDaily = &avg
		}
		if v, ok := detailed[m]; ok {
			total := v
			e.DetailedTotal = &total
		}
		if v, ok := trend[m]; ok {
			total := v
			e.TrendTotal = &total
		}
		estimates = append(estimates, e)
	}
	sortEstimates(estimates)
	return estimates
}

// daySummaryAgg accumulates one month of the day-summary pipeline.
type daySummaryAgg struct {
	total float64
	days  map[timestamp.Date]struct{}
}

// aggregateDaySummary sums the daily-aggregate source by month.
// Duplicate rows for one day key are collapsed to the largest step
// value, which defends against repeated export rows for one calendar
// day.
func (r *Reconciler) aggregateDaySummary(t tabular.Table) map[timestamp.Month]daySummaryAgg {
	if t.Empty() {
		return nil
	}

	stepCol, ok := t.Column("step_count")
	if !ok {
		r.logger.Debug().Msg("day summary has no step_count column")
		return nil
	}

	type dayRow struct {
		steps float64
		date  timestamp.Date
	}

	hasDayTime := t.HasColumn("day_time")
	var tsCol string
	if !hasDayTime {
		tsCol, ok = t.Column("start_time")
		if !ok {
			r.logger.Debug().Msg("day summary has no usable time column")
			return nil
		}
	}

	// Deduplicate by the raw day_time value, keeping the row with the
	// largest step count. Without a day_time column every row stands.
	best := map[string]dayRow{}
	var order []string
	seq := 0
	for _, row := range t.Rows {
		steps, ok := parseNumber(row[stepCol])
		if !ok {
			continue
		}
		var date timestamp.Date
		var key string
		if hasDayTime {
			key = row["day_time"]
			// day_time is epoch milliseconds; free-text values in this
			// column are export corruption, not an alternate encoding.
			date, ok = timestamp.NormalizeWith([]timestamp.Attempt{timestamp.EpochMillis}, key)
		} else {
			key = "row-" + strconv.Itoa(seq)
			date, ok = timestamp.Normalize(row[tsCol])
		}
		seq++
		if !ok {
			continue
		}
		if prev, dup := best[key]; dup {
			if steps > prev.steps {
				best[key] = dayRow{steps: steps, date: date}
			}
			continue
		}
		best[key] = dayRow{steps: steps, date: date}
		order = append(order, key)
	}

	agg := map[timestamp.Month]daySummaryAgg{}
	for _, key := range order {
		row := best[key]
		m := row.date.Month()
		a, ok := agg[m]
		if !ok {
			a = daySummaryAgg{days: map[timestamp.Date]struct{}{}}
		}
		a.total += row.steps
		a.days[row.date] = struct{}{}
		agg[m] = a
	}
	return agg
}

// aggregateDetailed sums the per-event pedometer source by month. Step
// count per row is run steps plus walk steps when those columns exist,
// with a missing or non-numeric half treated as zero; otherwise a
// generic count column.
func (r *Reconciler) aggregateDetailed(t tabular.Table) map[timestamp.Month]float64 {
	if t.Empty() {
		return nil
	}

	tsCol, ok := t.Column("start_time")
	if !ok {
		r.logger.Debug().Msg("detailed pedometer has no start_time column")
		return nil
	}

	runCol, hasRun := t.Column("run_step")
	walkCol, hasWalk := t.Column("walk_step")
	var countCol string
	if !hasRun && !hasWalk {
		countCol, ok = t.Column("count")
		if !ok {
			r.logger.Debug().Msg("detailed pedometer has no step columns")
			return nil
		}
	}

	agg := map[timestamp.Month]float64{}
	for _, row := range t.Rows {
		date, ok := timestamp.Normalize(row[tsCol])
		if !ok {
			continue
		}
		var steps float64
		if hasRun || hasWalk {
			if v, ok := parseNumber(row[runCol]); ok {
				steps += v
			}
			if v, ok := parseNumber(row[walkCol]); ok {
				steps += v
			}
		} else {
			v, ok := parseNumber(row[countCol])
			if !ok {
				continue
			}
			steps = v
		}
		agg[date.Month()] += steps
	}
	if len(agg) == 0 {
		return nil
	}
	return agg
}

// aggregateTrend sums the precomputed daily-trend source by month.
func (r *Reconciler) aggregateTrend(t tabular.Table) map[timestamp.Month]float64 {
	if t.Empty() {
		return nil
	}

	tsCol, ok := t.Column("day_time")
	if !ok {
		r.logger.Debug().Msg("trend has no day_time column")
		return nil
	}
	countCol, ok := t.Column("count")
	if !ok {
		r.logger.Debug().Msg("trend has no count column")
		return nil
	}

	agg := map[timestamp.Month]float64{}
	for _, row := range t.Rows {
		date, ok := timestamp.NormalizeWith([]timestamp.Attempt{timestamp.EpochMillis}, row[tsCol])
		if !ok {
			continue
		}
		steps, ok := parseNumber(row[countCol])
		if !ok {
			continue
		}
		agg[date.Month()] += steps
	}
	if len(agg) == 0 {
		return nil
	}
	return agg
}

// parseNumber parses a raw field as a float, rejecting blanks.
func parseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// sortEstimates orders estimates by month ascending.
func sortEstimates(estimates []MonthlyEstimate) {
	sort.Slice(estimates, func(i, j int) bool {
		return estimates[i].Month.Before(estimates[j].Month)
	})
}
