// Package timestamp recovers calendar dates from the inconsistently
// encoded time fields found in health export files. Values may be
// epoch milliseconds, free-text datetimes, or garbage; the normalizer
// tries an ordered chain of attempts and applies a validity gate to
// whatever the first successful attempt produced.
package timestamp

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// MinValidYear is the validity gate. Export data predating it is
// treated as a parse artifact (epoch zero misread as a date).
const MinValidYear = 2005

// Attempt is one step of the normalization chain. It either decodes
// the raw value to a date or reports failure so the next attempt runs.
type Attempt func(raw string) (Date, bool)

// DefaultAttempts is the standard chain: numeric epoch-milliseconds
// first, free-text parsing second.
var DefaultAttempts = []Attempt{EpochMillis, FreeText}

// fallbackLayouts cover export formats the general parser rejects.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

// Normalize resolves a raw field value to a calendar date. The first
// successful attempt wins; its result must still pass the year gate.
// A value that decodes but fails the gate is unresolvable, not retried
// with later attempts: a numeric that lands in 1970 is a misread, and
// reinterpreting it as text would only manufacture a second misread.
func Normalize(raw string) (Date, bool) {
	return NormalizeWith(DefaultAttempts, raw)
}

// NormalizeWith runs an explicit attempt chain followed by the gate.
func NormalizeWith(attempts []Attempt, raw string) (Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, false
	}
	for _, attempt := range attempts {
		if d, ok := attempt(raw); ok {
			if !Valid(d) {
				return Date{}, false
			}
			return d, true
		}
	}
	return Date{}, false
}

// Valid reports whether the date passes the validity gate.
func Valid(d Date) bool {
	return !d.IsZero() && d.Year() >= MinValidYear
}

// EpochMillis decodes a decimal number as milliseconds since the Unix
// epoch.
func EpochMillis(raw string) (Date, bool) {
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Date{}, false
	}
	return DateOf(time.UnixMilli(int64(ms))), true
}

// FreeText decodes a free-text date/time string. The general parser
// handles the common export encodings; a short layout list catches the
// rest.
func FreeText(raw string) (Date, bool) {
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return DateOf(t), true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}
