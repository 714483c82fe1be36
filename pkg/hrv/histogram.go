package hrv

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// histogramObject is the decoded content of one histogram file. Files
// hold either a single JSON object or a non-empty array whose first
// element is the object of interest.
type histogramObject map[string]any

// readHistogram reads and decodes one histogram file. Any shape
// surprise (empty array, scalar top level, parse failure) is a skip.
func readHistogram(path string) (histogramObject, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	switch v := raw.(type) {
	case map[string]any:
		return histogramObject(v), true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		if obj, ok := v[0].(map[string]any); ok {
			return histogramObject(obj), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// floatField coerces a histogram field to a float, tolerating both
// JSON numbers and numeric strings. Absent or non-numeric values
// return nil.
func (h histogramObject) floatField(key string) *float64 {
	v, ok := h[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

// intField coerces a histogram field to an int the same way.
func (h histogramObject) intField(key string) *int {
	f := h.floatField(key)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// stringField renders a histogram field as a string for the timestamp
// normalizer: JSON numbers are formatted without an exponent so
// epoch-millisecond values survive the round trip.
func (h histogramObject) stringField(key string) (string, bool) {
	v, ok := h[key]
	if !ok || v == nil {
		return "", false
	}
	switch n := v.(type) {
	case string:
		return n, true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		return n.String(), true
	}
	return "", false
}
