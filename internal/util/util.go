// Package util provides shared helpers for parsing the string-typed fields
// that NWIS delivers inside otherwise opaque observation records.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ─── Date Parsing ─────────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a time.Time (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ─── Record Field Helpers ─────────────────────────────────────────────────────

// RecordString extracts the named field from a record as a string.
// Missing fields and non-string values yield "".
func RecordString(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// ParseRecordValue parses an NWIS observation value string.
// Returns NaN when the value is empty or equals the service's no-data
// sentinel (noData, typically -999999).
func ParseRecordValue(s string, noData float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if !math.IsNaN(noData) && v == noData {
		return math.NaN()
	}
	return v
}

// FormatValue formats a float64 for display, showing "-" for NaN.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ─── Cell Formatting ──────────────────────────────────────────────────────────

// FormatCell renders an arbitrary record field value as a table cell.
// Strings pass through unchanged, numbers render without exponent notation,
// slices (qualifiers) join with commas, nil renders empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatCell(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", x)
	}
}
