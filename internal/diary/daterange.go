package diary

import "time"

// Range is a named trailing window the dashboard can show.
type Range string

const (
	Range1Month  Range = "1month"
	Range2Months Range = "2months"
	Range3Months Range = "3months"
	Range6Months Range = "6months"
	Range1Year   Range = "1year"
	RangeAll     Range = "all"
)

// rangeMonths maps each named range to its month count; RangeAll is absent
// and means identity.
var rangeMonths = map[Range]int{
	Range1Month:  1,
	Range2Months: 2,
	Range3Months: 3,
	Range6Months: 6,
	Range1Year:   12,
}

// ParseRange resolves a query-string value to a Range, falling back to
// RangeAll for anything unrecognized.
func ParseRange(s string) Range {
	r := Range(s)
	if _, ok := rangeMonths[r]; ok {
		return r
	}
	return RangeAll
}

// FilterByRange returns the subset of entries dated strictly after
// now − N months. RangeAll (or an unknown range) returns the input as-is.
// Pure and total: an empty result is valid, never an error.
func FilterByRange(entries []NormalizedEntry, r Range, now time.Time) []NormalizedEntry {
	months, ok := rangeMonths[r]
	if !ok {
		return entries
	}
	cutoff := now.AddDate(0, -months, 0)
	out := make([]NormalizedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
