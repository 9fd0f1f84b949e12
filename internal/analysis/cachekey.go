package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// FuzzyToleranceDays is how far each boundary date of a cached analysis
// may drift from the requested window and still be served as a match.
const FuzzyToleranceDays = 5

var cacheKeyPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})_(\d+)$`)

// CacheKey derives the deterministic identity of an analysis over the
// exact record set sent to the analyzer: earliest date, latest date and
// entry count. Input order does not matter. An empty set has no key.
func CacheKey(records []DayRecord) string {
	if len(records) == 0 {
		return ""
	}
	dates := make([]string, len(records))
	for i, r := range records {
		dates[i] = r.Date
	}
	sort.Strings(dates)
	return fmt.Sprintf("%s_%s_%d", dates[0], dates[len(dates)-1], len(records))
}

// ParseCacheKey splits a key back into its window boundaries and count.
func ParseCacheKey(key string) (start, end time.Time, count int, err error) {
	m := cacheKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("malformed cache key %q", key)
	}
	start, err = time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	end, err = time.Parse("2006-01-02", m[2])
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if _, err := fmt.Sscanf(m[3], "%d", &count); err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	return start, end, count, nil
}

// FuzzyMatch reports whether a cached key's window lies within the
// tolerance of the requested one on both boundaries. Entry counts are not
// compared: a drifted window implies a drifted count, and the count exists
// to disambiguate exact matches, not fuzzy ones.
func FuzzyMatch(requested, candidate string) bool {
	reqStart, reqEnd, _, err := ParseCacheKey(requested)
	if err != nil {
		return false
	}
	candStart, candEnd, _, err := ParseCacheKey(candidate)
	if err != nil {
		return false
	}
	return withinDays(reqStart, candStart, FuzzyToleranceDays) && withinDays(reqEnd, candEnd, FuzzyToleranceDays)
}

func withinDays(a, b time.Time, days int) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= time.Duration(days)*24*time.Hour
}
