package diary

import (
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want Range
	}{
		{"1month", Range1Month},
		{"6months", Range6Months},
		{"1year", Range1Year},
		{"all", RangeAll},
		{"", RangeAll},
		{"bogus", RangeAll},
	}
	for _, c := range cases {
		if got := ParseRange(c.in); got != c.want {
			t.Errorf("ParseRange(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilterByRangeAllIsIdentity(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []NormalizedEntry{
		entry("2023-01-01", 0),
		entry("2025-06-01", 1),
	}
	got := FilterByRange(entries, RangeAll, now)
	if len(got) != len(entries) {
		t.Fatalf("RangeAll filtered to %d entries, want %d", len(got), len(entries))
	}
}

func TestFilterByRangeWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []NormalizedEntry{
		entry("2025-06-10", 0), // inside 1 month
		entry("2025-05-20", 0), // inside 1 month
		entry("2025-04-01", 0), // inside 3 months only
		entry("2024-09-01", 0), // inside 1 year only
		entry("2023-01-01", 0), // outside everything
	}

	if got := FilterByRange(entries, Range1Month, now); len(got) != 2 {
		t.Fatalf("1month window kept %d entries, want 2", len(got))
	}
	if got := FilterByRange(entries, Range3Months, now); len(got) != 3 {
		t.Fatalf("3months window kept %d entries, want 3", len(got))
	}
	if got := FilterByRange(entries, Range1Year, now); len(got) != 4 {
		t.Fatalf("1year window kept %d entries, want 4", len(got))
	}
}

func TestFilterByRangeCutoffIsStrict(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	// Exactly on the cutoff boundary: not strictly after, so excluded.
	boundary := entry("2025-05-15", 0)
	if got := FilterByRange([]NormalizedEntry{boundary}, Range1Month, now); len(got) != 0 {
		t.Fatalf("boundary entry should be excluded, kept %d", len(got))
	}
}

func TestFilterByRangeIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []NormalizedEntry{
		entry("2025-06-10", 0),
		entry("2025-04-01", 0),
		entry("2023-01-01", 0),
	}

	once := FilterByRange(entries, Range3Months, now)
	twice := FilterByRange(once, Range3Months, now)
	if len(once) != len(twice) {
		t.Fatalf("re-filtering with the same range changed the result: %d -> %d", len(once), len(twice))
	}

	wider := FilterByRange(once, Range1Year, now)
	if len(wider) != len(once) {
		t.Fatalf("widening the range on a filtered result changed it: %d -> %d", len(once), len(wider))
	}
}

func TestFilterByRangeEmptyInput(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	if got := FilterByRange(nil, Range1Month, now); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
