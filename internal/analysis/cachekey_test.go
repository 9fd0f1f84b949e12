package analysis

import "testing"

func TestCacheKey(t *testing.T) {
	records := []DayRecord{{Date: "2025-03-01"}, {Date: "2025-05-30"}, {Date: "2025-04-15"}}
	want := "2025-03-01_2025-05-30_3"
	if got := CacheKey(records); got != want {
		t.Fatalf("CacheKey = %q, want %q", got, want)
	}
}

func TestCacheKeyOrderIndependent(t *testing.T) {
	a := []DayRecord{{Date: "2025-03-01"}, {Date: "2025-04-15"}, {Date: "2025-05-30"}}
	b := []DayRecord{{Date: "2025-05-30"}, {Date: "2025-03-01"}, {Date: "2025-04-15"}}
	if CacheKey(a) != CacheKey(b) {
		t.Fatalf("key depends on order: %q vs %q", CacheKey(a), CacheKey(b))
	}
}

func TestCacheKeyEmptySet(t *testing.T) {
	if got := CacheKey(nil); got != "" {
		t.Fatalf("empty set key = %q, want empty", got)
	}
}

func TestParseCacheKey(t *testing.T) {
	start, end, count, err := ParseCacheKey("2025-03-01_2025-05-30_78")
	if err != nil {
		t.Fatalf("ParseCacheKey: %v", err)
	}
	if start.Format("2006-01-02") != "2025-03-01" || end.Format("2006-01-02") != "2025-05-30" || count != 78 {
		t.Fatalf("parsed (%v, %v, %d)", start, end, count)
	}

	if _, _, _, err := ParseCacheKey("not_a_key"); err == nil {
		t.Fatal("malformed key parsed")
	}
}

func TestFuzzyMatch(t *testing.T) {
	cases := []struct {
		requested, candidate string
		want                 bool
	}{
		{"2025-03-01_2025-05-30_78", "2025-03-01_2025-05-30_78", true},
		// One new diary entry drifted the window by a day.
		{"2025-03-02_2025-05-31_79", "2025-03-01_2025-05-30_78", true},
		// Five days on each boundary is still within tolerance.
		{"2025-03-06_2025-06-04_78", "2025-03-01_2025-05-30_78", true},
		// Six days is not.
		{"2025-03-07_2025-05-30_78", "2025-03-01_2025-05-30_78", false},
		{"2025-03-01_2025-06-05_78", "2025-03-01_2025-05-31_78", true},
		{"2025-03-01_2025-06-06_78", "2025-03-01_2025-05-31_78", false},
		{"garbage", "2025-03-01_2025-05-30_78", false},
		{"2025-03-01_2025-05-30_78", "garbage", false},
	}
	for _, c := range cases {
		if got := FuzzyMatch(c.requested, c.candidate); got != c.want {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", c.requested, c.candidate, got, c.want)
		}
	}
}
