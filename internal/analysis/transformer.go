package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moodtrace/dashboard/internal/diary"
)

// The analyzer always sees a fixed trailing window, independent of whatever
// range the dashboard currently displays.
const analysisWindowMonths = 3

var (
	moodNumPattern  = regexp.MustCompile(`^([+-]?\d+)`)
	overloadPattern = regexp.MustCompile(`^(\d+)`)
)

// LastThreeMonths restricts raw rows to entries dated on or after
// now − 3 months. Rows whose date does not parse are dropped; the analyzer
// cannot place them on a timeline.
func LastThreeMonths(raws []diary.RawEntry, now time.Time) []diary.RawEntry {
	cutoff := now.AddDate(0, -analysisWindowMonths, 0)
	out := make([]diary.RawEntry, 0, len(raws))
	for _, r := range raws {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Transform maps raw rows into the protocol's per-day schema, preserving
// input order. The numeric parsing here is intentionally self-contained
// but must agree with diary.Normalize for identical input; the two are
// held together by a cross-package test.
func Transform(raws []diary.RawEntry) []DayRecord {
	out := make([]DayRecord, len(raws))
	for i, r := range raws {
		moodNum := 0
		if m := moodNumPattern.FindStringSubmatch(r.Mood); m != nil {
			moodNum, _ = strconv.Atoi(m[1])
		}

		overload := 0
		if m := overloadPattern.FindStringSubmatch(r.Overload); m != nil {
			overload, _ = strconv.Atoi(m[1])
		}

		stress := 0
		switch v := r.Stress.(type) {
		case float64:
			stress = int(v)
		case int:
			stress = v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				stress = n
			}
		}

		var sleepHours *float64
		switch v := r.SleepHours.(type) {
		case float64:
			f := v
			sleepHours = &f
		case int:
			f := float64(v)
			sleepHours = &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				sleepHours = &f
			}
		}

		out[i] = DayRecord{
			Date:         r.Date,
			MoodNum:      moodNum,
			MoodLabel:    r.Mood,
			Energy:       r.Energy,
			Fatigue:      r.Fatigue,
			SleepHours:   sleepHours,
			SleepQuality: r.SleepQuality,
			Stress:       stress,
			Overload:     overload,
			HypoSymptoms: splitSymptoms(r.HypomanicSymptoms),
			DepSymptoms:  splitSymptoms(r.DepressiveSymptoms),
			Trigger:      strOrEmpty(r.Trigger),
			Helped:       strOrEmpty(r.Helped),
			Note:         strOrEmpty(r.Note),
		}
	}
	return out
}

func splitSymptoms(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PeriodOf reports the earliest and latest dates in the record set.
// Dates compare lexically in the store's YYYY-MM-DD format.
func PeriodOf(records []DayRecord) (start, end string) {
	for _, r := range records {
		if start == "" || r.Date < start {
			start = r.Date
		}
		if end == "" || r.Date > end {
			end = r.Date
		}
	}
	return start, end
}
