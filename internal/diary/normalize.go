package diary

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	moodPattern     = regexp.MustCompile(`^([+-]?\d+)`)
	overloadPattern = regexp.MustCompile(`^(\d+)`)
)

// ParseMoodValue extracts the leading signed integer from a mood descriptor
// like "-2 (Deprese)" or "+3 (Výrazná hypománie)". A descriptor with no
// leading integer parses as 0 with defaulted=true. The value is NOT clamped
// to [-3,+3]; an out-of-range value passes through as a data-quality signal
// and maps to the unknown band.
func ParseMoodValue(mood string) (value int, defaulted bool) {
	m := moodPattern.FindStringSubmatch(mood)
	if m == nil {
		return 0, true
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, true
	}
	return v, false
}

// MoodLabel maps a mood score to its band label.
func MoodLabel(mood int) string {
	switch mood {
	case -3:
		return BandSevereDepression
	case -2:
		return BandDepression
	case -1:
		return BandMildDepression
	case 0:
		return BandStable
	case 1:
		return BandMildHypomania
	case 2:
		return BandHypomania
	case 3:
		return BandPronouncedHypomania
	default:
		return BandUnknown
	}
}

// ParseOverloadValue extracts the leading integer from an overload
// descriptor like "2 - Významné". Valid domain is {0,1,2,3}; anything
// unparseable reads as 0 with defaulted=true.
func ParseOverloadValue(overload string) (value int, defaulted bool) {
	m := overloadPattern.FindStringSubmatch(overload)
	if m == nil {
		return 0, true
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, true
	}
	return v, false
}

// ParseStress coerces the stress column to an integer. The row-store
// returns it sometimes as a number and sometimes as a string ("4");
// anything non-numeric is treated as missing, not as a real zero.
func ParseStress(raw any) (value int, missing bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), false
	case int:
		return v, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true
		}
		return n, false
	default:
		return 0, true
	}
}

// ParseSleepHours coerces the sleep-duration column to decimal hours.
func ParseSleepHours(raw any) (hours float64, missing bool) {
	switch v := raw.(type) {
	case float64:
		return v, false
	case int:
		return float64(v), false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, true
		}
		return f, false
	default:
		return 0, true
	}
}

// ParseSymptoms splits a comma-separated symptom list, trimming whitespace
// and dropping empty tokens. Order is preserved; duplicates are kept.
func ParseSymptoms(symptoms string) []string {
	if strings.TrimSpace(symptoms) == "" {
		return nil
	}
	parts := strings.Split(symptoms, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Normalize derives the typed view of one raw diary row. It never fails:
// every parse failure degrades to a flagged default instead of an error.
func Normalize(raw RawEntry) NormalizedEntry {
	mood, moodDefaulted := ParseMoodValue(raw.Mood)
	overload, overloadDefaulted := ParseOverloadValue(raw.Overload)
	stress, stressMissing := ParseStress(raw.Stress)
	sleep, sleepMissing := ParseSleepHours(raw.SleepHours)
	hypo := ParseSymptoms(raw.HypomanicSymptoms)
	dep := ParseSymptoms(raw.DepressiveSymptoms)

	date, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		date = time.Time{}
	}

	return NormalizedEntry{
		ID:         raw.ID,
		Date:       date,
		DateString: raw.Date,

		Mood:          mood,
		MoodDefaulted: moodDefaulted,
		MoodLabel:     MoodLabel(mood),

		Energy:       raw.Energy,
		Fatigue:      raw.Fatigue,
		SleepHours:   sleep,
		SleepMissing: sleepMissing,
		SleepQuality: raw.SleepQuality,

		Stress:        stress,
		StressMissing: stressMissing,

		Overload:          overload,
		OverloadDefaulted: overloadDefaulted,

		HypomanicSymptoms:  hypo,
		DepressiveSymptoms: dep,
		MixedState:         len(hypo) > 0 && len(dep) > 0,

		Trigger: derefOrEmpty(raw.Trigger),
		Helped:  derefOrEmpty(raw.Helped),
		Note:    derefOrEmpty(raw.Note),
	}
}

// NormalizeAll maps a fetched row set in order.
func NormalizeAll(raws []RawEntry) []NormalizedEntry {
	out := make([]NormalizedEntry, len(raws))
	for i, r := range raws {
		out[i] = Normalize(r)
	}
	return out
}
