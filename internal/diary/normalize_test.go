package diary

import (
	"reflect"
	"testing"
)

func TestParseMoodValue(t *testing.T) {
	cases := []struct {
		in        string
		want      int
		defaulted bool
	}{
		{"-3 (Těžká deprese)", -3, false},
		{"-2 (Deprese)", -2, false},
		{"-1 (Lehká deprese)", -1, false},
		{"0 (Stabilní)", 0, false},
		{"+1 (Lehká hypománie)", 1, false},
		{"+2 (Hypománie)", 2, false},
		{"+3 (Jasná hypománie)", 3, false},
		{"-2 - Deprese", -2, false},
		{"2", 2, false},
		{"", 0, true},
		{"Deprese", 0, true},
		{"(-2) Deprese", 0, true},
		{"nálada -2", 0, true},
		// Out-of-range values pass through unclamped.
		{"+7 (??)", 7, false},
		{"-12", -12, false},
	}
	for _, c := range cases {
		got, defaulted := ParseMoodValue(c.in)
		if got != c.want || defaulted != c.defaulted {
			t.Errorf("ParseMoodValue(%q) = (%d, %v), want (%d, %v)", c.in, got, defaulted, c.want, c.defaulted)
		}
	}
}

func TestMoodLabel(t *testing.T) {
	cases := []struct {
		mood int
		want string
	}{
		{-3, BandSevereDepression},
		{-2, BandDepression},
		{-1, BandMildDepression},
		{0, BandStable},
		{1, BandMildHypomania},
		{2, BandHypomania},
		{3, BandPronouncedHypomania},
		{4, BandUnknown},
		{-4, BandUnknown},
	}
	for _, c := range cases {
		if got := MoodLabel(c.mood); got != c.want {
			t.Errorf("MoodLabel(%d) = %q, want %q", c.mood, got, c.want)
		}
	}
}

func TestParseOverloadValue(t *testing.T) {
	cases := []struct {
		in        string
		want      int
		defaulted bool
	}{
		{"0 - Žádné", 0, false},
		{"1 - Mírné", 1, false},
		{"2 - Významné", 2, false},
		{"3 - Silné", 3, false},
		{"", 0, true},
		{"Silné", 0, true},
	}
	for _, c := range cases {
		got, defaulted := ParseOverloadValue(c.in)
		if got != c.want || defaulted != c.defaulted {
			t.Errorf("ParseOverloadValue(%q) = (%d, %v), want (%d, %v)", c.in, got, defaulted, c.want, c.defaulted)
		}
	}
}

func TestParseStress(t *testing.T) {
	cases := []struct {
		in      any
		want    int
		missing bool
	}{
		{float64(4), 4, false},
		{"4", 4, false},
		{" 3 ", 3, false},
		{"vysoký", 0, true},
		{nil, 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, missing := ParseStress(c.in)
		if got != c.want || missing != c.missing {
			t.Errorf("ParseStress(%v) = (%d, %v), want (%d, %v)", c.in, got, missing, c.want, c.missing)
		}
	}
}

func TestParseSleepHours(t *testing.T) {
	cases := []struct {
		in      any
		want    float64
		missing bool
	}{
		{float64(7.5), 7.5, false},
		{"6.5", 6.5, false},
		{nil, 0, true},
		{"dobrý", 0, true},
	}
	for _, c := range cases {
		got, missing := ParseSleepHours(c.in)
		if got != c.want || missing != c.missing {
			t.Errorf("ParseSleepHours(%v) = (%v, %v), want (%v, %v)", c.in, got, missing, c.want, c.missing)
		}
	}
}

func TestParseSymptoms(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"Zrychlené myšlení", []string{"Zrychlené myšlení"}},
		{"Zrychlené myšlení, Snížená potřeba spánku", []string{"Zrychlené myšlení", "Snížená potřeba spánku"}},
		{" a , , b ,", []string{"a", "b"}},
	}
	for _, c := range cases {
		if got := ParseSymptoms(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseSymptoms(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMixedStateFlag(t *testing.T) {
	cases := []struct {
		hypo, dep string
		want      bool
	}{
		{"", "", false},
		{"Zrychlené myšlení", "", false},
		{"", "Silná únava", false},
		{"Zrychlené myšlení", "Silná únava", true},
	}
	for _, c := range cases {
		e := Normalize(RawEntry{Date: "2025-01-01", HypomanicSymptoms: c.hypo, DepressiveSymptoms: c.dep})
		if e.MixedState != c.want {
			t.Errorf("MixedState(hypo=%q, dep=%q) = %v, want %v", c.hypo, c.dep, e.MixedState, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	trigger := "hádka"
	raw := RawEntry{
		ID:                 12,
		Date:               "2025-03-14",
		Mood:               "-2 (Deprese)",
		Energy:             "Nízká",
		Fatigue:            "Silná",
		SleepHours:         "6.5",
		SleepQuality:       "Špatný",
		Stress:             "4",
		Overload:           "2 - Významné",
		HypomanicSymptoms:  "Zrychlené myšlení",
		DepressiveSymptoms: "Silná únava, Apatie",
		Trigger:            &trigger,
	}
	e := Normalize(raw)

	if e.Mood != -2 || e.MoodDefaulted {
		t.Fatalf("mood = (%d, %v), want (-2, false)", e.Mood, e.MoodDefaulted)
	}
	if e.MoodLabel != BandDepression {
		t.Fatalf("mood label = %q", e.MoodLabel)
	}
	if e.Stress != 4 || e.StressMissing {
		t.Fatalf("stress = (%d, %v), want (4, false)", e.Stress, e.StressMissing)
	}
	if e.SleepHours != 6.5 || e.SleepMissing {
		t.Fatalf("sleep = (%v, %v), want (6.5, false)", e.SleepHours, e.SleepMissing)
	}
	if e.Overload != 2 || e.OverloadDefaulted {
		t.Fatalf("overload = (%d, %v), want (2, false)", e.Overload, e.OverloadDefaulted)
	}
	if !e.MixedState {
		t.Fatal("expected mixed-state flag")
	}
	if e.Trigger != "hádka" || e.Helped != "" || e.Note != "" {
		t.Fatalf("free text = (%q, %q, %q)", e.Trigger, e.Helped, e.Note)
	}
	if e.Date.Year() != 2025 || e.Date.Month() != 3 || e.Date.Day() != 14 {
		t.Fatalf("date = %v", e.Date)
	}
}

func TestNormalizeDegradesNeverFails(t *testing.T) {
	e := Normalize(RawEntry{Date: "not-a-date", Mood: "???", Overload: "x", Stress: "x", SleepHours: "x"})
	if !e.MoodDefaulted || !e.OverloadDefaulted || !e.StressMissing || !e.SleepMissing {
		t.Fatalf("expected every unparseable field flagged: %+v", e)
	}
	if e.Mood != 0 || e.Overload != 0 || e.Stress != 0 || e.SleepHours != 0 {
		t.Fatalf("expected zero defaults: %+v", e)
	}
	if !e.Date.IsZero() {
		t.Fatalf("unparseable date should read as zero time, got %v", e.Date)
	}
}
