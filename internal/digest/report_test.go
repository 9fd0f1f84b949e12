package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/diary"
)

func sampleEntries() []diary.NormalizedEntry {
	return []diary.NormalizedEntry{
		{DateString: "2025-05-01", Mood: 2, MoodLabel: "Hypománie", MixedState: true,
			HypomanicSymptoms: []string{"Zrychlené myšlenky"}, DepressiveSymptoms: []string{"Únava"}},
		{DateString: "2025-05-02", Mood: 0, MoodLabel: "Stabilní nálada", SleepMissing: true},
		{DateString: "2025-05-03", Mood: -2, MoodLabel: "Deprese", MoodDefaulted: false},
	}
}

func TestBuildMarkdownCoversAllSections(t *testing.T) {
	rep := Report{
		GeneratedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Range:       diary.Range3Months,
		Entries:     sampleEntries(),
		Metrics:     diary.CalculateMetrics(sampleEntries()),
	}
	md := BuildMarkdown(rep)

	for _, want := range []string{
		"# Mood Digest",
		"Covered period: **2025-05-01 — 2025-05-03**",
		"## Aggregate Metrics",
		"## Mood Distribution",
		"| Hypománie | 1 |",
		"Days with same-day mixed features: 1",
		"## Data Quality",
		"sleep length missing on 1 day(s)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestBuildMarkdownEmptyWindow(t *testing.T) {
	md := BuildMarkdown(Report{GeneratedAt: time.Now(), Range: diary.RangeAll})
	if !strings.Contains(md, "No entries in the selected range.") {
		t.Fatalf("expected empty-window notice, got:\n%s", md)
	}
	if strings.Contains(md, "## Aggregate Metrics") {
		t.Error("empty window should not render metric tables")
	}
}

func TestBuildMarkdownSkipsDataQualityWhenClean(t *testing.T) {
	entries := []diary.NormalizedEntry{{DateString: "2025-05-01", MoodLabel: "Stabilní nálada"}}
	md := BuildMarkdown(Report{GeneratedAt: time.Now(), Range: diary.RangeAll, Entries: entries})
	if strings.Contains(md, "## Data Quality") {
		t.Error("clean entries should not produce a data-quality section")
	}
}

func TestBuildMarkdownFlagsFuzzyAnalysis(t *testing.T) {
	rep := Report{
		GeneratedAt: time.Now(),
		Range:       diary.Range3Months,
		Entries:     sampleEntries(),
		Analysis: &analysis.GeneralResult{
			RedFlags:        []string{"sleep deprivation streak"},
			MarkdownSummary: "Short clinical summary.",
		},
		CacheKey:     "2025-03-01_2025-05-31_42",
		FuzzyMatched: true,
	}
	md := BuildMarkdown(rep)

	if !strings.Contains(md, "nearby period") {
		t.Error("fuzzy-matched analysis should carry a staleness note")
	}
	if !strings.Contains(md, "### Red Flags") || !strings.Contains(md, "sleep deprivation streak") {
		t.Error("red flags should be listed")
	}
	if !strings.Contains(md, "Short clinical summary.") {
		t.Error("model summary should be embedded")
	}
}

func TestRenderHTMLConvertsTables(t *testing.T) {
	htmlDoc, err := RenderHTML("| A | B |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(htmlDoc, "<table>") {
		t.Errorf("expected GFM table conversion, got: %s", htmlDoc)
	}
	if !strings.Contains(htmlDoc, "digest-wrap") {
		t.Error("expected inline layout wrapper")
	}
}
