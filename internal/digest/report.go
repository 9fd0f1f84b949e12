// Package digest renders a clinician-facing summary of a diary window:
// aggregate metrics, data-quality notes and, when available, the cached
// model analysis for the same period.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/diary"
)

type Report struct {
	GeneratedAt time.Time
	Range       diary.Range
	Entries     []diary.NormalizedEntry
	Metrics     diary.AggregateMetrics

	// Analysis is the cached model result for the window, if one exists.
	Analysis *analysis.GeneralResult
	CacheKey string
	// FuzzyMatched marks the analysis as coming from a nearby, not exact,
	// period key, so the digest can flag possible staleness.
	FuzzyMatched bool
}

func BuildMarkdown(rep Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Mood Digest\n\n")
	fmt.Fprintf(&b, "Generated %s · range: %s · %d entries\n\n",
		rep.GeneratedAt.Format("2006-01-02"), rep.Range, len(rep.Entries))

	if start, end, ok := periodBounds(rep.Entries); ok {
		fmt.Fprintf(&b, "Covered period: **%s — %s**\n\n", start, end)
	} else {
		b.WriteString("No entries in the selected range.\n")
		return b.String()
	}

	writeMetricsSection(&b, rep.Metrics, len(rep.Entries))
	writeDistributionSection(&b, rep.Entries)
	writeDataQualitySection(&b, rep.Entries)
	if rep.Analysis != nil {
		writeAnalysisSection(&b, rep.Analysis, rep.CacheKey, rep.FuzzyMatched)
	}

	return b.String()
}

func writeMetricsSection(b *strings.Builder, m diary.AggregateMetrics, total int) {
	b.WriteString("## Aggregate Metrics\n\n")
	b.WriteString("| Metric | Value | Tier |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Dominant state | %s | — |\n", m.DominantState)
	fmt.Fprintf(b, "| Stability score | %d / 100 | %s |\n", m.StabilityScore, m.StabilityTier)
	fmt.Fprintf(b, "| Crisis days | %d of %d (%d%%) | — |\n", m.CrisisDays, total, m.CrisisDaysPercent)
	fmt.Fprintf(b, "| Average stress | %.1f / 5 | %s |\n", m.AvgStress, m.StressTier)
	fmt.Fprintf(b, "| Average sleep | %.1f h (%d outliers) | %s |\n", m.AvgSleepHours, m.SleepOutliers, m.SleepTier)
	b.WriteString("\n")
}

func writeDistributionSection(b *strings.Builder, entries []diary.NormalizedEntry) {
	counts := map[string]int{}
	mixedDays := 0
	for _, e := range entries {
		counts[e.MoodLabel]++
		if e.MixedState {
			mixedDays++
		}
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	b.WriteString("## Mood Distribution\n\n")
	b.WriteString("| Band | Days |\n|---|---|\n")
	for _, label := range labels {
		fmt.Fprintf(b, "| %s | %d |\n", label, counts[label])
	}
	fmt.Fprintf(b, "\nDays with same-day mixed features: %d\n\n", mixedDays)
}

func writeDataQualitySection(b *strings.Builder, entries []diary.NormalizedEntry) {
	var moodDefaulted, sleepMissing, stressMissing, overloadDefaulted int
	for _, e := range entries {
		if e.MoodDefaulted {
			moodDefaulted++
		}
		if e.SleepMissing {
			sleepMissing++
		}
		if e.StressMissing {
			stressMissing++
		}
		if e.OverloadDefaulted {
			overloadDefaulted++
		}
	}
	if moodDefaulted+sleepMissing+stressMissing+overloadDefaulted == 0 {
		return
	}

	b.WriteString("## Data Quality\n\n")
	b.WriteString("Some values below are defaults standing in for unparseable or missing fields, not real zeros:\n\n")
	if moodDefaulted > 0 {
		fmt.Fprintf(b, "- mood unparseable on %d day(s)\n", moodDefaulted)
	}
	if sleepMissing > 0 {
		fmt.Fprintf(b, "- sleep length missing on %d day(s)\n", sleepMissing)
	}
	if stressMissing > 0 {
		fmt.Fprintf(b, "- stress missing on %d day(s)\n", stressMissing)
	}
	if overloadDefaulted > 0 {
		fmt.Fprintf(b, "- overload unparseable on %d day(s)\n", overloadDefaulted)
	}
	b.WriteString("\n")
}

func writeAnalysisSection(b *strings.Builder, res *analysis.GeneralResult, cacheKey string, fuzzy bool) {
	b.WriteString("## Model Analysis\n\n")
	if fuzzy {
		fmt.Fprintf(b, "> Cached result for a nearby period (`%s`); may not reflect the newest entries.\n\n", cacheKey)
	} else if cacheKey != "" {
		fmt.Fprintf(b, "Cached under `%s`.\n\n", cacheKey)
	}

	if len(res.RedFlags) > 0 {
		b.WriteString("### Red Flags\n\n")
		for _, f := range res.RedFlags {
			fmt.Fprintf(b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	if len(res.DiscussionPoints) > 0 {
		b.WriteString("### Discussion Points\n\n")
		for _, p := range res.DiscussionPoints {
			fmt.Fprintf(b, "- %s\n", p)
		}
		b.WriteString("\n")
	}
	if len(res.HelpedTop) > 0 {
		b.WriteString("### What Helped\n\n")
		for _, h := range res.HelpedTop {
			fmt.Fprintf(b, "- %s (%d×)\n", h.Label, h.Count)
		}
		b.WriteString("\n")
	}
	if strings.TrimSpace(res.MarkdownSummary) != "" {
		b.WriteString("### Summary\n\n")
		b.WriteString(strings.TrimSpace(res.MarkdownSummary))
		b.WriteString("\n")
	}
}

func periodBounds(entries []diary.NormalizedEntry) (start, end string, ok bool) {
	for _, e := range entries {
		if e.DateString == "" {
			continue
		}
		if start == "" || e.DateString < start {
			start = e.DateString
		}
		if e.DateString > end {
			end = e.DateString
		}
	}
	return start, end, start != ""
}
