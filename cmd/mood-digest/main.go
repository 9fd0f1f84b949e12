package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/diary"
	"github.com/moodtrace/dashboard/internal/digest"
	"github.com/moodtrace/dashboard/internal/rowstore"
)

func main() {
	var (
		rangeFlag  = flag.String("range", "3months", "trailing window: 1month, 2months, 3months, 6months, 1year, all")
		format     = flag.String("format", "md", "output format: md, html or pdf")
		outputPath = flag.String("output", "", "path to write the digest (defaults to stdout; required for pdf)")
		analyze    = flag.Bool("analyze", false, "run a fresh model analysis and embed it in the digest")
	)
	flag.Parse()

	if *format == "pdf" && *outputPath == "" {
		log.Fatal("-output is required with -format pdf")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rows := rowstore.NewClient(rowstore.Config{
		BaseURL:     requiredEnv("NOCODB_BASE_URL"),
		Token:       requiredEnv("NOCODB_API_TOKEN"),
		MoodTableID: requiredEnv("NOCODB_MOOD_TABLE_ID"),
	})

	page, err := rows.ListMoodEntries(ctx, 0, "")
	if err != nil {
		log.Fatalf("fetch mood entries: %v", err)
	}

	rng := diary.ParseRange(*rangeFlag)
	entries := diary.FilterByRange(diary.NormalizeAll(page.List), rng, time.Now())

	rep := digest.Report{
		GeneratedAt: time.Now(),
		Range:       rng,
		Entries:     entries,
		Metrics:     diary.CalculateMetrics(entries),
	}

	if *analyze {
		attachFreshAnalysis(ctx, &rep, page.List)
	}

	markdown := digest.BuildMarkdown(rep)
	switch *format {
	case "md":
		if err := writeOut(*outputPath, []byte(markdown)); err != nil {
			log.Fatalf("write digest: %v", err)
		}
	case "html":
		htmlDoc, err := digest.RenderHTML(markdown)
		if err != nil {
			log.Fatalf("render html: %v", err)
		}
		if err := writeOut(*outputPath, []byte(htmlDoc)); err != nil {
			log.Fatalf("write digest: %v", err)
		}
	case "pdf":
		pdf, err := digest.NewChromiumPDFRenderer().Render(ctx, markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*outputPath, pdf, 0o644); err != nil {
			log.Fatalf("write digest: %v", err)
		}
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

// attachFreshAnalysis runs the general analysis variant over the trailing
// three months and embeds the result. Analysis failures are reported but
// do not abort the digest.
func attachFreshAnalysis(ctx context.Context, rep *digest.Report, raws []diary.RawEntry) {
	caller, err := analysis.NewCallerFromEnv()
	if err != nil {
		log.Printf("warning: analysis skipped: %v", err)
		return
	}
	records := analysis.Transform(analysis.LastThreeMonths(raws, time.Now()))
	if len(records) == 0 {
		log.Printf("warning: analysis skipped: no entries in the last three months")
		return
	}
	raw, _, err := analysis.NewAnalyzer(caller).Analyze(ctx, records, analysis.VariantGeneral)
	if err != nil {
		log.Printf("warning: analysis failed: %v", err)
		return
	}
	var res analysis.GeneralResult
	if err := json.Unmarshal(raw, &res); err != nil {
		log.Printf("warning: analysis result rejected: %v", err)
		return
	}
	rep.Analysis = &res
	rep.CacheKey = analysis.CacheKey(records)
}

func writeOut(path string, blob []byte) error {
	if path == "" {
		_, err := fmt.Print(string(blob))
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

func requiredEnv(name string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		log.Fatalf("missing required env var %s", name)
	}
	return v
}
