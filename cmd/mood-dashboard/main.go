package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/analysiscache"
	"github.com/moodtrace/dashboard/internal/digest"
	"github.com/moodtrace/dashboard/internal/httpapi"
	"github.com/moodtrace/dashboard/internal/rowstore"
	"github.com/moodtrace/dashboard/internal/telemetry"
)

func main() {
	var (
		addr    = flag.String("addr", "", "listen address (default :8080, or PORT env)")
		cacheDB = flag.String("cache-db", "", "path to local SQLite analysis cache (overrides CACHE_DB_PATH)")
	)
	flag.Parse()

	listen := *addr
	if listen == "" {
		listen = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			listen = ":" + port
		}
	}

	rows := rowstore.NewClient(rowstore.Config{
		BaseURL:         requiredEnv("NOCODB_BASE_URL"),
		Token:           requiredEnv("NOCODB_API_TOKEN"),
		MoodTableID:     requiredEnv("NOCODB_MOOD_TABLE_ID"),
		AnalysisTableID: os.Getenv("NOCODB_ANALYSIS_TABLE_ID"),
	})

	caller, err := analysis.NewCallerFromEnv()
	if err != nil {
		log.Fatalf("analyzer setup failed: %v", err)
	}

	cache, closeCache := buildCache(*cacheDB, rows)
	defer closeCache()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "mood-dashboard")
	if err != nil {
		log.Printf("warning: tracing disabled: %v", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Printf("tracing shutdown: %v", err)
			}
		}()
	}

	handler := httpapi.NewServer(httpapi.Config{
		Moods:    rows,
		Analyzer: analysis.NewAnalyzer(caller),
		Cache:    cache,
		PDF:      digest.NewChromiumPDFRenderer(),
		Passcode: requiredEnv("DASHBOARD_PASSCODE"),
	})

	srv := &http.Server{Addr: listen, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Printf("mood-dashboard listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildCache prefers the row-store analysis table when one is configured,
// so cached results are shared across devices; otherwise it falls back to
// a local SQLite file.
func buildCache(cacheDB string, rows *rowstore.Client) (analysiscache.Store, func()) {
	if os.Getenv("NOCODB_ANALYSIS_TABLE_ID") != "" {
		log.Printf("using row-store analysis cache")
		return analysiscache.NewRemoteStore(rows), func() {}
	}

	path := cacheDB
	if path == "" {
		path = os.Getenv("CACHE_DB_PATH")
	}
	if path == "" {
		path = "./data/analysis-cache.db"
	}
	store, err := analysiscache.NewSQLiteStore(path, nil)
	if err != nil {
		log.Fatalf("failed to open analysis cache (%s): %v", path, err)
	}
	log.Printf("using sqlite analysis cache at %s", path)
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("cache close: %v", err)
		}
	}
}

func requiredEnv(name string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		log.Fatalf("missing required env var %s", name)
	}
	return v
}
