// Package httpapi exposes the dashboard's JSON surface: passcode gate,
// raw-entry proxy, analyzer invocation, analysis cache and the digest
// endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/analysiscache"
	"github.com/moodtrace/dashboard/internal/diary"
	"github.com/moodtrace/dashboard/internal/digest"
	"github.com/moodtrace/dashboard/internal/rowstore"
)

const (
	authCookieName  = "auth"
	authCookieValue = "authenticated"
	authCookieTTL   = 90 * 24 * time.Hour
)

// publicPaths are reachable without the session cookie. Everything else
// under the mux requires it.
var publicPaths = map[string]struct{}{
	"/api/auth":        {},
	"/api/health":      {},
	"/api/mood":        {},
	"/api/analyze":     {},
	"/api/ai-analysis": {},
}

// MoodSource lists raw diary entries; *rowstore.Client satisfies it.
type MoodSource interface {
	ListMoodEntries(ctx context.Context, limit int, sort string) (*rowstore.MoodPage, error)
}

// ModelAnalyzer runs the clinical analysis protocol against the external
// model; *analysis.Analyzer satisfies it.
type ModelAnalyzer interface {
	Analyze(ctx context.Context, records []analysis.DayRecord, v analysis.Variant) (json.RawMessage, analysis.Usage, error)
}

// PDFRenderer prints digest markdown to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

type Server struct {
	moods    MoodSource
	analyzer ModelAnalyzer
	cache    analysiscache.Store
	pdf      PDFRenderer
	passcode string
	clock    func() time.Time
}

type Config struct {
	Moods    MoodSource
	Analyzer ModelAnalyzer
	Cache    analysiscache.Store
	PDF      PDFRenderer
	Passcode string
	// Clock is overridable in tests; nil means time.Now.
	Clock func() time.Time
}

func NewServer(cfg Config) http.Handler {
	s := &Server{
		moods:    cfg.Moods,
		analyzer: cfg.Analyzer,
		cache:    cfg.Cache,
		pdf:      cfg.PDF,
		passcode: cfg.Passcode,
		clock:    cfg.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", s.handleAuth)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/mood", s.handleMood)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/ai-analysis", s.handleAnalysisCache)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/timeline", s.handleTimeline)
	mux.HandleFunc("/api/digest", s.handleDigest)
	return s.requireSession(mux)
}

// requireSession gates non-public paths on the long-lived session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicPaths[r.URL.Path]; !ok {
			c, err := r.Cookie(authCookieName)
			if err != nil || c.Value != authCookieValue {
				writeError(w, newError(CodeUnauthorized, "authentication required", ""))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeBody(r *http.Request, dst any) error {
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return NewValidationError("read body: " + err.Error())
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return NewValidationError("invalid json: " + err.Error())
	}
	return nil
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if s.passcode == "" || req.Passcode != s.passcode {
		writeError(w, newError(CodeUnauthorized, "invalid passcode", ""))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    authCookieValue,
		Path:     "/",
		MaxAge:   int(authCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, 200, map[string]bool{"success": true})
}

func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	sort := r.URL.Query().Get("sort")
	page, err := s.moods.ListMoodEntries(r.Context(), limit, sort)
	if err != nil {
		log.Printf("mood fetch failed: %v", err)
		writeError(w, NewUpstreamError("failed to fetch mood entries", err))
		return
	}
	writeJSON(w, 200, page)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Entries []analysis.DayRecord `json:"entries"`
		Variant string               `json:"variant"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, NewValidationError("entries must not be empty"))
		return
	}
	variant, err := analysis.ParseVariant(req.Variant)
	if err != nil {
		writeError(w, NewValidationError(err.Error()))
		return
	}

	result, usage, err := s.analyzer.Analyze(r.Context(), req.Entries, variant)
	if err != nil {
		log.Printf("analysis failed (%d entries, variant=%s): %v", len(req.Entries), variant, err)
		writeError(w, NewUpstreamError("analysis failed", err))
		return
	}
	writeJSON(w, 200, map[string]any{
		"success":  true,
		"analysis": result,
		"usage":    usage,
	})
}

func (s *Server) handleAnalysisCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.lookupAnalysis(w, r)
	case http.MethodPost:
		s.saveAnalysis(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) lookupAnalysis(w http.ResponseWriter, r *http.Request) {
	periodKey := strings.TrimSpace(r.URL.Query().Get("period_key"))
	if periodKey == "" {
		writeError(w, NewValidationError("period_key is required"))
		return
	}
	fuzzy := r.URL.Query().Get("fuzzy") == "true"

	entry, found, fuzzyMatched, err := s.cache.Lookup(r.Context(), periodKey, fuzzy)
	if err != nil {
		log.Printf("cache lookup failed for %s: %v", periodKey, err)
		writeError(w, NewUpstreamError("cache lookup failed", err))
		return
	}
	if !found {
		writeJSON(w, 200, map[string]any{"found": false})
		return
	}
	writeJSON(w, 200, map[string]any{
		"found":         true,
		"analysis":      entry.Analysis,
		"usage":         entry.Usage,
		"cache_key":     entry.PeriodKey,
		"fuzzy_matched": fuzzyMatched,
	})
}

func (s *Server) saveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodKey string          `json:"period_key"`
		Analysis  json.RawMessage `json:"analysis"`
		Usage     analysis.Usage  `json:"usage"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.PeriodKey) == "" || len(req.Analysis) == 0 {
		writeError(w, NewValidationError("period_key and analysis are required"))
		return
	}
	if err := s.cache.Save(r.Context(), analysiscache.Entry{
		PeriodKey: req.PeriodKey,
		Analysis:  req.Analysis,
		Usage:     req.Usage,
	}); err != nil {
		log.Printf("cache save failed for %s: %v", req.PeriodKey, err)
		writeError(w, NewUpstreamError("cache save failed", err))
		return
	}
	writeJSON(w, 200, map[string]bool{"success": true})
}

// loadWindow fetches every entry from the store, normalizes it and trims
// to the requested range.
func (s *Server) loadWindow(r *http.Request) ([]diary.NormalizedEntry, diary.Range, error) {
	rng := diary.ParseRange(r.URL.Query().Get("range"))
	page, err := s.moods.ListMoodEntries(r.Context(), 0, "")
	if err != nil {
		return nil, rng, NewUpstreamError("failed to fetch mood entries", err)
	}
	entries := diary.FilterByRange(diary.NormalizeAll(page.List), rng, s.clock())
	return entries, rng, nil
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	entries, rng, err := s.loadWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"range":   rng,
		"count":   len(entries),
		"metrics": diary.CalculateMetrics(entries),
	})
}

// timelineEntry is the wire shape of one normalized day, with the parse
// flags the UI needs to show "missing" honestly instead of a silent zero.
type timelineEntry struct {
	Date               string   `json:"date"`
	Mood               int      `json:"mood"`
	MoodDefaulted      bool     `json:"mood_defaulted,omitempty"`
	MoodLabel          string   `json:"mood_label"`
	Energy             string   `json:"energy,omitempty"`
	Fatigue            string   `json:"fatigue,omitempty"`
	SleepHours         float64  `json:"sleep_hours"`
	SleepMissing       bool     `json:"sleep_missing,omitempty"`
	SleepQuality       string   `json:"sleep_quality,omitempty"`
	Stress             int      `json:"stress"`
	StressMissing      bool     `json:"stress_missing,omitempty"`
	Overload           int      `json:"overload"`
	OverloadDefaulted  bool     `json:"overload_defaulted,omitempty"`
	HypomanicSymptoms  []string `json:"hypo_symptoms,omitempty"`
	DepressiveSymptoms []string `json:"dep_symptoms,omitempty"`
	MixedState         bool     `json:"mixed_state"`
	Trigger            string   `json:"trigger,omitempty"`
	Helped             string   `json:"helped,omitempty"`
	Note               string   `json:"note,omitempty"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	entries, rng, err := s.loadWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]timelineEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, timelineEntry{
			Date:               e.DateString,
			Mood:               e.Mood,
			MoodDefaulted:      e.MoodDefaulted,
			MoodLabel:          e.MoodLabel,
			Energy:             e.Energy,
			Fatigue:            e.Fatigue,
			SleepHours:         e.SleepHours,
			SleepMissing:       e.SleepMissing,
			SleepQuality:       e.SleepQuality,
			Stress:             e.Stress,
			StressMissing:      e.StressMissing,
			Overload:           e.Overload,
			OverloadDefaulted:  e.OverloadDefaulted,
			HypomanicSymptoms:  e.HypomanicSymptoms,
			DepressiveSymptoms: e.DepressiveSymptoms,
			MixedState:         e.MixedState,
			Trigger:            e.Trigger,
			Helped:             e.Helped,
			Note:               e.Note,
		})
	}
	writeJSON(w, 200, map[string]any{
		"range": rng,
		"count": len(out),
		"list":  out,
	})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	entries, rng, err := s.loadWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rep := digest.Report{
		GeneratedAt: s.clock(),
		Range:       rng,
		Entries:     entries,
		Metrics:     diary.CalculateMetrics(entries),
	}
	s.attachCachedAnalysis(r.Context(), &rep, entries)

	markdown := digest.BuildMarkdown(rep)
	switch format := r.URL.Query().Get("format"); format {
	case "", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(markdown))
	case "html":
		htmlDoc, err := digest.RenderHTML(markdown)
		if err != nil {
			writeError(w, newError(CodeInternal, "digest render failed", err.Error()))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(htmlDoc))
	case "pdf":
		if s.pdf == nil {
			writeError(w, newError(CodeInternal, "pdf rendering not configured", ""))
			return
		}
		pdf, err := s.pdf.Render(r.Context(), markdown)
		if err != nil {
			log.Printf("digest pdf render failed: %v", err)
			writeError(w, newError(CodeInternal, "pdf render failed", err.Error()))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="mood-digest.pdf"`)
		_, _ = w.Write(pdf)
	default:
		writeError(w, NewValidationError("unknown format "+format))
	}
}

// attachCachedAnalysis looks up the cached general analysis for the
// window's period key. A miss or decode failure leaves the digest without
// an analysis section rather than failing the request.
func (s *Server) attachCachedAnalysis(ctx context.Context, rep *digest.Report, entries []diary.NormalizedEntry) {
	if s.cache == nil || len(entries) == 0 {
		return
	}
	records := make([]analysis.DayRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, analysis.DayRecord{Date: e.DateString})
	}
	key := analysis.CacheKey(records)
	entry, found, fuzzyMatched, err := s.cache.Lookup(ctx, key, true)
	if err != nil || !found {
		return
	}
	var res analysis.GeneralResult
	if err := json.Unmarshal(entry.Analysis, &res); err != nil {
		log.Printf("cached analysis under %s is not the general schema: %v", entry.PeriodKey, err)
		return
	}
	rep.Analysis = &res
	rep.CacheKey = entry.PeriodKey
	rep.FuzzyMatched = fuzzyMatched
}
