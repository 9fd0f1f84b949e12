// Package rowstore talks to the external NocoDB instance that owns the
// diary rows and the persisted analysis results. The dashboard never
// writes diary rows; the journal itself is filled in elsewhere.
package rowstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/moodtrace/dashboard/internal/diary"
)

const (
	// DefaultLimit matches the dashboard's "fetch everything" page size.
	DefaultLimit = 1000
	// DefaultSort is descending by date, newest first.
	DefaultSort = "-Datum"
)

type PageInfo struct {
	TotalRows   int  `json:"totalRows,omitempty"`
	Page        int  `json:"page,omitempty"`
	PageSize    int  `json:"pageSize,omitempty"`
	IsFirstPage bool `json:"isFirstPage,omitempty"`
	IsLastPage  bool `json:"isLastPage,omitempty"`
}

// MoodPage is the raw-entry listing as the store returns it.
type MoodPage struct {
	List     []diary.RawEntry `json:"list"`
	PageInfo PageInfo         `json:"pageInfo"`
}

// AnalysisRecord is one persisted analysis result row. Analysis and Usage
// hold JSON text; the store treats them as opaque long-text columns.
type AnalysisRecord struct {
	ID        int    `json:"Id,omitempty"`
	PeriodKey string `json:"period_key"`
	Analysis  string `json:"analysis"`
	Usage     string `json:"usage"`
	CreatedAt string `json:"CreatedAt,omitempty"`
}

type analysisPage struct {
	List     []AnalysisRecord `json:"list"`
	PageInfo PageInfo         `json:"pageInfo"`
}

type Config struct {
	BaseURL         string
	Token           string
	MoodTableID     string
	AnalysisTableID string
}

type Client struct {
	http            *resty.Client
	moodTableID     string
	analysisTableID string
}

func NewClient(cfg Config) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("xc-token", cfg.Token).
		SetHeader("Accept", "application/json")
	return &Client{
		http:            http,
		moodTableID:     cfg.MoodTableID,
		analysisTableID: cfg.AnalysisTableID,
	}
}

// ListMoodEntries fetches diary rows. Zero limit and empty sort fall back
// to the defaults (1000 rows, newest first).
func (c *Client) ListMoodEntries(ctx context.Context, limit int, sort string) (*MoodPage, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if sort == "" {
		sort = DefaultSort
	}

	ctx, span := otel.Tracer("rowstore").Start(ctx, "rowstore.list_mood_entries")
	span.SetAttributes(attribute.Int("rowstore.limit", limit))
	defer span.End()

	var page MoodPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("sort", sort).
		SetResult(&page).
		Get(c.recordsPath(c.moodTableID))
	if err != nil {
		return nil, fmt.Errorf("fetch mood entries: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch mood entries: store returned %d: %s", resp.StatusCode(), resp.String())
	}
	return &page, nil
}

// FindAnalysisByKey looks up persisted analysis rows for an exact period
// key. The store may hold several from overlapping re-runs; rows come back
// newest first and the caller takes the head.
func (c *Client) FindAnalysisByKey(ctx context.Context, periodKey string) ([]AnalysisRecord, error) {
	var page analysisPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("where", fmt.Sprintf("(period_key,eq,%s)", periodKey)).
		SetQueryParam("sort", "-CreatedAt").
		SetResult(&page).
		Get(c.recordsPath(c.analysisTableID))
	if err != nil {
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("find analysis: store returned %d: %s", resp.StatusCode(), resp.String())
	}
	return page.List, nil
}

// ListRecentAnalyses returns the newest persisted analyses for fuzzy
// window matching.
func (c *Client) ListRecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var page analysisPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("sort", "-CreatedAt").
		SetResult(&page).
		Get(c.recordsPath(c.analysisTableID))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list analyses: store returned %d: %s", resp.StatusCode(), resp.String())
	}
	return page.List, nil
}

// SaveAnalysis persists one analysis row. Concurrent writers can race;
// last write wins, which is acceptable for a single-operator journal.
func (c *Client) SaveAnalysis(ctx context.Context, rec AnalysisRecord) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(rec).
		Post(c.recordsPath(c.analysisTableID))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("save analysis: store returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *Client) recordsPath(tableID string) string {
	return fmt.Sprintf("/api/v2/tables/%s/records", tableID)
}
