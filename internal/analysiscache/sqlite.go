package analysiscache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/moodtrace/dashboard/internal/analysis"
)

// SQLiteStore keeps analysis results in a local SQLite file for
// deployments without an analysis table in the row-store. Several rows
// may exist per period key from overlapping re-runs; lookups take the
// newest.
type SQLiteStore struct {
	db    *sqlx.DB
	clock func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	period_key TEXT NOT NULL,
	analysis   TEXT NOT NULL,
	usage_json TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_cache_key ON analysis_cache (period_key);
`

func NewSQLiteStore(dbPath string, clock func() time.Time) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if clock == nil {
		clock = time.Now
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type cacheRow struct {
	PeriodKey string `db:"period_key"`
	Analysis  string `db:"analysis"`
	UsageJSON string `db:"usage_json"`
	CreatedAt string `db:"created_at"`
}

func (s *SQLiteStore) Save(ctx context.Context, entry Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	usageBlob, err := json.Marshal(entry.Usage)
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_cache (period_key, analysis, usage_json, created_at) VALUES (?, ?, ?, ?)`,
		entry.PeriodKey, string(entry.Analysis), string(usageBlob), createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, periodKey string, fuzzy bool) (Entry, bool, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		`SELECT period_key, analysis, usage_json, created_at FROM analysis_cache WHERE period_key = ? ORDER BY id DESC LIMIT 1`,
		periodKey)
	switch {
	case err == nil:
		entry, err := rowToEntry(row)
		return entry, err == nil, false, err
	case err != sql.ErrNoRows:
		return Entry{}, false, false, fmt.Errorf("lookup analysis: %w", err)
	}

	if !fuzzy {
		return Entry{}, false, false, nil
	}

	var rows []cacheRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT period_key, analysis, usage_json, created_at FROM analysis_cache ORDER BY id DESC LIMIT 50`); err != nil {
		return Entry{}, false, false, fmt.Errorf("fuzzy scan: %w", err)
	}
	for _, r := range rows {
		if analysis.FuzzyMatch(periodKey, r.PeriodKey) {
			entry, err := rowToEntry(r)
			return entry, err == nil, true, err
		}
	}
	return Entry{}, false, false, nil
}

func rowToEntry(row cacheRow) (Entry, error) {
	var usage analysis.Usage
	if err := json.Unmarshal([]byte(row.UsageJSON), &usage); err != nil {
		return Entry{}, fmt.Errorf("decode cached usage: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return Entry{
		PeriodKey: row.PeriodKey,
		Analysis:  json.RawMessage(row.Analysis),
		Usage:     usage,
		CreatedAt: createdAt,
	}, nil
}
