package analysiscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
	"github.com/moodtrace/dashboard/internal/rowstore"
)

// AnalysisRows is the slice of the row-store client the remote cache
// needs; the concrete *rowstore.Client satisfies it.
type AnalysisRows interface {
	FindAnalysisByKey(ctx context.Context, periodKey string) ([]rowstore.AnalysisRecord, error)
	ListRecentAnalyses(ctx context.Context, limit int) ([]rowstore.AnalysisRecord, error)
	SaveAnalysis(ctx context.Context, rec rowstore.AnalysisRecord) error
}

// RemoteStore keeps analysis results in the row-store itself, so a digest
// generated on one device is visible from every other one.
type RemoteStore struct {
	rows AnalysisRows
}

func NewRemoteStore(rows AnalysisRows) *RemoteStore {
	return &RemoteStore{rows: rows}
}

func (s *RemoteStore) Save(ctx context.Context, entry Entry) error {
	usageBlob, err := json.Marshal(entry.Usage)
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}
	return s.rows.SaveAnalysis(ctx, rowstore.AnalysisRecord{
		PeriodKey: entry.PeriodKey,
		Analysis:  string(entry.Analysis),
		Usage:     string(usageBlob),
	})
}

func (s *RemoteStore) Lookup(ctx context.Context, periodKey string, fuzzy bool) (Entry, bool, bool, error) {
	recs, err := s.rows.FindAnalysisByKey(ctx, periodKey)
	if err != nil {
		return Entry{}, false, false, err
	}
	if len(recs) > 0 {
		entry, err := recordToEntry(recs[0])
		return entry, err == nil, false, err
	}

	if !fuzzy {
		return Entry{}, false, false, nil
	}

	recent, err := s.rows.ListRecentAnalyses(ctx, 50)
	if err != nil {
		return Entry{}, false, false, err
	}
	for _, rec := range recent {
		if analysis.FuzzyMatch(periodKey, rec.PeriodKey) {
			entry, err := recordToEntry(rec)
			return entry, err == nil, true, err
		}
	}
	return Entry{}, false, false, nil
}

func recordToEntry(rec rowstore.AnalysisRecord) (Entry, error) {
	var usage analysis.Usage
	if rec.Usage != "" {
		if err := json.Unmarshal([]byte(rec.Usage), &usage); err != nil {
			return Entry{}, fmt.Errorf("decode cached usage: %w", err)
		}
	}
	createdAt, _ := time.Parse(time.RFC3339, rec.CreatedAt)
	return Entry{
		PeriodKey: rec.PeriodKey,
		Analysis:  json.RawMessage(rec.Analysis),
		Usage:     usage,
		CreatedAt: createdAt,
	}, nil
}
