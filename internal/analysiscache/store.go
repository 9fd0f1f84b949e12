// Package analysiscache persists analysis results under their period key.
// Results have no expiry: a cached analysis stays valid for exactly as
// long as its key still describes the current 3-month window.
package analysiscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moodtrace/dashboard/internal/analysis"
)

// Entry is one cached analysis result.
type Entry struct {
	PeriodKey string
	Analysis  json.RawMessage
	Usage     analysis.Usage
	CreatedAt time.Time
}

// Store reads and writes cached analyses. Lookup tries an exact key match
// first; with fuzzy enabled it falls back to the tolerance match and
// reports fuzzyMatched=true so the consumer can flag staleness. Writers
// are not coordinated; last write wins.
type Store interface {
	Lookup(ctx context.Context, periodKey string, fuzzy bool) (entry Entry, found bool, fuzzyMatched bool, err error)
	Save(ctx context.Context, entry Entry) error
}
