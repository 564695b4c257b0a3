package ranking

import (
	"context"
	"fmt"
	"sync"

	"github.com/rizkypratama/kolradar/internal/store"
)

// Recomputer rebuilds a campaign's ranking from its complete current
// report set and persists the replacement atomically. Recomputation is
// serialized per campaign: two concurrent mutations to the same campaign's
// reports queue behind one another, while different campaigns recompute in
// parallel.
type Recomputer struct {
	store store.Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewRecomputer creates a recomputer backed by the given store.
func NewRecomputer(s store.Store) *Recomputer {
	return &Recomputer{
		store: s,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (rc *Recomputer) lockFor(campaignID int64) *sync.Mutex {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	l, ok := rc.locks[campaignID]
	if !ok {
		l = &sync.Mutex{}
		rc.locks[campaignID] = l
	}
	return l
}

// Recompute takes a snapshot of the campaign's entire report set, ranks
// it, and overwrites every report's s_i, final_score and ranking in one
// transaction. Never incremental: either the whole replacement ranking is
// persisted or nothing is. A campaign with zero reports yields
// ErrNoReports.
func (rc *Recomputer) Recompute(ctx context.Context, campaignID int64) ([]store.Report, error) {
	l := rc.lockFor(campaignID)
	l.Lock()
	defer l.Unlock()

	reports, err := rc.store.ListReportsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load reports for campaign %d: %w", campaignID, err)
	}

	ranked, err := Compute(reports)
	if err != nil {
		return nil, err
	}

	if err := rc.store.ReplaceRankings(ctx, campaignID, ranked); err != nil {
		return nil, fmt.Errorf("persist rankings for campaign %d: %w", campaignID, err)
	}
	return ranked, nil
}
