package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rizkypratama/kolradar/internal/store"
	"github.com/rizkypratama/kolradar/pkg/alert"
	"github.com/rizkypratama/kolradar/pkg/ranking"
)

// Scheduler periodically re-ranks every campaign that has reports. The
// sweep repairs rankings that drifted from their report set (manual DB
// edits, crashed recomputations) and alerts when a campaign's top-ranked
// KOL changes.
type Scheduler struct {
	store    store.Store
	ranker   *ranking.Recomputer
	alertMgr *alert.Manager
	interval time.Duration
}

// New creates a new scheduler.
func New(s store.Store, ranker *ranking.Recomputer, alertMgr *alert.Manager, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		store:    s,
		ranker:   ranker,
		alertMgr: alertMgr,
		interval: interval,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: initial ranking sweep...")
	s.sweep(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (sweep every %s)\n", s.interval)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintln(os.Stderr, "scheduler: ranking sweep...")
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	ids, err := s.store.ListRankedCampaignIDs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  list campaigns error: %v\n", err)
		return
	}

	for _, id := range ids {
		prevTop := s.topKOL(ctx, id)

		ranked, err := s.ranker.Recompute(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  campaign %d recompute error: %v\n", id, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  campaign %d: %d reports ranked\n", id, len(ranked))

		newTop := int64(0)
		if len(ranked) > 0 {
			newTop = ranked[0].KOLID
		}
		if prevTop != 0 && newTop != 0 && newTop != prevTop {
			s.alertTopChange(ctx, id, ranked)
		}
	}
}

// topKOL returns the currently persisted rank-1 KOL, 0 if none.
func (s *Scheduler) topKOL(ctx context.Context, campaignID int64) int64 {
	reports, err := s.store.ListReportsByCampaign(ctx, campaignID)
	if err != nil {
		return 0
	}
	for _, r := range reports {
		if r.Ranking == 1 {
			return r.KOLID
		}
	}
	return 0
}

func (s *Scheduler) alertTopChange(ctx context.Context, campaignID int64, ranked []store.Report) {
	if !s.alertMgr.HasNotifiers() {
		return
	}

	name := fmt.Sprintf("campaign %d", campaignID)
	if c, err := s.store.GetCampaign(ctx, campaignID); err == nil {
		name = c.Name
	}

	var standings []alert.Standing
	for _, r := range ranked {
		kolName := fmt.Sprintf("kol %d", r.KOLID)
		if k, err := s.store.GetKOL(ctx, r.KOLID); err == nil {
			kolName = k.Name
		}
		standings = append(standings, alert.Standing{
			KOLID:      r.KOLID,
			KOLName:    kolName,
			FinalScore: r.FinalScore,
			Ranking:    r.Ranking,
		})
	}

	n := &alert.Notification{
		CampaignID:   campaignID,
		CampaignName: name,
		Title:        fmt.Sprintf("New top KOL for %s", name),
		Body:         fmt.Sprintf("Ranking changed across %d reports", len(ranked)),
		TopKOL:       standings[0].KOLName,
		TopScore:     standings[0].FinalScore,
		Standings:    standings,
	}

	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		fmt.Fprintf(os.Stderr, "  alert error for %q: %v\n", name, err)
		return
	}
	fmt.Fprintf(os.Stderr, "  alerted: %s now led by %s\n", name, n.TopKOL)
}
