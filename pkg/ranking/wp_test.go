package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/rizkypratama/kolradar/internal/store"
)

func TestComputeNoReports(t *testing.T) {
	if _, err := Compute(nil); !errors.Is(err, ErrNoReports) {
		t.Errorf("Compute(nil) err = %v, want ErrNoReports", err)
	}
	if _, err := Compute([]store.Report{}); !errors.Is(err, ErrNoReports) {
		t.Errorf("Compute(empty) err = %v, want ErrNoReports", err)
	}
}

func TestScoreZeroMetricCollapses(t *testing.T) {
	tests := []struct {
		name string
		r    store.Report
	}{
		{"zero_likes", store.Report{Likes: 0, Comments: 5, Shares: 1, Saves: 1, ER: 1.0}},
		{"zero_comments", store.Report{Likes: 10, Comments: 0, Shares: 1, Saves: 1, ER: 1.0}},
		{"zero_shares", store.Report{Likes: 10, Comments: 5, Shares: 0, Saves: 1, ER: 1.0}},
		{"zero_saves", store.Report{Likes: 10, Comments: 5, Shares: 1, Saves: 0, ER: 1.0}},
		{"zero_er", store.Report{Likes: 10, Comments: 5, Shares: 1, Saves: 1, ER: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.r); got != 0 {
				t.Errorf("Score = %v, want exactly 0", got)
			}
		})
	}
}

func TestScoreWeightedProduct(t *testing.T) {
	r := store.Report{Likes: 100, Comments: 20, Shares: 5, Saves: 10, ER: 5.0}
	want := math.Pow(100, 0.15) * math.Pow(20, 0.20) * math.Pow(5, 0.15) *
		math.Pow(10, 0.15) * math.Pow(5.0, 0.35)
	if got := Score(r); math.Abs(got-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestComputeCampaignScenario(t *testing.T) {
	reports := []store.Report{
		{ID: "a", CampaignID: 1, KOLID: 11, Likes: 100, Comments: 20, Shares: 5, Saves: 10, ER: 5.0},
		{ID: "b", CampaignID: 1, KOLID: 12, Likes: 50, Comments: 10, Shares: 2, Saves: 1, ER: 2.0},
		{ID: "c", CampaignID: 1, KOLID: 13, Likes: 0, Comments: 5, Shares: 1, Saves: 1, ER: 1.0},
	}

	ranked, err := Compute(reports)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d results, want 3", len(ranked))
	}

	// The zero-likes report collapses to zero and ranks last.
	last := ranked[2]
	if last.ID != "c" || last.SI != 0 || last.FinalScore != 0 || last.Ranking != 3 {
		t.Errorf("last = %+v, want report c with s_i=0 final_score=0 ranking=3", last)
	}

	if ranked[0].ID != "a" || ranked[0].Ranking != 1 {
		t.Errorf("ranked[0] = %s rank %d, want a rank 1", ranked[0].ID, ranked[0].Ranking)
	}
	if ranked[1].ID != "b" || ranked[1].Ranking != 2 {
		t.Errorf("ranked[1] = %s rank %d, want b rank 2", ranked[1].ID, ranked[1].Ranking)
	}

	sum := 0.0
	for _, r := range ranked {
		sum += r.FinalScore
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("sum(final_score) = %v, want 1.0", sum)
	}
}

func TestComputeRanksAreDense(t *testing.T) {
	var reports []store.Report
	for i := 1; i <= 7; i++ {
		reports = append(reports, store.Report{
			ID:       string(rune('a' + i)),
			KOLID:    int64(i),
			Likes:    int64(i * 10),
			Comments: int64(i * 2),
			Shares:   int64(i),
			Saves:    int64(i),
			ER:       float64(i),
		})
	}

	ranked, err := Compute(reports)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	seen := make(map[int]bool)
	for _, r := range ranked {
		seen[r.Ranking] = true
	}
	for want := 1; want <= len(reports); want++ {
		if !seen[want] {
			t.Errorf("ranking %d missing; got %v", want, seen)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FinalScore > ranked[i-1].FinalScore {
			t.Errorf("final_score not descending at %d", i)
		}
	}
}

func TestComputeAllZeroScores(t *testing.T) {
	// Every report has a failed metric: the sum is zero, final scores stay
	// zero and ranks fall back to ascending KOL id.
	reports := []store.Report{
		{ID: "x", KOLID: 30, Likes: 0, Comments: 1, Shares: 1, Saves: 1, ER: 1},
		{ID: "y", KOLID: 10, Likes: 1, Comments: 0, Shares: 1, Saves: 1, ER: 1},
		{ID: "z", KOLID: 20, Likes: 1, Comments: 1, Shares: 0, Saves: 1, ER: 1},
	}

	ranked, err := Compute(reports)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantKOLs := []int64{10, 20, 30}
	for i, r := range ranked {
		if r.FinalScore != 0 {
			t.Errorf("final_score = %v, want 0", r.FinalScore)
		}
		if r.KOLID != wantKOLs[i] || r.Ranking != i+1 {
			t.Errorf("ranked[%d] = kol %d rank %d, want kol %d rank %d",
				i, r.KOLID, r.Ranking, wantKOLs[i], i+1)
		}
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	reports := []store.Report{
		{ID: "a", KOLID: 1, Likes: 10, Comments: 5, Shares: 2, Saves: 1, ER: 3},
		{ID: "b", KOLID: 2, Likes: 20, Comments: 8, Shares: 4, Saves: 2, ER: 4},
	}

	if _, err := Compute(reports); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, r := range reports {
		if r.SI != 0 || r.FinalScore != 0 || r.Ranking != 0 {
			t.Errorf("input report %s mutated: %+v", r.ID, r)
		}
	}
}
