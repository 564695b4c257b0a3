package ranking

import (
	"errors"
	"math"
	"sort"

	"github.com/rizkypratama/kolradar/internal/store"
)

// Weighted Product model exponents. They sum to 1.0, making s_i a weighted
// geometric mean of the report's metrics.
const (
	WeightLikes    = 0.15
	WeightComments = 0.20
	WeightShares   = 0.15
	WeightSaves    = 0.15
	WeightER       = 0.35
)

// ErrNoReports is returned when a campaign has no reports: with nothing to
// rank, renormalization is undefined and the operation must not produce a
// silent empty result.
var ErrNoReports = errors.New("ranking: campaign has no reports")

// Score computes the unnormalized weighted-product score for one report.
// A zero in any base collapses the whole product to zero; the WP model
// nullifies a composite when a single metric fails, and that behavior is
// kept as-is.
func Score(r store.Report) float64 {
	return math.Pow(float64(r.Likes), WeightLikes) *
		math.Pow(float64(r.Comments), WeightComments) *
		math.Pow(float64(r.Shares), WeightShares) *
		math.Pow(float64(r.Saves), WeightSaves) *
		math.Pow(r.ER, WeightER)
}

// Compute ranks a campaign's complete report set. Each returned report
// carries s_i, final_score (s_i renormalized to sum 1 across the set) and a
// dense 1..N ranking by descending final_score, ties broken on ascending
// KOL id. When every s_i is zero the final scores stay zero and ranks
// follow the tie-break alone.
func Compute(reports []store.Report) ([]store.Report, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}

	ranked := make([]store.Report, len(reports))
	copy(ranked, reports)

	sum := 0.0
	for i := range ranked {
		ranked[i].SI = Score(ranked[i])
		sum += ranked[i].SI
	}

	for i := range ranked {
		if sum > 0 {
			ranked[i].FinalScore = ranked[i].SI / sum
		} else {
			ranked[i].FinalScore = 0
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].KOLID < ranked[j].KOLID
	})

	for i := range ranked {
		ranked[i].Ranking = i + 1
	}
	return ranked, nil
}
