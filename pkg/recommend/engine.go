package recommend

import (
	"errors"
	"sort"

	"github.com/rizkypratama/kolradar/pkg/catalog"
	"github.com/rizkypratama/kolradar/pkg/scoring"
)

// MaxResults caps the recommendation list.
const MaxResults = 10

// Core/secondary blend weights. The grouping of {rate card, reach} as core
// versus {engagement, audience} as secondary is a fixed design decision.
const (
	coreWeight      = 0.6
	secondaryWeight = 0.4
)

// ErrInvalidTarget is returned when a campaign's numeric targets are
// missing or non-positive. The engine refuses to coerce them silently.
var ErrInvalidTarget = errors.New("recommend: campaign target has missing or invalid numeric fields")

// Metrics holds one value per scored metric.
type Metrics struct {
	ER       float64 `json:"er"`
	Reach    float64 `json:"reach"`
	Audience float64 `json:"audience"`
	RateCard float64 `json:"rate_card"`
}

// MetricScores holds the discrete gap score per metric.
type MetricScores struct {
	ER       int `json:"er"`
	Reach    int `json:"reach"`
	Audience int `json:"audience"`
	RateCard int `json:"rate_card"`
}

// Details is the per-candidate scoring breakdown, retained for audit.
type Details struct {
	Normalized      Metrics      `json:"normalized_values"`
	Gaps            Metrics      `json:"gaps"`
	Scores          MetricScores `json:"scores"`
	CoreFactor      float64      `json:"core_factor"`
	SecondaryFactor float64      `json:"secondary_factor"`
}

// Recommendation is one scored candidate.
type Recommendation struct {
	catalog.KOL
	Score   float64 `json:"score"`
	Details Details `json:"details"`
}

// Engine ranks KOL candidates against a campaign's target profile.
type Engine struct {
	bounds scoring.Bounds
}

// NewEngine creates a recommendation engine with the given scale bounds.
func NewEngine(b scoring.Bounds) *Engine {
	return &Engine{bounds: b}
}

// Recommend scores every candidate against the campaign target and returns
// the top candidates, descending by score. Ties break on ascending KOL id
// so results are stable regardless of pool order. The pool is assumed
// pre-filtered by follower tier, niche and age bracket; an empty pool
// yields an empty list, not an error.
func (e *Engine) Recommend(c catalog.Campaign, pool []catalog.KOL) ([]Recommendation, error) {
	if err := validateTarget(c); err != nil {
		return nil, err
	}

	target := e.normalizeTarget(c)

	recs := make([]Recommendation, 0, len(pool))
	for _, k := range pool {
		recs = append(recs, e.scoreCandidate(c, k, target))
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ID < recs[j].ID
	})

	if len(recs) > MaxResults {
		recs = recs[:MaxResults]
	}
	return recs, nil
}

func validateTarget(c catalog.Campaign) error {
	if c.TargetEngagement <= 0 || c.TargetReach <= 0 || c.TargetGenderMin <= 0 || c.Budget <= 0 {
		return ErrInvalidTarget
	}
	if c.TargetGender != catalog.GenderMale && c.TargetGender != catalog.GenderFemale {
		return ErrInvalidTarget
	}
	return nil
}

// normalizeTarget maps the campaign targets onto the [0,1] scales. The
// budget normalizes inversely: it acts as a cost ceiling, so a candidate
// priced under budget produces a positive rate-card gap.
func (e *Engine) normalizeTarget(c catalog.Campaign) Metrics {
	return Metrics{
		ER:       scoring.Round(scoring.Normalize(c.TargetEngagement, e.bounds.MaxEngagementRate, false), scoring.PrecisionEngagementRate),
		Reach:    scoring.Round(scoring.Normalize(c.TargetReach, e.bounds.MaxReach, false), scoring.PrecisionReach),
		Audience: scoring.Round(scoring.Normalize(c.TargetGenderMin, e.bounds.MaxAudiencePct, false), scoring.PrecisionAudiencePct),
		RateCard: scoring.Round(scoring.Normalize(c.Budget, e.bounds.MaxRateCard, true), scoring.PrecisionRateCard),
	}
}

func (e *Engine) scoreCandidate(c catalog.Campaign, k catalog.KOL, target Metrics) Recommendation {
	norm := Metrics{
		ER:       scoring.Round(scoring.Normalize(k.EngagementRate, e.bounds.MaxEngagementRate, false), scoring.PrecisionEngagementRate),
		Reach:    scoring.Round(scoring.Normalize(k.Reach, e.bounds.MaxReach, false), scoring.PrecisionReach),
		Audience: scoring.Round(scoring.Normalize(k.AudiencePct(c.TargetGender), e.bounds.MaxAudiencePct, false), scoring.PrecisionAudiencePct),
		RateCard: scoring.Round(scoring.Normalize(k.RateCard, e.bounds.MaxRateCard, true), scoring.PrecisionRateCard),
	}

	gaps := Metrics{
		ER:       scoring.Round(norm.ER-target.ER, scoring.PrecisionEngagementRate),
		Reach:    scoring.Round(norm.Reach-target.Reach, scoring.PrecisionReach),
		Audience: scoring.Round(norm.Audience-target.Audience, scoring.PrecisionAudiencePct),
		RateCard: scoring.Round(norm.RateCard-target.RateCard, scoring.PrecisionRateCard),
	}

	scores := MetricScores{
		ER:       scoring.ScoreGap(gaps.ER),
		Reach:    scoring.ScoreGap(gaps.Reach),
		Audience: scoring.ScoreGap(gaps.Audience),
		RateCard: scoring.ScoreGap(gaps.RateCard),
	}

	core := float64(scores.RateCard+scores.Reach) / 2
	secondary := float64(scores.ER+scores.Audience) / 2
	total := scoring.Round(coreWeight*core+secondaryWeight*secondary, 2)

	return Recommendation{
		KOL:   k,
		Score: total,
		Details: Details{
			Normalized:      norm,
			Gaps:            gaps,
			Scores:          scores,
			CoreFactor:      core,
			SecondaryFactor: secondary,
		},
	}
}
