package scoring

import "math"

// gapBucket maps an inclusive [min, max] gap interval to a score.
type gapBucket struct {
	min, max float64
	score    int
}

// gapTable reproduces the original scoring sheet verbatim, including the
// 1e-7-shaved edge literals (-0.4999999, 0.0499999, ...). The shaved edges
// leave tiny intervals uncovered on paper; gaps are always rounded to a
// per-metric precision of at most 7 decimals before lookup, so no reachable
// value falls into them. Do not "clean up" the literals: that would move
// real gap values between buckets.
var gapTable = []gapBucket{
	{math.Inf(-1), -0.5, -5},
	{-0.4999999, -0.3, -4},
	{-0.2999999, -0.1, -3},
	{-0.0999999, -0.05, -2},
	{-0.0499999, -0.0000001, -1},
	{0, 0, 1},
	{0.0000001, 0.0499999, 1},
	{0.05, 0.0999999, 2},
	{0.1, 0.2999999, 3},
	{0.3, 0.4999999, 4},
	{0.5, math.Inf(1), 5},
}

// ScoreGap maps a signed normalized gap (candidate minus target, already
// rounded to the metric's precision) to a discrete score. The first bucket
// containing the gap wins; an unmatched gap scores 0, which indicates an
// internal inconsistency rather than bad input.
func ScoreGap(gap float64) int {
	for _, b := range gapTable {
		if gap >= b.min && gap <= b.max {
			return b.score
		}
	}
	return 0
}
