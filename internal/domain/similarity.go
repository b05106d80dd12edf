package domain

import (
	"math"
	"sort"
)

// Factor is one side of a similarity comparison: either a rater or a rated
// entity. Comparing two raters matches their rating rows on the entity's
// hashed key; comparing two entities matches on the rater.
type Factor struct {
	UserID string
	Entity EntityRef
}

func RaterFactor(userID string) Factor {
	return Factor{UserID: userID}
}

func EntityFactor(ref EntityRef) Factor {
	return Factor{Entity: ref}
}

func (f Factor) IsRater() bool {
	return f.UserID != ""
}

// FilterValue is the value identifying this factor's own rating rows: the
// rater ID for raters, the hashed entity key for entities.
func (f Factor) FilterValue() string {
	if f.IsRater() {
		return f.UserID
	}
	return f.Entity.HashedKey()
}

// PairStats holds aggregates over the matched rating pairs of two factors,
// computed store-side so the full pair set never crosses the wire.
type PairStats struct {
	Sum1       float64
	Sum2       float64
	SquareSum1 float64
	SquareSum2 float64
	ProductSum float64
	SampleSize int64
}

// EuclideanSimilarity computes 1/(1 + sum of squared score differences) over
// the matched rating pairs of two factors. Factors with no overlap score 1.0:
// an empty difference set sums to zero. That edge case is preserved from the
// reference behavior even though disjoint factors arguably are not similar
// at all.
func EuclideanSimilarity(diffs []float64) float64 {
	var sumOfSquares float64
	for _, d := range diffs {
		sumOfSquares += d * d
	}
	return 1 / (1 + sumOfSquares)
}

// PearsonSimilarity computes the Pearson correlation coefficient from
// matched-pair aggregates. Returns 0 when there are no matched pairs, and 0
// when either factor has zero variance over the matched set (rather than
// dividing by zero).
func PearsonSimilarity(s PairStats) float64 {
	if s.SampleSize == 0 {
		return 0
	}

	n := float64(s.SampleSize)
	num := s.ProductSum - s.Sum1*s.Sum2/n
	den := math.Sqrt((s.SquareSum1 - s.Sum1*s.Sum1/n) * (s.SquareSum2 - s.Sum2*s.Sum2/n))
	if den == 0 {
		return 0
	}

	return num / den
}

// Match pairs a similarity score with the factor it was computed against.
type Match struct {
	Score  float64
	Factor Factor
}

// SortMatchesDescending orders matches best-first. Ordering of equal scores
// is stable but otherwise unspecified.
func SortMatchesDescending(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

// SortRecommendationsDescending orders recommendations best-first.
func SortRecommendationsDescending(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}
