package ratings

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// DefaultTopMatches is how many matches TopMatches keeps when the caller
// passes a non-positive n.
const DefaultTopMatches = 5

// SimilarityFunc computes the similarity of two factors from their
// overlapping rating vectors within a scope.
type SimilarityFunc func(
	ctx context.Context,
	src datasources.MatchedPairSource,
	scope domain.RatingScope,
	a, b domain.Factor,
) (float64, error)

// EuclideanDistance scores two factors by the inverse of their summed squared
// score differences over matched rating pairs.
func EuclideanDistance(
	ctx context.Context,
	src datasources.MatchedPairSource,
	scope domain.RatingScope,
	a, b domain.Factor,
) (float64, error) {
	diffs, err := src.MatchedScoreDiffs(ctx, scope, a, b)
	if err != nil {
		return 0, err
	}
	return domain.EuclideanSimilarity(diffs), nil
}

// PearsonCorrelation scores two factors by the Pearson correlation of their
// matched rating pairs. The aggregates are computed store-side.
func PearsonCorrelation(
	ctx context.Context,
	src datasources.MatchedPairSource,
	scope domain.RatingScope,
	a, b domain.Factor,
) (float64, error) {
	stats, err := src.MatchedPairStats(ctx, scope, a, b)
	if err != nil {
		return 0, err
	}
	return domain.PearsonSimilarity(stats), nil
}

// TopMatches scores every candidate against target and returns the n best,
// descending by score. The target itself is excluded from the candidates.
// A nil similarity defaults to Pearson correlation.
func TopMatches(
	ctx context.Context,
	src datasources.MatchedPairSource,
	scope domain.RatingScope,
	candidates []domain.Factor,
	target domain.Factor,
	n int,
	similarity SimilarityFunc,
) ([]domain.Match, error) {
	if n <= 0 {
		n = DefaultTopMatches
	}
	if similarity == nil {
		similarity = PearsonCorrelation
	}

	matches := make([]domain.Match, 0, len(candidates))
	for _, other := range candidates {
		if other == target {
			continue
		}

		score, err := similarity(ctx, src, scope, target, other)
		if err != nil {
			return nil, err
		}
		matches = append(matches, domain.Match{Score: score, Factor: other})
	}

	domain.SortMatchesDescending(matches)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}
