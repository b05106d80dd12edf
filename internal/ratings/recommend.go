package ratings

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// RecommendationSource is what user-based recommendation needs from the
// store: the ratings themselves plus the similarity joins.
type RecommendationSource interface {
	datasources.RatingReader
	datasources.MatchedPairSource
}

// Recommendations produces a ranked list of entities for person, weighting
// each peer's ratings by that peer's similarity to person. Peers with
// similarity <= 0 contribute nothing, and entities person already rated are
// excluded. The final score of an entity is the similarity-weighted average
// of the peer scores it received.
func Recommendations(
	ctx context.Context,
	src RecommendationSource,
	scope domain.RatingScope,
	peers []string,
	person string,
	similarity SimilarityFunc,
) ([]domain.Recommendation, error) {
	if similarity == nil {
		similarity = PearsonCorrelation
	}

	alreadyRated, err := ratedKeySet(ctx, src, scope, person)
	if err != nil {
		return nil, err
	}

	totals := map[string]float64{}
	simSums := map[string]float64{}
	entities := map[string]domain.EntityRef{}

	for _, other := range peers {
		if other == person {
			continue
		}

		sim, err := similarity(ctx, src, scope,
			domain.RaterFactor(person), domain.RaterFactor(other))
		if err != nil {
			return nil, fmt.Errorf("computing similarity of %q and %q: %w", person, other, err)
		}
		if sim <= 0 {
			continue
		}

		items, err := src.ListRatings(ctx, scope.ForUser(other))
		if err != nil {
			return nil, fmt.Errorf("listing ratings by %q: %w", other, err)
		}

		for _, item := range items {
			if alreadyRated[item.Hashed] {
				continue
			}

			totals[item.Hashed] += item.Score * sim
			simSums[item.Hashed] += sim
			entities[item.Hashed] = item.Entity
		}
	}

	rankings := make([]domain.Recommendation, 0, len(totals))
	for hashed, total := range totals {
		// simSums is positive for every accumulated entity since only
		// positive-similarity peers contribute.
		rankings = append(rankings, domain.Recommendation{
			Score:  total / simSums[hashed],
			Entity: entities[hashed],
		})
	}

	domain.SortRecommendationsDescending(rankings)
	return rankings, nil
}

// RecommendedItems is the item-based variant: it is driven entirely by the
// precomputed similarity cache instead of on-the-fly peer similarity. Each
// entity the user rated pulls in its cached similar entities; entities the
// user already rated are skipped, and each candidate's score is the average
// of the user's scores weighted by the cached similarity.
func RecommendedItems(
	ctx context.Context,
	src datasources.RatingReader,
	similar datasources.SimilarItemLister,
	scope domain.RatingScope,
	userID string,
) ([]domain.Recommendation, error) {
	rated, err := src.ListRatings(ctx, scope.ForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("listing ratings by %q: %w", userID, err)
	}

	ratedSet := make(map[string]bool, len(rated))
	for _, item := range rated {
		ratedSet[item.Hashed] = true
	}

	scores := map[string]float64{}
	totalSim := map[string]float64{}
	entities := map[string]domain.EntityRef{}

	for _, item := range rated {
		similarItems, err := similar.ListSimilarItems(ctx, item.Entity)
		if err != nil {
			return nil, fmt.Errorf("listing similar items of %v: %w", item.Entity, err)
		}

		for _, si := range similarItems {
			key := si.Similar.HashedKey()
			if ratedSet[key] {
				continue
			}

			scores[key] += si.Score * item.Score
			totalSim[key] += si.Score
			entities[key] = si.Similar
		}
	}

	rankings := make([]domain.Recommendation, 0, len(scores))
	for key, score := range scores {
		if totalSim[key] == 0 {
			// Cached similarities can be negative and may cancel out;
			// a zero weight sum has no meaningful average.
			continue
		}
		rankings = append(rankings, domain.Recommendation{
			Score:  score / totalSim[key],
			Entity: entities[key],
		})
	}

	domain.SortRecommendationsDescending(rankings)
	return rankings, nil
}

func ratedKeySet(
	ctx context.Context,
	src datasources.RatingReader,
	scope domain.RatingScope,
	userID string,
) (map[string]bool, error) {
	items, err := src.ListRatings(ctx, scope.ForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("listing ratings by %q: %w", userID, err)
	}

	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item.Hashed] = true
	}
	return set, nil
}
