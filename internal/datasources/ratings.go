package datasources

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// RatingRepository combines everything the rating engine needs from the
// relational store.
type RatingRepository interface {
	RatingReader
	RatingWriter
	MatchedPairSource
	RatedEntityEnumerator
	EntityRanker
}

type RatingReader interface {
	// GetRating returns the rating by userID for the entity identified by
	// hashed, or domain.ErrNotFound.
	GetRating(ctx context.Context, userID, hashed string) (domain.RatedItem, error)

	ListRatings(ctx context.Context, scope domain.RatingScope) ([]domain.RatedItem, error)

	CountRatings(ctx context.Context, scope domain.RatingScope) (int64, error)

	// AggregateScores computes all standard aggregates over in-scope scores
	// in one pass. A zero Count means no ratings exist in scope.
	AggregateScores(ctx context.Context, scope domain.RatingScope) (domain.ScoreAggregates, error)
}

type RatingWriter interface {
	// UpsertRating records a rating keyed on (rater, entity): the existing
	// row is updated in place if present, otherwise one is created. The
	// get-or-create must be atomic at the storage layer.
	UpsertRating(ctx context.Context, item domain.RatedItem) (domain.RatedItem, error)

	// SaveRating inserts a raw rating row without the at-most-one-per-rater
	// upsert semantics. Used by bulk attachment.
	SaveRating(ctx context.Context, item domain.RatedItem) (domain.RatedItem, error)

	// DeleteRating removes userID's rating of the entity identified by
	// hashed, reporting how many rows went away. Zero is not an error.
	DeleteRating(ctx context.Context, userID, hashed string) (int64, error)

	DeleteRatingByID(ctx context.Context, id int64) error

	// ClearRatings removes every rating of the entity identified by hashed.
	ClearRatings(ctx context.Context, hashed string) error
}

// MatchedPairSource runs the similarity self-joins: rating rows of factor A
// joined to rows of factor B on the match dimension (hashed key when
// comparing raters, rater ID when comparing entities), restricted to scope.
type MatchedPairSource interface {
	// MatchedScoreDiffs returns scoreA - scoreB for every matched pair.
	MatchedScoreDiffs(
		ctx context.Context,
		scope domain.RatingScope,
		a, b domain.Factor,
	) ([]float64, error)

	// MatchedPairStats returns store-side aggregates over the matched pairs.
	MatchedPairStats(
		ctx context.Context,
		scope domain.RatingScope,
		a, b domain.Factor,
	) (domain.PairStats, error)
}

// RatedEntityEnumerator enumerates what has been rated, for the similarity
// cache recompute.
type RatedEntityEnumerator interface {
	DistinctRatedTypes(ctx context.Context, scope domain.RatingScope) ([]string, error)

	DistinctRatedEntities(
		ctx context.Context,
		scope domain.RatingScope,
		typeTag string,
	) ([]domain.EntityRef, error)
}

// EntityRanker ranks entities of one type by an aggregate of their ratings.
// Entities with no in-scope ratings rank with a zero aggregate.
type EntityRanker interface {
	RankEntitiesByRating(
		ctx context.Context,
		typeTag string,
		opts domain.RankOptions,
	) ([]domain.RankedEntity, error)
}
