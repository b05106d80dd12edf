package ratings

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// TypeCollection is the rating accessor scoped to a whole entity type rather
// than one instance.
type TypeCollection struct {
	store   datasources.RatingRepository
	similar datasources.SimilarItemRepository
	typeTag string
}

func NewTypeCollection(
	store datasources.RatingRepository,
	similar datasources.SimilarItemRepository,
	typeTag string,
) TypeCollection {
	if typeTag == "" {
		panic("rating type collection for empty type tag")
	}
	return TypeCollection{store: store, similar: similar, typeTag: typeTag}
}

// For returns the instance-scoped collection for one entity of this type.
func (t TypeCollection) For(id int64) Collection {
	return NewCollection(t.store, t.similar, domain.EntityRef{TypeTag: t.typeTag, ID: id})
}

func (t TypeCollection) scope() domain.RatingScope {
	return domain.RatingScope{}.ForType(t.typeTag)
}

func (t TypeCollection) All(ctx context.Context) ([]domain.RatedItem, error) {
	return t.store.ListRatings(ctx, t.scope())
}

// OrderByRating ranks entities of this type by an aggregate of their ratings.
// Entities with no ratings are included with a zero aggregate.
func (t TypeCollection) OrderByRating(
	ctx context.Context, opts domain.RankOptions,
) ([]domain.RankedEntity, error) {
	if opts.Scope.IsUnrestricted() {
		opts.Scope = t.scope()
	} else {
		opts.Scope = opts.Scope.ForType(t.typeTag)
	}
	return t.store.RankEntitiesByRating(ctx, t.typeTag, opts)
}

// UpdateSimilarItems fully recomputes the similarity cache for every rated
// entity of this type. O(entities^2); run it as a batch job.
func (t TypeCollection) UpdateSimilarItems(ctx context.Context, topN int) error {
	return CalculateSimilarItems(ctx, t.store, t.similar, t.scope(), topN)
}

// SimilarItems returns the cached similar entities for one entity of this
// type, best first.
func (t TypeCollection) SimilarItems(
	ctx context.Context, id int64,
) ([]domain.SimilarItem, error) {
	return t.similar.ListSimilarItems(ctx, domain.EntityRef{TypeTag: t.typeTag, ID: id})
}

// RecommendedItems derives recommendations for a user from this type's
// similarity cache.
func (t TypeCollection) RecommendedItems(
	ctx context.Context, userID string,
) ([]domain.Recommendation, error) {
	return RecommendedItems(ctx, t.store, t.similar, t.scope(), userID)
}
