package ratings

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// Collection is the rating accessor for one entity instance. It is a plain
// value constructed per entity; all state lives in the store.
type Collection struct {
	store   datasources.RatingRepository
	similar datasources.SimilarItemLister
	entity  domain.EntityRef
}

func NewCollection(
	store datasources.RatingRepository,
	similar datasources.SimilarItemLister,
	entity domain.EntityRef,
) Collection {
	if entity.IsZero() {
		panic("rating collection for zero entity reference")
	}
	return Collection{store: store, similar: similar, entity: entity}
}

func (c Collection) Entity() domain.EntityRef {
	return c.entity
}

func (c Collection) scope() domain.RatingScope {
	return domain.RatingScope{}.ForEntity(c.entity)
}

// Rate records userID's score for this entity, replacing any previous rating
// by the same user. Rating twice with the same score is a no-op after the
// first call.
func (c Collection) Rate(ctx context.Context, userID string, score float64) (domain.RatedItem, error) {
	item := domain.RatedItem{
		UserID: userID,
		Entity: c.entity,
		Hashed: c.entity.HashedKey(),
		Score:  score,
	}

	saved, err := c.store.UpsertRating(ctx, item)
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("rating %v: %w", c.entity, err)
	}
	return saved, nil
}

// Unrate removes userID's rating of this entity. Removing an absent rating
// is a silent no-op.
func (c Collection) Unrate(ctx context.Context, userID string) error {
	if _, err := c.store.DeleteRating(ctx, userID, c.entity.HashedKey()); err != nil {
		return fmt.Errorf("unrating %v: %w", c.entity, err)
	}
	return nil
}

// Add attaches raw rating rows to this entity, overwriting each item's entity
// reference with this collection's.
func (c Collection) Add(ctx context.Context, items ...domain.RatedItem) ([]domain.RatedItem, error) {
	saved := make([]domain.RatedItem, 0, len(items))
	for _, item := range items {
		item.Entity = c.entity
		item.Hashed = c.entity.HashedKey()

		s, err := c.store.SaveRating(ctx, item)
		if err != nil {
			return saved, fmt.Errorf("adding rating to %v: %w", c.entity, err)
		}
		saved = append(saved, s)
	}
	return saved, nil
}

// Remove detaches rating rows from this entity. An item that is not related
// to this entity yields domain.ErrNotFound.
func (c Collection) Remove(ctx context.Context, items ...domain.RatedItem) error {
	hashed := c.entity.HashedKey()
	for _, item := range items {
		if item.ID == 0 || item.Hashed != hashed {
			return fmt.Errorf("rating %d is not related to %v: %w",
				item.ID, c.entity, domain.ErrNotFound)
		}

		existing, err := c.store.GetRating(ctx, item.UserID, hashed)
		if err != nil {
			return fmt.Errorf("removing rating from %v: %w", c.entity, err)
		}
		if existing.ID != item.ID {
			return fmt.Errorf("rating %d is not related to %v: %w",
				item.ID, c.entity, domain.ErrNotFound)
		}

		if err := c.store.DeleteRatingByID(ctx, item.ID); err != nil {
			return fmt.Errorf("removing rating from %v: %w", c.entity, err)
		}
	}
	return nil
}

// Clear removes every rating of this entity.
func (c Collection) Clear(ctx context.Context) error {
	if err := c.store.ClearRatings(ctx, c.entity.HashedKey()); err != nil {
		return fmt.Errorf("clearing ratings of %v: %w", c.entity, err)
	}
	return nil
}

func (c Collection) All(ctx context.Context) ([]domain.RatedItem, error) {
	return c.store.ListRatings(ctx, c.scope())
}

func (c Collection) Count(ctx context.Context) (int64, error) {
	return c.store.CountRatings(ctx, c.scope())
}

// CumulativeScore is the sum of all scores for this entity. The boolean is
// false when no ratings exist; callers denormalizing treat that as zero.
func (c Collection) CumulativeScore(ctx context.Context) (float64, bool, error) {
	agg, err := c.aggregates(ctx)
	if err != nil {
		return 0, false, err
	}
	return agg.Sum, agg.Count > 0, nil
}

func (c Collection) AverageScore(ctx context.Context) (float64, bool, error) {
	agg, err := c.aggregates(ctx)
	if err != nil {
		return 0, false, err
	}
	return agg.Average, agg.Count > 0, nil
}

func (c Collection) StandardDeviation(ctx context.Context) (float64, bool, error) {
	agg, err := c.aggregates(ctx)
	if err != nil {
		return 0, false, err
	}
	return agg.StdDev, agg.Count > 0, nil
}

func (c Collection) Variance(ctx context.Context) (float64, bool, error) {
	agg, err := c.aggregates(ctx)
	if err != nil {
		return 0, false, err
	}
	return agg.Variance, agg.Count > 0, nil
}

func (c Collection) aggregates(ctx context.Context) (domain.ScoreAggregates, error) {
	agg, err := c.store.AggregateScores(ctx, c.scope())
	if err != nil {
		return domain.ScoreAggregates{}, fmt.Errorf("aggregating scores of %v: %w", c.entity, err)
	}
	return agg, nil
}

// SimilarItems returns this entity's cached similar entities, best first.
func (c Collection) SimilarItems(ctx context.Context) ([]domain.SimilarItem, error) {
	if c.similar == nil {
		return nil, nil
	}
	return c.similar.ListSimilarItems(ctx, c.entity)
}
