package ratings

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// DefaultSimilarTopN is the cache depth used when the caller passes a
// non-positive topN.
const DefaultSimilarTopN = 10

// CalculateSimilarItems rebuilds the item-item similarity cache: for every
// rated entity of every type present in scope, the topN most similar entities
// of the same type are computed and upserted into the cache. This is
// O(entities^2) per type and runs as a batch job, never inline with a rating
// write; the cache is a periodically refreshed artifact and staleness between
// runs is accepted.
//
// A failure on one entity does not abort the run. The job is idempotent and
// re-runnable, so failures are logged and the remaining entities still get
// fresh cache rows.
func CalculateSimilarItems(
	ctx context.Context,
	store datasources.RatingRepository,
	similar datasources.SimilarItemWriter,
	scope domain.RatingScope,
	topN int,
) error {
	if topN <= 0 {
		topN = DefaultSimilarTopN
	}

	logger := domain.LoggerFromContext(ctx)

	tags, err := store.DistinctRatedTypes(ctx, scope)
	if err != nil {
		return fmt.Errorf("listing rated types: %w", err)
	}

	for _, tag := range tags {
		refs, err := store.DistinctRatedEntities(ctx, scope, tag)
		if err != nil {
			return fmt.Errorf("listing rated entities of type %q: %w", tag, err)
		}

		logger.InfoContext(ctx, "recomputing similar items",
			"entity_type", tag, "entity_count", len(refs))

		candidates := make([]domain.Factor, 0, len(refs))
		for _, ref := range refs {
			candidates = append(candidates, domain.EntityFactor(ref))
		}

		var failCount int
		for _, ref := range refs {
			if err := storeTopMatches(ctx, store, similar, scope, candidates, ref, topN); err != nil {
				logger.ErrorContext(ctx, "failed to update similar items for entity",
					"entity", ref.String(), "error", err)
				failCount++
			}
		}

		if failCount > 0 {
			logger.WarnContext(ctx, "similar item recompute finished with failures",
				"entity_type", tag, "fail_count", failCount)
		}
	}

	return nil
}

func storeTopMatches(
	ctx context.Context,
	store datasources.RatingRepository,
	similar datasources.SimilarItemWriter,
	scope domain.RatingScope,
	candidates []domain.Factor,
	ref domain.EntityRef,
	topN int,
) error {
	matches, err := TopMatches(ctx, store, scope, candidates, domain.EntityFactor(ref), topN, nil)
	if err != nil {
		return fmt.Errorf("computing top matches: %w", err)
	}

	for _, match := range matches {
		item := domain.SimilarItem{
			Entity:  ref,
			Similar: match.Factor.Entity,
			Score:   match.Score,
		}
		if err := similar.UpsertSimilarItem(ctx, item); err != nil {
			return fmt.Errorf("storing similar item %v -> %v: %w", ref, item.Similar, err)
		}
	}

	return nil
}
