package datasources

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// SimilarItemRepository combines access to the precomputed item-item
// similarity cache.
type SimilarItemRepository interface {
	SimilarItemLister
	SimilarItemWriter
}

type SimilarItemLister interface {
	// ListSimilarItems returns the cached similar entities for entity,
	// descending by score.
	ListSimilarItems(ctx context.Context, entity domain.EntityRef) ([]domain.SimilarItem, error)
}

type SimilarItemWriter interface {
	// UpsertSimilarItem creates the cache row keyed on (entity, similar) or
	// updates its score.
	UpsertSimilarItem(ctx context.Context, item domain.SimilarItem) error
}

// NullSimilarItemRepository is a null implementation of SimilarItemRepository.
type NullSimilarItemRepository struct{}

var _ SimilarItemRepository = NullSimilarItemRepository{}

func (NullSimilarItemRepository) ListSimilarItems(
	_ context.Context, _ domain.EntityRef,
) ([]domain.SimilarItem, error) {
	return nil, nil
}

func (NullSimilarItemRepository) UpsertSimilarItem(_ context.Context, _ domain.SimilarItem) error {
	return nil
}
