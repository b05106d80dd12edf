package command

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/ratings"
)

// UpdateSimilarItemsRequest is the request for the UpdateSimilarItems
// command. An empty TypeTags recomputes every rated type found in the store.
type UpdateSimilarItemsRequest struct {
	TypeTags []string
}

// UpdateSimilarItems runs the full similarity cache recompute. This is the
// batch entrypoint behind the update-similar-items command; scheduling policy
// belongs to whoever invokes it.
type UpdateSimilarItems struct {
	Store   datasources.RatingRepository
	Similar datasources.SimilarItemWriter
	TopN    int
}

// NewUpdateSimilarItems creates a properly initialized UpdateSimilarItems command.
func NewUpdateSimilarItems(
	store datasources.RatingRepository,
	similar datasources.SimilarItemWriter,
	topN int,
) *UpdateSimilarItems {
	return &UpdateSimilarItems{Store: store, Similar: similar, TopN: topN}
}

func (c *UpdateSimilarItems) Execute(ctx context.Context, req UpdateSimilarItemsRequest) (Empty, error) {
	logger := domain.LoggerFromContext(ctx)

	if len(req.TypeTags) == 0 {
		logger.InfoContext(ctx, "recomputing similar items for all rated types")
		if err := ratings.CalculateSimilarItems(ctx, c.Store, c.Similar, domain.RatingScope{}, c.TopN); err != nil {
			return Empty{}, fmt.Errorf("recomputing similar items: %w", err)
		}
		return Empty{}, nil
	}

	for _, tag := range req.TypeTags {
		scope := domain.RatingScope{}.ForType(tag)
		if err := ratings.CalculateSimilarItems(ctx, c.Store, c.Similar, scope, c.TopN); err != nil {
			return Empty{}, fmt.Errorf("recomputing similar items for type %q: %w", tag, err)
		}
	}

	return Empty{}, nil
}
