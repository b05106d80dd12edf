package command

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/ratings"
)

// RateEntityRequest is the request for the RateEntity command.
type RateEntityRequest struct {
	UserID string
	Entity domain.EntityRef
	Score  float64
}

// RateEntity records a user's rating of an entity and notifies the rating
// observer so the surrounding application can refresh any denormalized
// cached score.
type RateEntity struct {
	Store    datasources.RatingRepository
	Observer datasources.RatingObserver
}

// NewRateEntity creates a properly initialized RateEntity command.
func NewRateEntity(
	store datasources.RatingRepository,
	observer datasources.RatingObserver,
) *RateEntity {
	return &RateEntity{Store: store, Observer: observer}
}

func (c *RateEntity) Execute(ctx context.Context, req RateEntityRequest) (domain.RatedItem, error) {
	logger := domain.LoggerFromContext(ctx)

	collection := ratings.NewCollection(c.Store, nil, req.Entity)
	item, err := collection.Rate(ctx, req.UserID, req.Score)
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("recording rating: %w", err)
	}

	logger.DebugContext(ctx, "recorded rating",
		"entity", req.Entity.String(), "score", req.Score)

	// Best-effort: the rating itself is already durable.
	if err := c.Observer.RatingChanged(ctx, req.Entity); err != nil {
		logger.WarnContext(ctx, "rating observer failed", "error", err)
	}

	return item, nil
}
