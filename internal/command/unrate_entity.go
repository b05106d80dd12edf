package command

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/ratings"
)

// UnrateEntityRequest is the request for the UnrateEntity command.
type UnrateEntityRequest struct {
	UserID string
	Entity domain.EntityRef
}

// UnrateEntity removes a user's rating of an entity, if any, and notifies
// the rating observer. Removing an absent rating is a no-op, not an error.
type UnrateEntity struct {
	Store    datasources.RatingRepository
	Observer datasources.RatingObserver
}

// NewUnrateEntity creates a properly initialized UnrateEntity command.
func NewUnrateEntity(
	store datasources.RatingRepository,
	observer datasources.RatingObserver,
) *UnrateEntity {
	return &UnrateEntity{Store: store, Observer: observer}
}

func (c *UnrateEntity) Execute(ctx context.Context, req UnrateEntityRequest) (Empty, error) {
	logger := domain.LoggerFromContext(ctx)

	collection := ratings.NewCollection(c.Store, nil, req.Entity)
	if err := collection.Unrate(ctx, req.UserID); err != nil {
		return Empty{}, fmt.Errorf("removing rating: %w", err)
	}

	logger.DebugContext(ctx, "removed rating", "entity", req.Entity.String())

	if err := c.Observer.RatingChanged(ctx, req.Entity); err != nil {
		logger.WarnContext(ctx, "rating observer failed", "error", err)
	}

	return Empty{}, nil
}
