package datasources

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// RatingObserver is notified after a rating for an entity is created,
// updated, or removed. The surrounding application uses this to keep a
// denormalized cached score on the entity itself; the engine only emits the
// notification. Notification is best-effort: failures are logged, never
// propagated to the rater.
type RatingObserver interface {
	RatingChanged(ctx context.Context, entity domain.EntityRef) error
}

// NullRatingObserver is a null implementation of RatingObserver.
type NullRatingObserver struct{}

var _ RatingObserver = NullRatingObserver{}

func (NullRatingObserver) RatingChanged(_ context.Context, _ domain.EntityRef) error {
	return nil
}
