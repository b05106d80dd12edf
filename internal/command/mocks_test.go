package command

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// mockRatingStore mocks the store methods the commands touch; anything else
// panics through the embedded nil interface.
type mockRatingStore struct {
	mock.Mock
	datasources.RatingRepository
}

func (m *mockRatingStore) UpsertRating(
	ctx context.Context, item domain.RatedItem,
) (domain.RatedItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.RatedItem), args.Error(1)
}

func (m *mockRatingStore) DeleteRating(
	ctx context.Context, userID, hashed string,
) (int64, error) {
	args := m.Called(ctx, userID, hashed)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRatingStore) DistinctRatedTypes(
	ctx context.Context, scope domain.RatingScope,
) ([]string, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRatingStore) DistinctRatedEntities(
	ctx context.Context, scope domain.RatingScope, typeTag string,
) ([]domain.EntityRef, error) {
	args := m.Called(ctx, scope, typeTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntityRef), args.Error(1)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) RatingChanged(ctx context.Context, entity domain.EntityRef) error {
	return m.Called(ctx, entity).Error(0)
}

type mockSimilarWriter struct {
	mock.Mock
}

func (m *mockSimilarWriter) UpsertSimilarItem(ctx context.Context, item domain.SimilarItem) error {
	return m.Called(ctx, item).Error(0)
}
