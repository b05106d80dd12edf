package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

func testContext() func(r *http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := domain.ContextWithLogger(r.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		return r.WithContext(ctx)
	}
}

func testContextWithUserID(userID string) func(r *http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := domain.ContextWithLogger(r.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = domain.ContextWithUserID(ctx, userID)
		return r.WithContext(ctx)
	}
}

func testRegistry() *domain.Registry {
	registry := domain.NewRegistry()
	registry.Register(domain.EntityType{Tag: "food", Table: "foods", PKColumn: "id"})
	return registry
}

type mockEntityChecker struct {
	mock.Mock
}

func (m *mockEntityChecker) EntityExists(ctx context.Context, ref domain.EntityRef) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

type mockRateCommand struct {
	mock.Mock
}

func (m *mockRateCommand) Execute(
	ctx context.Context, req command.RateEntityRequest,
) (domain.RatedItem, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.RatedItem), args.Error(1)
}

type mockUnrateCommand struct {
	mock.Mock
}

func (m *mockUnrateCommand) Execute(
	ctx context.Context, req command.UnrateEntityRequest,
) (command.Empty, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(command.Empty), args.Error(1)
}

type mockSimilarLister struct {
	mock.Mock
}

func (m *mockSimilarLister) ListSimilarItems(
	ctx context.Context, entity domain.EntityRef,
) ([]domain.SimilarItem, error) {
	args := m.Called(ctx, entity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarItem), args.Error(1)
}

type mockRanker struct {
	mock.Mock
}

func (m *mockRanker) RankEntitiesByRating(
	ctx context.Context, typeTag string, opts domain.RankOptions,
) ([]domain.RankedEntity, error) {
	args := m.Called(ctx, typeTag, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RankedEntity), args.Error(1)
}

// mockRatingStore mocks the read methods the controllers touch.
type mockRatingStore struct {
	mock.Mock
	datasources.RatingRepository
}

func (m *mockRatingStore) ListRatings(
	ctx context.Context, scope domain.RatingScope,
) ([]domain.RatedItem, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatedItem), args.Error(1)
}

func (m *mockRatingStore) AggregateScores(
	ctx context.Context, scope domain.RatingScope,
) (domain.ScoreAggregates, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(domain.ScoreAggregates), args.Error(1)
}
