package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwhitworth/ratemill/internal/domain"
)

func TestRSS_ServeHTTP(t *testing.T) {
	ranker := &mockRanker{}
	ranker.On("RankEntitiesByRating", mock.Anything, "food", domain.RankOptions{
		Aggregator: domain.AggregateSum,
		Limit:      20,
	}).Return([]domain.RankedEntity{
		{Entity: domain.EntityRef{TypeTag: "food", ID: 4}, Score: 28},
		{Entity: domain.EntityRef{TypeTag: "food", ID: 2}, Score: 26},
	}, nil)

	ctrl := RSS{
		FeedHostname:    "https://ratings.example.com",
		FeedAuthorName:  "Ratings",
		FeedAuthorEmail: "ratings@example.com",
		Registry:        testRegistry(),
		Ranker:          ranker,
		CacheMaxAge:     10 * time.Minute,
	}

	req := httptest.NewRequest(http.MethodGet, "/rss/top/food", nil)
	req = testContext()(req)
	req = mux.SetURLVars(req, map[string]string{"type_tag": "food"})
	rec := httptest.NewRecorder()

	ctrl.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=600", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Top rated: food</title>")
	assert.Contains(t, body, "food #4")
	assert.Contains(t, body, "https://ratings.example.com/v1/entities/food/4/scores")
}

func TestRSS_ServeHTTP_UnknownType(t *testing.T) {
	ctrl := RSS{
		Registry: testRegistry(),
		Ranker:   &mockRanker{},
	}

	req := httptest.NewRequest(http.MethodGet, "/rss/top/beverage", nil)
	req = testContext()(req)
	req = mux.SetURLVars(req, map[string]string{"type_tag": "beverage"})
	rec := httptest.NewRecorder()

	ctrl.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
