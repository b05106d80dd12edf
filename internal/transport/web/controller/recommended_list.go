package controller

import (
	"net/http"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/ratings"
)

// RecommendedList serves personalized recommendations for the authenticated
// caller, derived from the precomputed item-item similarity cache.
type RecommendedList struct {
	Store   datasources.RatingRepository
	Similar datasources.SimilarItemLister
}

type RecommendedListResponse struct {
	Data []domain.Recommendation `json:"data"`
}

func (c RecommendedList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	userID := domain.UserIDFromContext(ctx)

	recs, err := ratings.RecommendedItems(ctx, c.Store, c.Similar, domain.RatingScope{}, userID)
	if err != nil {
		logger.ErrorContext(ctx, "unable to compute recommendations", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if recs == nil {
		recs = []domain.Recommendation{}
	}

	writeJSON(w, r, RecommendedListResponse{Data: recs})
}
