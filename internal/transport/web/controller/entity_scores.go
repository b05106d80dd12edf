package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// EntityScores serves the aggregate rating statistics of one entity. All
// aggregate fields are null when the entity has no ratings; a zero would be
// indistinguishable from a genuinely zero cumulative score.
type EntityScores struct {
	Registry *domain.Registry
	Entities datasources.EntityChecker
	Store    datasources.RatingReader
}

type EntityScoresResponse struct {
	Entity          domain.EntityRef `json:"entity"`
	Count           int64            `json:"count"`
	CumulativeScore *float64         `json:"cumulative_score"`
	AverageScore    *float64         `json:"average_score"`
	StdDev          *float64         `json:"standard_deviation"`
	Variance        *float64         `json:"variance"`
}

func (c EntityScores) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	ref, ok := resolveEntityRef(ctx, w, c.Registry, c.Entities, mux.Vars(r))
	if !ok {
		return
	}

	agg, err := c.Store.AggregateScores(ctx, domain.RatingScope{}.ForEntity(ref))
	if err != nil {
		logger.ErrorContext(ctx, "unable to aggregate scores", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp := EntityScoresResponse{Entity: ref, Count: agg.Count}
	if agg.Count > 0 {
		resp.CumulativeScore = &agg.Sum
		resp.AverageScore = &agg.Average
		resp.StdDev = &agg.StdDev
		resp.Variance = &agg.Variance
	}

	writeJSON(w, r, resp)
}
