package controller

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

const defaultTopRatedLimit = 20

// TopRatedList ranks entities of one type by an aggregate of their ratings.
// Unrated entities rank with a zero aggregate.
type TopRatedList struct {
	Registry    *domain.Registry
	Ranker      datasources.EntityRanker
	CacheMaxAge time.Duration
}

type TopRatedListResponse struct {
	Data []domain.RankedEntity `json:"data"`
}

func (c TopRatedList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	typeTag := mux.Vars(r)["type_tag"]
	if _, err := c.Registry.Lookup(typeTag); err != nil {
		logger.ErrorContext(ctx, "entity type does not support ratings", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	opts, err := rankOptionsFromQuery(r.URL.Query())
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse rank options in query string", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ranked, err := c.Ranker.RankEntitiesByRating(ctx, typeTag, opts)
	if err != nil {
		logger.ErrorContext(ctx, "unable to rank entities", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if ranked == nil {
		ranked = []domain.RankedEntity{}
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))
	writeJSON(w, r, TopRatedListResponse{Data: ranked})
}

func rankOptionsFromQuery(query url.Values) (domain.RankOptions, error) {
	opts := domain.RankOptions{
		Aggregator: domain.AggregateSum,
		Limit:      defaultTopRatedLimit,
	}

	switch agg := query.Get("aggregate"); agg {
	case "", string(domain.AggregateSum):
	case string(domain.AggregateAverage):
		opts.Aggregator = domain.AggregateAverage
	case string(domain.AggregateCount):
		opts.Aggregator = domain.AggregateCount
	default:
		return domain.RankOptions{}, fmt.Errorf("unknown aggregate: %q", agg)
	}

	switch order := query.Get("order"); order {
	case "", "desc":
	case "asc":
		opts.Ascending = true
	default:
		return domain.RankOptions{}, fmt.Errorf("unknown order: %q", order)
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return domain.RankOptions{}, fmt.Errorf("invalid limit: %q", limitStr)
		}
		opts.Limit = limit
	}

	return opts, nil
}
