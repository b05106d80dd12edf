package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// SimilarItemsList serves an entity's cached most-similar entities,
// descending by similarity score.
type SimilarItemsList struct {
	Registry    *domain.Registry
	Entities    datasources.EntityChecker
	Similar     datasources.SimilarItemLister
	CacheMaxAge time.Duration
}

type SimilarItemsListResponse struct {
	Data []domain.SimilarItem `json:"data"`
}

func (c SimilarItemsList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	ref, ok := resolveEntityRef(ctx, w, c.Registry, c.Entities, mux.Vars(r))
	if !ok {
		return
	}

	items, err := c.Similar.ListSimilarItems(ctx, ref)
	if err != nil {
		logger.ErrorContext(ctx, "unable to fetch similar items", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []domain.SimilarItem{}
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))
	writeJSON(w, r, SimilarItemsListResponse{Data: items})
}
