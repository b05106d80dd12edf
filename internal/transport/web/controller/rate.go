package controller

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// Rate is the single externally triggered mutation path into the rating
// engine: it records the authenticated caller's score for an entity
// identified by (type tag, primary key).
type Rate struct {
	Registry *domain.Registry
	Entities datasources.EntityChecker
	RateCmd  command.Command[command.RateEntityRequest, domain.RatedItem]

	// AllowGet additionally accepts GET requests. This trades HTTP
	// idempotency conventions for plain <a href> rating links.
	AllowGet bool
}

func (c Rate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && !c.AllowGet {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	vars := mux.Vars(r)
	logger := domain.LoggerFromContext(r.Context())
	ctx := domain.ContextWithLogger(r.Context(),
		logger.With("entity_type", vars["type_tag"], "entity_id", vars["entity_id"]))
	logger = domain.LoggerFromContext(ctx)

	redirectURL, ok := redirectTarget(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ref, ok := resolveEntityRef(ctx, w, c.Registry, c.Entities, vars)
	if !ok {
		return
	}

	score, err := strconv.ParseFloat(vars["score"], 64)
	if err != nil {
		logger.ErrorContext(ctx, "invalid score value", "value", vars["score"])
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req := command.RateEntityRequest{
		UserID: domain.UserIDFromContext(ctx),
		Entity: ref,
		Score:  score,
	}
	if _, err := c.RateCmd.Execute(ctx, req); err != nil {
		logger.ErrorContext(ctx, "failed to record rating", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeRatingAck(w, r, redirectURL)
}
