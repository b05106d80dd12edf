package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// Unrate removes the authenticated caller's rating of an entity. Unrating an
// entity the caller never rated succeeds quietly.
type Unrate struct {
	Registry  *domain.Registry
	Entities  datasources.EntityChecker
	UnrateCmd command.Command[command.UnrateEntityRequest, command.Empty]
	AllowGet  bool
}

func (c Unrate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	req := command.UnrateEntityRequest{
		UserID: domain.UserIDFromContext(ctx),
		Entity: ref,
	}
	if _, err := c.UnrateCmd.Execute(ctx, req); err != nil {
		logger.ErrorContext(ctx, "failed to remove rating", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeRatingAck(w, r, redirectURL)
}
