package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// resolveEntityRef maps the route's (type tag, primary key) vars to an entity
// reference. A type that is not registered as rateable, a malformed primary
// key, or a missing entity row all surface as 404.
func resolveEntityRef(
	ctx context.Context,
	w http.ResponseWriter,
	registry *domain.Registry,
	entities datasources.EntityChecker,
	vars map[string]string,
) (domain.EntityRef, bool) {
	logger := domain.LoggerFromContext(ctx)

	if _, err := registry.Lookup(vars["type_tag"]); err != nil {
		logger.ErrorContext(ctx, "entity type does not support ratings", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return domain.EntityRef{}, false
	}

	id, err := strconv.ParseInt(vars["entity_id"], 10, 64)
	if err != nil {
		logger.ErrorContext(ctx, "invalid entity ID", "value", vars["entity_id"])
		w.WriteHeader(http.StatusNotFound)
		return domain.EntityRef{}, false
	}

	ref := domain.EntityRef{TypeTag: vars["type_tag"], ID: id}

	exists, err := entities.EntityExists(ctx, ref)
	if err != nil {
		logger.ErrorContext(ctx, "unable to check entity existence", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return domain.EntityRef{}, false
	}
	if !exists {
		logger.ErrorContext(ctx, "entity does not exist")
		w.WriteHeader(http.StatusNotFound)
		return domain.EntityRef{}, false
	}

	return ref, true
}
