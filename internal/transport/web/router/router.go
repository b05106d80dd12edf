package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/transport/web/controller"
)

type Config struct {
	AllowGet        bool
	FeedHostname    string
	FeedAuthorName  string
	FeedAuthorEmail string
	CacheMaxAge     time.Duration
}

func MakeRouter(
	registry *domain.Registry,
	store datasources.RatingRepository,
	similar datasources.SimilarItemRepository,
	entities datasources.EntityChecker,
	rateCmd command.Command[command.RateEntityRequest, domain.RatedItem],
	unrateCmd command.Command[command.UnrateEntityRequest, command.Empty],
	cfg Config,
	authMiddleware func(http.Handler) http.Handler,
) (http.Handler, error) {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(authMiddleware)

	rateMethods := []string{http.MethodPost, http.MethodOptions}
	if cfg.AllowGet {
		rateMethods = append(rateMethods, http.MethodGet)
	}

	r.Handle("/v1/rate/{type_tag}/{entity_id}/{score}", requireAuthMiddleware(controller.Rate{
		Registry: registry,
		Entities: entities,
		RateCmd:  rateCmd,
		AllowGet: cfg.AllowGet,
	})).Methods(rateMethods...)

	r.Handle("/v1/unrate/{type_tag}/{entity_id}", requireAuthMiddleware(controller.Unrate{
		Registry:  registry,
		Entities:  entities,
		UnrateCmd: unrateCmd,
		AllowGet:  cfg.AllowGet,
	})).Methods(rateMethods...)

	r.Handle("/v1/entities/{type_tag}/{entity_id}/similar", controller.SimilarItemsList{
		Registry:    registry,
		Entities:    entities,
		Similar:     similar,
		CacheMaxAge: cfg.CacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/entities/{type_tag}/{entity_id}/scores", controller.EntityScores{
		Registry: registry,
		Entities: entities,
		Store:    store,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/entities/{type_tag}/top", controller.TopRatedList{
		Registry:    registry,
		Ranker:      store,
		CacheMaxAge: cfg.CacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/recommended", requireAuthMiddleware(controller.RecommendedList{
		Store:   store,
		Similar: similar,
	})).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/rss/top/{type_tag}", controller.RSS{
		FeedHostname:    cfg.FeedHostname,
		FeedAuthorName:  cfg.FeedAuthorName,
		FeedAuthorEmail: cfg.FeedAuthorEmail,
		Registry:        registry,
		Ranker:          store,
		CacheMaxAge:     cfg.CacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	return r, nil
}
