package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/datasources/mysql"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/transport/web/router"
	"github.com/mwhitworth/ratemill/internal/transport/web/server"
)

type Component interface {
	Run(ctx context.Context) error
}

func Setup(ctx context.Context) ([]Component, error) {
	registry, err := SetupRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up entity type registry: %w", err)
	}

	repo, err := SetupRepository(ctx, registry)
	if err != nil {
		return nil, fmt.Errorf("setting up rating repository: %w", err)
	}

	authMiddleware, err := setupAuthMiddleware(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up auth middleware: %w", err)
	}

	// The observer hook is where a surrounding application would refresh a
	// denormalized cached score on the rated entity itself.
	var observer datasources.RatingObserver = datasources.NullRatingObserver{}

	rateCmd := command.NewRateEntity(repo, observer)
	unrateCmd := command.NewUnrateEntity(repo, observer)

	httpRouter, err := router.MakeRouter(
		registry,
		repo,
		repo,
		repo,
		rateCmd,
		unrateCmd,
		router.Config{
			AllowGet:        MustGetEnvAsBoolean(ctx, "RATINGS_ALLOW_GET"),
			FeedHostname:    MustGetEnvAsString(ctx, "RSS_FEED_BASE_URL"),
			FeedAuthorName:  MustGetEnvAsString(ctx, "RSS_FEED_AUTHOR_NAME"),
			FeedAuthorEmail: MustGetEnvAsString(ctx, "RSS_FEED_AUTHOR_EMAIL"),
			CacheMaxAge:     MustGetEnvAsDuration(ctx, "CACHE_MAX_AGE"),
		},
		authMiddleware,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create HTTP router: %w", err)
	}

	return []Component{
		&server.Server{
			TLSDisabled:       MustGetEnvAsBoolean(ctx, "HTTP_TLS_DISABLED"),
			TLSDisabledPort:   MustGetEnvAsInt(ctx, "PORT"),
			AutocertHostnames: MustGetEnvAsStrings(ctx, "HTTP_AUTOCERT_HOSTNAMES"),
			Router:            httpRouter,
		},
	}, nil
}

// SetupRegistry builds the entity type registry from RATEABLE_TYPES, a
// comma-separated list of tag:table:pk_column entries. Every rateable type
// registers here at startup; nothing is resolved reflectively later.
func SetupRegistry(ctx context.Context) (*domain.Registry, error) {
	registry := domain.NewRegistry()

	for _, entry := range MustGetEnvAsStrings(ctx, "RATEABLE_TYPES") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed rateable type entry [%s], want tag:table:pk_column", entry)
		}

		registry.Register(domain.EntityType{
			Tag:      parts[0],
			Table:    parts[1],
			PKColumn: parts[2],
		})
	}

	if len(registry.Tags()) == 0 {
		return nil, fmt.Errorf("no rateable types registered")
	}

	return registry, nil
}

func SetupRepository(ctx context.Context, registry *domain.Registry) (*mysql.Repository, error) {
	db, err := mysql.Connect(ctx, MustGetEnvAsString(ctx, "MYSQL_URI"))
	if err != nil {
		return nil, fmt.Errorf("connecting to MySQL: %w", err)
	}
	return mysql.New(db, registry), nil
}

func setupAuthMiddleware(ctx context.Context) (func(http.Handler) http.Handler, error) {
	switch driver := MustGetEnvAsString(ctx, "AUTH_DRIVER"); driver {
	case "auth0":
		mw, err := router.SetupAuth0Middleware(
			MustGetEnvAsString(ctx, "AUTH0_DOMAIN"),
			MustGetEnvAsString(ctx, "AUTH0_AUDIENCE"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating Auth0 middleware: %w", err)
		}
		return mw, nil
	case "header":
		// Trusts the X-User-ID header. Local development only.
		return router.SetupHeaderAuthMiddleware(), nil
	default:
		return nil, fmt.Errorf("unknown auth driver [%s]", driver)
	}
}
