package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// RSS serves the top-rated entities of one type as an RSS feed.
type RSS struct {
	FeedHostname    string
	FeedAuthorName  string
	FeedAuthorEmail string
	Registry        *domain.Registry
	Ranker          datasources.EntityRanker
	CacheMaxAge     time.Duration
}

func (c RSS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	typeTag := mux.Vars(r)["type_tag"]
	if _, err := c.Registry.Lookup(typeTag); err != nil {
		logger.ErrorContext(ctx, "entity type does not support ratings", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Top rated: %s", typeTag),
		Link:        &feeds.Link{Href: c.FeedHostname + "/rss/top/" + typeTag},
		Description: fmt.Sprintf("Highest rated %s entries by cumulative score", typeTag),
		Author:      &feeds.Author{Name: c.FeedAuthorName, Email: c.FeedAuthorEmail},
		Created:     time.Now(),
	}

	ranked, err := c.Ranker.RankEntitiesByRating(ctx, typeTag, domain.RankOptions{
		Aggregator: domain.AggregateSum,
		Limit:      defaultTopRatedLimit,
	})
	if err != nil {
		logger.ErrorContext(ctx, "unable to rank entities for feed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	for _, entry := range ranked {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          entry.Entity.String(),
			IsPermaLink: "false",
			Title:       fmt.Sprintf("%s #%d", entry.Entity.TypeTag, entry.Entity.ID),
			Link: &feeds.Link{
				Href: fmt.Sprintf("%s/v1/entities/%s/%d/scores",
					c.FeedHostname, entry.Entity.TypeTag, entry.Entity.ID),
			},
			Description: fmt.Sprintf("Cumulative score %g", entry.Score),
			Created:     time.Now(),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		logger.ErrorContext(ctx, "unable to format feed as RSS", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))
	_, _ = w.Write([]byte(rss))
}
