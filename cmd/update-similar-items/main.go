package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/mwhitworth/ratemill/internal/app"
	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/datasources/mysql"
	"github.com/mwhitworth/ratemill/internal/domain"
	"github.com/mwhitworth/ratemill/internal/ratings"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx := context.Background()

	// Setup logger
	logLevel := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %s\n", lvl)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	ctx = domain.ContextWithLogger(ctx, logger)

	if err := run(ctx); err != nil {
		logger.ErrorContext(ctx, "similar item update failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "similar item update completed successfully")
}

func run(ctx context.Context) error {
	mysqlURI := os.Getenv("MYSQL_URI")
	if mysqlURI == "" {
		return fmt.Errorf("MYSQL_URI environment variable is required")
	}

	registry, err := app.SetupRegistry(ctx)
	if err != nil {
		return fmt.Errorf("setting up entity type registry: %w", err)
	}

	db, err := mysql.Connect(ctx, mysqlURI)
	if err != nil {
		return fmt.Errorf("connecting to MySQL: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := mysql.New(db, registry)

	topN := ratings.DefaultSimilarTopN
	if v := os.Getenv("RATINGS_SIMILAR_TOP_N"); v != "" {
		topN, err = strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATINGS_SIMILAR_TOP_N [%s]: %w", v, err)
		}
	}

	updateCmd := command.NewUpdateSimilarItems(repo, repo, topN)

	// Positional args restrict the run to specific type tags.
	_, err = updateCmd.Execute(ctx, command.UpdateSimilarItemsRequest{
		TypeTags: os.Args[1:],
	})
	return err
}
