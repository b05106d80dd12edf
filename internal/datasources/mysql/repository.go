package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

const ratedItemsTable = "rated_items"

var _ datasources.RatingRepository = (*Repository)(nil)
var _ datasources.SimilarItemRepository = (*Repository)(nil)
var _ datasources.EntityChecker = (*Repository)(nil)

// Repository implements the rating, similarity cache, and entity access
// interfaces over MySQL. The registry resolves entity type tags to their
// owning tables for ranking and existence checks.
type Repository struct {
	db       *sql.DB
	registry *domain.Registry
}

func New(db *sql.DB, registry *domain.Registry) *Repository {
	return &Repository{db: db, registry: registry}
}

const getRatingSQL = `
SELECT id, user_id, entity_type, entity_id, hashed, score, rated_at
FROM rated_items
WHERE user_id = ? AND hashed = ?`

func (r *Repository) GetRating(ctx context.Context, userID, hashed string) (domain.RatedItem, error) {
	row := r.db.QueryRowContext(ctx, getRatingSQL, userID, hashed)

	item, err := scanRatedItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RatedItem{}, fmt.Errorf(
			"rating by %q for entity %q: %w", userID, hashed, domain.ErrNotFound)
	}
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("getting rating: %w", err)
	}

	return item, nil
}

func (r *Repository) ListRatings(
	ctx context.Context, scope domain.RatingScope,
) ([]domain.RatedItem, error) {
	sb := sqlbuilder.Select("id", "user_id", "entity_type", "entity_id", "hashed", "score", "rated_at")
	sb.From(ratedItemsTable)

	if conds := scopeConds(sb, scope, ""); len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running ratings query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.RatedItem
	for rows.Next() {
		item, err := scanRatedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ratings: %w", err)
	}

	return items, nil
}

func (r *Repository) CountRatings(ctx context.Context, scope domain.RatingScope) (int64, error) {
	sb := sqlbuilder.Select("COUNT(*)")
	sb.From(ratedItemsTable)

	if conds := scopeConds(sb, scope, ""); len(conds) > 0 {
		sb.Where(conds...)
	}

	query, args := sb.Build()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting ratings: %w", err)
	}
	return count, nil
}

func (r *Repository) AggregateScores(
	ctx context.Context, scope domain.RatingScope,
) (domain.ScoreAggregates, error) {
	sb := sqlbuilder.Select(
		"COUNT(id)",
		"COALESCE(SUM(score), 0)",
		"COALESCE(AVG(score), 0)",
		"COALESCE(STDDEV_POP(score), 0)",
		"COALESCE(VAR_POP(score), 0)",
	)
	sb.From(ratedItemsTable)

	if conds := scopeConds(sb, scope, ""); len(conds) > 0 {
		sb.Where(conds...)
	}

	query, args := sb.Build()

	var agg domain.ScoreAggregates
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&agg.Count, &agg.Sum, &agg.Average, &agg.StdDev, &agg.Variance,
	)
	if err != nil {
		return domain.ScoreAggregates{}, fmt.Errorf("aggregating scores: %w", err)
	}

	return agg, nil
}

const upsertRatingSQL = `
INSERT INTO rated_items (user_id, entity_type, entity_id, hashed, score, rated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE score = VALUES(score), rated_at = VALUES(rated_at)`

func (r *Repository) UpsertRating(
	ctx context.Context, item domain.RatedItem,
) (domain.RatedItem, error) {
	item = withHash(item)

	_, err := r.db.ExecContext(ctx, upsertRatingSQL,
		item.UserID, item.Entity.TypeTag, item.Entity.ID, item.Hashed, item.Score, item.RatedAt)
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("upserting rating: %w", err)
	}

	// LastInsertId is unreliable for the update arm of the upsert, so read
	// the canonical row back.
	return r.GetRating(ctx, item.UserID, item.Hashed)
}

const insertRatingSQL = `
INSERT INTO rated_items (user_id, entity_type, entity_id, hashed, score, rated_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (r *Repository) SaveRating(
	ctx context.Context, item domain.RatedItem,
) (domain.RatedItem, error) {
	item = withHash(item)

	res, err := r.db.ExecContext(ctx, insertRatingSQL,
		item.UserID, item.Entity.TypeTag, item.Entity.ID, item.Hashed, item.Score, item.RatedAt)
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("inserting rating: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.RatedItem{}, fmt.Errorf("reading inserted rating ID: %w", err)
	}
	item.ID = id

	return item, nil
}

func (r *Repository) DeleteRating(ctx context.Context, userID, hashed string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM rated_items WHERE user_id = ? AND hashed = ?", userID, hashed)
	if err != nil {
		return 0, fmt.Errorf("deleting rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading deleted rating count: %w", err)
	}
	return affected, nil
}

func (r *Repository) DeleteRatingByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rated_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting rating by ID: %w", err)
	}
	return nil
}

func (r *Repository) ClearRatings(ctx context.Context, hashed string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rated_items WHERE hashed = ?", hashed); err != nil {
		return fmt.Errorf("clearing ratings: %w", err)
	}
	return nil
}

func (r *Repository) DistinctRatedTypes(
	ctx context.Context, scope domain.RatingScope,
) ([]string, error) {
	sb := sqlbuilder.Select("DISTINCT entity_type")
	sb.From(ratedItemsTable)

	if conds := scopeConds(sb, scope, ""); len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy("entity_type")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running rated types query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning rated type: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rated types: %w", err)
	}

	return tags, nil
}

func (r *Repository) DistinctRatedEntities(
	ctx context.Context, scope domain.RatingScope, typeTag string,
) ([]domain.EntityRef, error) {
	sb := sqlbuilder.Select("DISTINCT entity_id")
	sb.From(ratedItemsTable)

	conds := scopeConds(sb, scope.ForType(typeTag), "")
	sb.Where(conds...)
	sb.OrderBy("entity_id")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running rated entities query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []domain.EntityRef
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning rated entity: %w", err)
		}
		refs = append(refs, domain.EntityRef{TypeTag: typeTag, ID: id})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rated entities: %w", err)
	}

	return refs, nil
}

func (r *Repository) EntityExists(ctx context.Context, ref domain.EntityRef) (bool, error) {
	etype, err := r.registry.Lookup(ref.TypeTag)
	if err != nil {
		return false, err
	}

	sb := sqlbuilder.Select("1")
	sb.From(etype.Table)
	sb.Where(sb.Equal(etype.PKColumn, ref.ID))
	sb.Limit(1)

	query, args := sb.Build()

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking entity existence: %w", err)
	}
	return true, nil
}

// scopeConds translates a rating scope into WHERE conditions on the ratings
// table, with prefix naming the table alias ("r1." inside joins).
func scopeConds(sb *sqlbuilder.SelectBuilder, scope domain.RatingScope, prefix string) []string {
	var conds []string

	if scope.UserID != "" {
		conds = append(conds, sb.Equal(prefix+"user_id", scope.UserID))
	}
	if scope.TypeTag != "" {
		conds = append(conds, sb.Equal(prefix+"entity_type", scope.TypeTag))
	}
	if scope.Hashed != "" {
		conds = append(conds, sb.Equal(prefix+"hashed", scope.Hashed))
	}

	return conds
}

func withHash(item domain.RatedItem) domain.RatedItem {
	if item.Hashed == "" {
		item.Hashed = item.Entity.HashedKey()
	}
	if item.RatedAt.IsZero() {
		item.RatedAt = time.Now().UTC().Truncate(time.Second)
	}
	return item
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRatedItem(row rowScanner) (domain.RatedItem, error) {
	var item domain.RatedItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.Entity.TypeTag, &item.Entity.ID,
		&item.Hashed, &item.Score, &item.RatedAt,
	)
	return item, err
}
