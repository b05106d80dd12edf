package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// The similarity joins are self-joins of the ratings table: rows belonging to
// factor A joined to rows belonging to factor B on the match dimension. When
// the factors are raters the match is the entity's hashed key; when they are
// entities the match is the rater. The scope restricts the r1 side, which is
// enough to bound the join without scanning unrelated rows.

func (r *Repository) MatchedScoreDiffs(
	ctx context.Context, scope domain.RatingScope, a, b domain.Factor,
) ([]float64, error) {
	filterCol, matchCol, err := factorColumns(a, b)
	if err != nil {
		return nil, err
	}

	sb := sqlbuilder.Select("r1.score - r2.score")
	sb.From(ratedItemsTable + " r1")
	sb.JoinWithOption(sqlbuilder.InnerJoin, ratedItemsTable+" r2",
		"r1."+matchCol+" = r2."+matchCol)

	conds := []string{
		sb.Equal("r1."+filterCol, a.FilterValue()),
		sb.Equal("r2."+filterCol, b.FilterValue()),
	}
	conds = append(conds, scopeConds(sb, scope, "r1.")...)
	sb.Where(conds...)

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running matched pair query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var diffs []float64
	for rows.Next() {
		var diff float64
		if err := rows.Scan(&diff); err != nil {
			return nil, fmt.Errorf("scanning matched pair: %w", err)
		}
		diffs = append(diffs, diff)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matched pairs: %w", err)
	}

	return diffs, nil
}

func (r *Repository) MatchedPairStats(
	ctx context.Context, scope domain.RatingScope, a, b domain.Factor,
) (domain.PairStats, error) {
	filterCol, matchCol, err := factorColumns(a, b)
	if err != nil {
		return domain.PairStats{}, err
	}

	sb := sqlbuilder.Select(
		"SUM(r1.score)",
		"SUM(r2.score)",
		"SUM(r1.score * r1.score)",
		"SUM(r2.score * r2.score)",
		"SUM(r1.score * r2.score)",
		"COUNT(r1.id)",
	)
	sb.From(ratedItemsTable + " r1")
	sb.JoinWithOption(sqlbuilder.InnerJoin, ratedItemsTable+" r2",
		"r1."+matchCol+" = r2."+matchCol)

	conds := []string{
		sb.Equal("r1."+filterCol, a.FilterValue()),
		sb.Equal("r2."+filterCol, b.FilterValue()),
	}
	conds = append(conds, scopeConds(sb, scope, "r1.")...)
	sb.Where(conds...)

	query, args := sb.Build()

	var sum1, sum2, sqSum1, sqSum2, pSum sql.NullFloat64
	var sampleSize int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&sum1, &sum2, &sqSum1, &sqSum2, &pSum, &sampleSize,
	)
	if err != nil {
		return domain.PairStats{}, fmt.Errorf("running matched pair stats query: %w", err)
	}

	if !sum1.Valid || !sum2.Valid || sampleSize == 0 {
		return domain.PairStats{}, nil
	}

	return domain.PairStats{
		Sum1:       sum1.Float64,
		Sum2:       sum2.Float64,
		SquareSum1: sqSum1.Float64,
		SquareSum2: sqSum2.Float64,
		ProductSum: pSum.Float64,
		SampleSize: sampleSize,
	}, nil
}

func factorColumns(a, b domain.Factor) (filterCol, matchCol string, err error) {
	if a.IsRater() != b.IsRater() {
		return "", "", fmt.Errorf("cannot compare rater with entity: %v vs %v", a, b)
	}

	if a.IsRater() {
		return "user_id", "hashed", nil
	}
	return "hashed", "user_id", nil
}
