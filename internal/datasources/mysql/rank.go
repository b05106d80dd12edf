package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// RankEntitiesByRating ranks every entity of a type by an aggregate of its
// in-scope ratings. The entity table is LEFT JOINed so entities nobody rated
// still appear; their aggregate coalesces to zero, which is this engine's
// documented policy for unrated entities regardless of backend null-ordering
// behavior.
func (r *Repository) RankEntitiesByRating(
	ctx context.Context, typeTag string, opts domain.RankOptions,
) ([]domain.RankedEntity, error) {
	etype, err := r.registry.Lookup(typeTag)
	if err != nil {
		return nil, err
	}

	aggExpr, err := aggregateExpr(opts.Aggregator)
	if err != nil {
		return nil, err
	}

	sb := sqlbuilder.Select("e."+etype.PKColumn, aggExpr)
	sb.From(etype.Table + " e")

	// Scope filters belong in the join condition: putting them in WHERE
	// would turn the LEFT JOIN into an inner join and drop unrated entities.
	joinConds := []string{
		"r.entity_type = " + sb.Args.Add(typeTag),
		"r.entity_id = e." + etype.PKColumn,
	}
	joinConds = append(joinConds, scopeConds(sb, opts.Scope, "r.")...)
	sb.JoinWithOption(sqlbuilder.LeftJoin, ratedItemsTable+" r",
		strings.Join(joinConds, " AND "))

	if len(opts.CandidateIDs) > 0 {
		ids := make([]interface{}, 0, len(opts.CandidateIDs))
		for _, id := range opts.CandidateIDs {
			ids = append(ids, id)
		}
		sb.Where(sb.In("e."+etype.PKColumn, ids...))
	}

	sb.GroupBy("e." + etype.PKColumn)

	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}
	sb.OrderBy("agg_score "+direction, "e."+etype.PKColumn)

	if opts.Limit > 0 {
		sb.Limit(opts.Limit)
	}

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running rank query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ranked []domain.RankedEntity
	for rows.Next() {
		entry := domain.RankedEntity{Entity: domain.EntityRef{TypeTag: typeTag}}
		if err := rows.Scan(&entry.Entity.ID, &entry.Score); err != nil {
			return nil, fmt.Errorf("scanning ranked entity: %w", err)
		}
		ranked = append(ranked, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ranked entities: %w", err)
	}

	return ranked, nil
}

func aggregateExpr(agg domain.Aggregator) (string, error) {
	switch agg {
	case domain.AggregateSum, "":
		return "COALESCE(SUM(r.score), 0) AS agg_score", nil
	case domain.AggregateAverage:
		return "COALESCE(AVG(r.score), 0) AS agg_score", nil
	case domain.AggregateCount:
		return "COUNT(r.id) AS agg_score", nil
	default:
		return "", fmt.Errorf("unknown aggregator: %s", agg)
	}
}
