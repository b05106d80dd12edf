package mysql

import (
	"context"
	"fmt"

	"github.com/mwhitworth/ratemill/internal/domain"
)

const listSimilarItemsSQL = `
SELECT entity_type, entity_id, similar_entity_type, similar_entity_id, score
FROM similar_items
WHERE entity_type = ? AND entity_id = ?
ORDER BY score DESC, similar_entity_id`

func (r *Repository) ListSimilarItems(
	ctx context.Context, entity domain.EntityRef,
) ([]domain.SimilarItem, error) {
	rows, err := r.db.QueryContext(ctx, listSimilarItemsSQL, entity.TypeTag, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("running similar items query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.SimilarItem
	for rows.Next() {
		var item domain.SimilarItem
		err := rows.Scan(
			&item.Entity.TypeTag, &item.Entity.ID,
			&item.Similar.TypeTag, &item.Similar.ID,
			&item.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning similar item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating similar items: %w", err)
	}

	return items, nil
}

const upsertSimilarItemSQL = `
INSERT INTO similar_items (entity_type, entity_id, similar_entity_type, similar_entity_id, score)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE score = VALUES(score)`

func (r *Repository) UpsertSimilarItem(ctx context.Context, item domain.SimilarItem) error {
	_, err := r.db.ExecContext(ctx, upsertSimilarItemSQL,
		item.Entity.TypeTag, item.Entity.ID,
		item.Similar.TypeTag, item.Similar.ID,
		item.Score,
	)
	if err != nil {
		return fmt.Errorf("upserting similar item: %w", err)
	}
	return nil
}
