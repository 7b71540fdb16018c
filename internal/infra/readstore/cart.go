package readstore

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(db db.DBTX) *CartReadStore {
	return &CartReadStore{db: db}
}

func (r *CartReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.CartItemView, error) {
	const query = `
		SELECT c.id, c.product_id, p.name, p.price, p.image_url, p.stock, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart items", err)
	}
	defer rows.Close()

	result := []*queries.CartItemView{}
	for rows.Next() {
		var view queries.CartItemView
		if err := rows.Scan(
			&view.ID, &view.ProductID, &view.Name, &view.Price, &view.ImageURL, &view.Stock, &view.Quantity,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return result, nil
}
