package repository

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// LinesForCheckout joins the cart against products so the caller gets one
// consistent view of prices, names and stock for the whole cart.
func (r *CartRepository) LinesForCheckout(ctx context.Context, tx db.DBTX, userID uuid.UUID) ([]shared.CartLineSnapshot, error) {
	const query = `
		SELECT c.id, c.product_id, c.quantity, p.price, p.name, p.image_url, p.stock
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []shared.CartLineSnapshot
	for rows.Next() {
		var line shared.CartLineSnapshot
		if err := rows.Scan(
			&line.ItemID, &line.ProductID, &line.Quantity,
			&line.UnitPrice, &line.ProductName, &line.ImageURL, &line.Stock,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}
	return lines, nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) error {
	const query = `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := tx.Exec(ctx, query, userID); err != nil {
		return infra.WrapRepoErr("failed to clear cart", err)
	}
	return nil
}

func (r *CartRepository) AddOrMerge(ctx context.Context, tx db.DBTX, userID, productID uuid.UUID, quantity int32) (uuid.UUID, error) {
	const query = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id`

	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, userID, productID, quantity).Scan(&id); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to add cart item", err)
	}
	return id, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID, quantity int32) (bool, error) {
	const query = `
		UPDATE cart_items
		SET quantity = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2`

	tag, err := tx.Exec(ctx, query, itemID, userID, quantity)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update cart item", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID) (bool, error) {
	const query = `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`

	tag, err := tx.Exec(ctx, query, itemID, userID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete cart item", err)
	}
	return tag.RowsAffected() > 0, nil
}
