package repository

import (
	"context"

	"solestore/internal/domain/product"
	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// DecrementStock keeps the floor check inside the UPDATE predicate so the
// decrement can never race past zero, whatever a prior read saw.
func (r *ProductRepository) DecrementStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, quantity int32) (bool, error) {
	const query = `
		UPDATE products
		SET stock = stock - $2, sold = sold + $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		return false, infra.WrapRepoErr("failed to decrement stock", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) RestoreStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, quantity int32, reverseSold bool) (bool, error) {
	const restoreOnly = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`
	const restoreAndReverse = `
		UPDATE products
		SET stock = stock + $2, sold = GREATEST(sold - $2, 0), updated_at = now()
		WHERE id = $1`

	query := restoreOnly
	if reverseSold {
		query = restoreAndReverse
	}

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		return false, infra.WrapRepoErr("failed to restore stock", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) Insert(ctx context.Context, tx db.DBTX, p *product.Product) (uuid.UUID, error) {
	const query = `
		INSERT INTO products (name, description, price, category, image_url, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		p.Name(), p.Description(), p.Price(), p.Category(), p.ImageURL(), p.Stock(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to insert product", err)
	}
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params shared.ProductParams) (bool, error) {
	const query = `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, image_url = $6,
		    stock = $7, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		id, params.Name, params.Description, params.Price, params.Category, params.ImageURL, params.Stock,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update product", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	const query = `DELETE FROM products WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete product", err)
	}
	return tag.RowsAffected() > 0, nil
}
