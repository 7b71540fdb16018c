package repository

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountRepository struct{}

func NewDiscountRepository() *DiscountRepository {
	return &DiscountRepository{}
}

// ClaimUsage carries the usage cap in the UPDATE predicate, so used_count can
// never pass usage_limit no matter how many checkouts race on the code.
func (r *DiscountRepository) ClaimUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE discount_codes
		SET used_count = used_count + 1, updated_at = now()
		WHERE id = $1
		  AND active
		  AND (usage_limit IS NULL OR used_count < usage_limit)`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim discount usage", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DiscountRepository) RefundUsage(ctx context.Context, tx db.DBTX, code string) error {
	const query = `
		UPDATE discount_codes
		SET used_count = GREATEST(used_count - 1, 0), updated_at = now()
		WHERE code = $1`

	if _, err := tx.Exec(ctx, query, code); err != nil {
		return infra.WrapRepoErr("failed to refund discount usage", err)
	}
	return nil
}

func (r *DiscountRepository) Insert(ctx context.Context, tx db.DBTX, params shared.DiscountCodeParams) (uuid.UUID, error) {
	const query = `
		INSERT INTO discount_codes (
			code, percentage, valid_from, valid_to, active,
			min_order_value, max_discount, usage_limit
		)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, 0), $7, $8)
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		params.Code, params.Percentage, params.ValidFrom, params.ValidTo, params.Active,
		params.MinOrderValue, params.MaxDiscount, params.UsageLimit,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to insert discount code", err)
	}
	return id, nil
}

func (r *DiscountRepository) Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params shared.DiscountCodeParams) (bool, error) {
	const query = `
		UPDATE discount_codes
		SET code = $2, percentage = $3, valid_from = $4, valid_to = $5, active = $6,
		    min_order_value = COALESCE($7, 0), max_discount = $8, usage_limit = $9,
		    updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		id, params.Code, params.Percentage, params.ValidFrom, params.ValidTo, params.Active,
		params.MinOrderValue, params.MaxDiscount, params.UsageLimit,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update discount code", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DiscountRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	const query = `DELETE FROM discount_codes WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete discount code", err)
	}
	return tag.RowsAffected() > 0, nil
}
