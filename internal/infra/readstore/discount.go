package readstore

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/pkg/pgconv"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"
)

type DiscountReadStore struct {
	db db.DBTX
}

func NewDiscountReadStore(db db.DBTX) *DiscountReadStore {
	return &DiscountReadStore{db: db}
}

const discountColumns = `
	id, code, percentage, valid_from, valid_to, active,
	NULLIF(min_order_value, 0), max_discount, usage_limit, used_count, created_at, updated_at`

func (r *DiscountReadStore) FindAll(ctx context.Context) ([]*queries.DiscountView, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find discount codes", err)
	}
	defer rows.Close()

	result := []*queries.DiscountView{}
	for rows.Next() {
		var view queries.DiscountView
		if err := rows.Scan(
			&view.ID, &view.Code, &view.Percentage, &view.ValidFrom, &view.ValidTo, &view.Active,
			&view.MinOrderValue, &view.MaxDiscount, &view.UsageLimit, &view.UsedCount,
			&view.CreatedAt, &view.UpdatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan discount code", err)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate discount codes", err)
	}
	return result, nil
}

func (r *DiscountReadStore) FindByCode(ctx context.Context, code string) (*queries.DiscountView, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE code = $1`

	var view queries.DiscountView
	err := r.db.QueryRow(ctx, query, code).Scan(
		&view.ID, &view.Code, &view.Percentage, &view.ValidFrom, &view.ValidTo, &view.Active,
		&view.MinOrderValue, &view.MaxDiscount, &view.UsageLimit, &view.UsedCount,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount code", err)
	}
	return &view, nil
}

func (r *DiscountReadStore) SnapshotByCode(ctx context.Context, code string) (*shared.DiscountSnapshot, error) {
	const query = `
		SELECT id, code, percentage, valid_from, valid_to, active,
		       NULLIF(min_order_value, 0), max_discount, usage_limit, used_count
		FROM discount_codes
		WHERE code = $1`

	var snap shared.DiscountSnapshot
	err := r.db.QueryRow(ctx, query, code).Scan(
		&snap.ID, &snap.Code, &snap.Percentage, &snap.ValidFrom, &snap.ValidTo, &snap.Active,
		&snap.MinOrderValue, &snap.MaxDiscount, &snap.UsageLimit, &snap.UsedCount,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find discount snapshot", err)
	}
	return &snap, nil
}
