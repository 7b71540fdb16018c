package readstore

import (
	"context"
	"strconv"
	"strings"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/pkg/pgconv"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(db db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: db}
}

const productViewColumns = `
	id, name, description, price, image_url, category, stock, sold, created_at, updated_at`

func (r *ProductReadStore) FindAll(ctx context.Context, filter queries.ProductFilter) ([]*queries.ProductView, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + productViewColumns + ` FROM products`)

	var args []any
	var conds []string
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != nil {
		args = append(args, "%"+*filter.Search+"%")
		conds = append(conds, "name ILIKE $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find products", err)
	}
	defer rows.Close()

	result := []*queries.ProductView{}
	for rows.Next() {
		var view queries.ProductView
		if err := rows.Scan(
			&view.ID, &view.Name, &view.Description, &view.Price, &view.ImageURL,
			&view.Category, &view.Stock, &view.Sold, &view.CreatedAt, &view.UpdatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product", err)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate products", err)
	}
	return result, nil
}

func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	query := `SELECT ` + productViewColumns + ` FROM products WHERE id = $1`

	var view queries.ProductView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.Name, &view.Description, &view.Price, &view.ImageURL,
		&view.Category, &view.Stock, &view.Sold, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by ID", err)
	}
	return &view, nil
}

func (r *ProductReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.ProductSnapshot, error) {
	const query = `SELECT id, name, price, stock, image_url FROM products WHERE id = $1`

	var snap shared.ProductSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(&snap.ID, &snap.Name, &snap.Price, &snap.Stock, &snap.ImageURL)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product snapshot", err)
	}
	return &snap, nil
}
