package readstore

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/pkg/pgconv"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

const orderViewColumns = `
	o.id, o.user_id, o.status, o.subtotal, o.discount_amount, o.total,
	d.code, o.shipping_address, o.shipping_name, o.shipping_phone,
	o.notes, o.is_read, o.created_at, o.updated_at`

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	query := `
		SELECT ` + orderViewColumns + `
		FROM orders o
		LEFT JOIN discount_codes d ON d.id = o.discount_code_id
		WHERE o.id = $1`

	var view queries.OrderView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.UserID, &view.Status, &view.Subtotal, &view.Discount, &view.Total,
		&view.DiscountCode, &view.ShippingAddress, &view.ShippingName, &view.ShippingPhone,
		&view.Notes, &view.IsRead, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}

	lines, err := r.findLines(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Lines = lines

	return &view, nil
}

func (r *OrderReadStore) findLines(ctx context.Context, orderID uuid.UUID) ([]queries.OrderLineView, error) {
	const query = `
		SELECT id, product_id, product_name, image_url, quantity, unit_price
		FROM order_items
		WHERE order_id = $1`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order lines", err)
	}
	defer rows.Close()

	lines := []queries.OrderLineView{}
	for rows.Next() {
		var line queries.OrderLineView
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.ProductName, &line.ImageURL, &line.Quantity, &line.UnitPrice,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order lines", err)
	}
	return lines, nil
}

const orderListColumns = `
	id, user_id, status, total, discount_amount, shipping_name, is_read, created_at`

func (r *OrderReadStore) FindAll(ctx context.Context) ([]*queries.OrderListItem, error) {
	query := `
		SELECT ` + orderListColumns + `
		FROM orders
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find all orders", err)
	}
	defer rows.Close()

	return scanOrderListItems(rows)
}

func (r *OrderReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.OrderListItem, error) {
	query := `
		SELECT ` + orderListColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders by user", err)
	}
	defer rows.Close()

	return scanOrderListItems(rows)
}

func scanOrderListItems(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	result := []*queries.OrderListItem{}
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Status, &item.Total, &item.Discount,
			&item.ShippingName, &item.IsRead, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}
	return result, nil
}

func (r *OrderReadStore) CountUnread(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE NOT is_read`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count unread orders", err)
	}
	return count, nil
}

// SnapshotByID is the minimal command-side read used by cancellation and
// admin transitions.
func (r *OrderReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	const query = `SELECT id, user_id, status FROM orders WHERE id = $1`

	var snap shared.OrderSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(&snap.ID, &snap.UserID, &snap.Status)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order snapshot", err)
	}
	return &snap, nil
}
