package repository

import (
	"context"
	"errors"

	"solestore/internal/domain/order"
	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error) {
	const insertOrder = `
		INSERT INTO orders (
			user_id, status, subtotal, discount_amount, total, discount_code_id,
			shipping_address, shipping_name, shipping_phone, notes
		)
		VALUES ($1, $2, $3, $4, $5, (SELECT id FROM discount_codes WHERE code = $6), $7, $8, $9, $10)
		RETURNING id`

	var id uuid.UUID
	shipping := o.Shipping()
	err := tx.QueryRow(ctx, insertOrder,
		o.UserID(),
		string(o.Status()),
		o.Subtotal(),
		o.Discount(),
		o.Total(),
		o.DiscountCode(),
		shipping.Address(),
		shipping.Name(),
		shipping.Phone(),
		shipping.Notes(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}

	const insertLine = `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, product_name, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range o.Lines() {
		if _, err := tx.Exec(ctx, insertLine,
			id, line.ProductID(), line.Quantity(), line.UnitPrice(), line.ProductName(), line.ImageURL(),
		); err != nil {
			return uuid.Nil, infra.WrapRepoErr("failed to create order line", err)
		}
	}

	return id, nil
}

// CancelPending is the whole double-cancel guard: the status predicate and the
// write are one statement, so two concurrent cancels cannot both succeed.
func (r *OrderRepository) CancelPending(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to cancel order", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status order.Status) (bool, error) {
	const query = `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, string(status))
	if err != nil {
		return false, infra.WrapRepoErr("failed to update order status", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) Lines(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]shared.OrderLineSnapshot, error) {
	const query = `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order lines", err)
	}
	defer rows.Close()

	var lines []shared.OrderLineSnapshot
	for rows.Next() {
		var line shared.OrderLineSnapshot
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order lines", err)
	}
	return lines, nil
}

func (r *OrderRepository) AppliedDiscountCode(ctx context.Context, tx db.DBTX, orderID uuid.UUID) (*string, error) {
	const query = `
		SELECT d.code
		FROM orders o
		JOIN discount_codes d ON d.id = o.discount_code_id
		WHERE o.id = $1`

	var code string
	err := tx.QueryRow(ctx, query, orderID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to load applied discount code", err)
	}
	return &code, nil
}

func (r *OrderRepository) MarkRead(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE orders
		SET is_read = TRUE, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order read", err)
	}
	return tag.RowsAffected() > 0, nil
}
