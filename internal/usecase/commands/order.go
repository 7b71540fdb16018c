package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"solestore/internal/domain/discount"
	"solestore/internal/domain/order"
	"solestore/internal/domain/user"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/infra"
	"solestore/internal/pkg/clock"
	"solestore/internal/pkg/config"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart              = errs.New("cart is empty")
	ErrInvalidOrExpiredCode   = errs.New("discount code invalid or expired")
	ErrBelowMinimumOrder      = errs.New("order total below discount minimum")
	ErrUsageLimitExceeded     = errs.New("discount code usage limit exceeded")
	ErrInsufficientStock      = errs.New("insufficient stock")
	ErrOrderNotFound          = errs.New("order not found")
	ErrNotCancellable         = errs.New("order is not cancellable")
	ErrForbidden              = errs.New("not allowed to access this order")
	ErrInvalidOrderStatus     = errs.New("invalid order status")
	ErrInvalidShippingInfo    = errs.New("invalid shipping information")
	ErrDuplicateCheckout      = errs.New("duplicate checkout request")
	ErrCheckoutInProgress     = errs.New("checkout in progress")
	ErrIdempotencyCheckFailed = errs.New("idempotency check failed")
	ErrDatabaseOperation      = errs.New("database operation failed")
)

// InsufficientStockError names the offending product so the boundary can
// report which line killed the checkout.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductName
}

type CheckoutResult struct {
	Order      *queries.OrderView
	IsReplayed bool
}

type OrderCommands interface {
	Checkout(ctx context.Context, req reqdto.CheckoutRequest, userID uuid.UUID, idempotencyKey uuid.UUID) (*CheckoutResult, error)
	Cancel(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole user.Role) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*queries.OrderView, error)
	MarkRead(ctx context.Context, orderID uuid.UUID) error
}

type orderCommandsImpl struct {
	uow          shared.UnitOfWork
	orderQueries queries.OrderQueries
	clock        clock.Clock
	cfg          config.CheckoutConfig
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	orderQueries queries.OrderQueries,
	clock clock.Clock,
	cfg config.CheckoutConfig,
) OrderCommands {
	return &orderCommandsImpl{
		uow:          uow,
		orderQueries: orderQueries,
		clock:        clock,
		cfg:          cfg,
	}
}

// Checkout turns the caller's cart into a pending order. Everything between
// the cart snapshot and the cart clear runs in one transaction: a failure at
// any step (unknown code, usage limit, stock floor) rolls the whole thing
// back, so retrying the request is always safe.
func (c *orderCommandsImpl) Checkout(
	ctx context.Context,
	req reqdto.CheckoutRequest,
	userID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CheckoutResult, error) {
	requestHash := calculateRequestHash(req)
	expiresAt := c.clock.Now().Add(24 * time.Hour)

	replayed, err := c.handleIdempotency(ctx, idempotencyKey, userID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CheckoutResult{Order: replayed, IsReplayed: true}, nil
	}

	shipping, err := order.NewShippingInfo(req.ShippingAddress, req.ShippingName, req.ShippingPhone, req.Notes)
	if err != nil {
		c.releaseClaim(ctx, idempotencyKey, userID)
		return nil, errs.Mark(err, ErrInvalidShippingInfo)
	}

	var orderID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, txErr := c.checkoutInTx(ctx, tx, req, userID, shipping, idempotencyKey)
		if txErr != nil {
			return txErr
		}
		orderID = id
		return nil
	})
	if err != nil {
		c.releaseClaim(ctx, idempotencyKey, userID)
		return nil, err
	}

	view, err := c.orderQueries.GetByIDSystem(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	return &CheckoutResult{Order: view, IsReplayed: false}, nil
}

func (c *orderCommandsImpl) checkoutInTx(
	ctx context.Context,
	tx shared.Tx,
	req reqdto.CheckoutRequest,
	userID uuid.UUID,
	shipping order.ShippingInfo,
	idempotencyKey uuid.UUID,
) (uuid.UUID, error) {
	cartLines, err := tx.Carts().LinesForCheckout(ctx, tx.DB(), userID)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if len(cartLines) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	lines := make([]order.Line, 0, len(cartLines))
	var subtotal int64
	for _, cl := range cartLines {
		line, lineErr := order.NewLine(cl.ProductID, cl.Quantity, cl.UnitPrice, cl.ProductName, cl.ImageURL)
		if lineErr != nil {
			return uuid.Nil, errs.Mark(lineErr, ErrDatabaseOperation)
		}
		lines = append(lines, line)
		subtotal += line.Subtotal()
	}

	discountAmount, appliedCode, err := c.applyDiscount(ctx, tx, req.GetDiscountCode(), subtotal)
	if err != nil {
		return uuid.Nil, err
	}

	orderEntity, err := order.NewOrder(userID, lines, discountAmount, appliedCode, shipping)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}

	orderID, err := tx.Orders().Create(ctx, tx.DB(), orderEntity)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}

	// Conditional decrement per line: stock = stock - q guarded by
	// stock >= q. Zero rows means another checkout got there first (or the
	// product vanished); the whole transaction rolls back.
	for _, cl := range cartLines {
		ok, decErr := tx.Products().DecrementStock(ctx, tx.DB(), cl.ProductID, cl.Quantity)
		if decErr != nil {
			return uuid.Nil, errs.Mark(decErr, ErrDatabaseOperation)
		}
		if !ok {
			stockErr := &InsufficientStockError{
				ProductID:   cl.ProductID,
				ProductName: cl.ProductName,
				Requested:   cl.Quantity,
			}
			return uuid.Nil, errs.Mark(stockErr, ErrInsufficientStock)
		}
	}

	if err := tx.Carts().DeleteByUser(ctx, tx.DB(), userID); err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}

	if err := c.enqueueOrderEvent(ctx, tx, orderID, "order_created"); err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}

	resultHash := calculateIDHash(orderID)
	if err := tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, userID, resultHash, orderID); err != nil {
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperation)
	}

	return orderID, nil
}

// applyDiscount validates the supplied code against the subtotal and claims
// one usage slot. The claim increments used_count with the usage_limit guard
// in the UPDATE predicate, so two racing checkouts cannot both take the last
// slot.
func (c *orderCommandsImpl) applyDiscount(
	ctx context.Context,
	tx shared.Tx,
	code *string,
	subtotal int64,
) (int64, *string, error) {
	if code == nil {
		return 0, nil, nil
	}

	canonical, err := discount.NewCode(*code)
	if err != nil {
		return 0, nil, ErrInvalidOrExpiredCode
	}

	snap, err := tx.Reads().DiscountByCode(ctx, canonical.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, nil, ErrInvalidOrExpiredCode
		}
		return 0, nil, errs.Mark(err, ErrDatabaseOperation)
	}

	entity, err := discount.NewDiscountCode(
		snap.ID, snap.Code, snap.Percentage,
		snap.ValidFrom, snap.ValidTo, snap.Active,
		snap.MinOrderValue, snap.MaxDiscount,
		snap.UsageLimit, snap.UsedCount,
	)
	if err != nil {
		return 0, nil, ErrInvalidOrExpiredCode
	}

	amount, err := entity.Evaluate(c.clock.Now(), subtotal)
	if err != nil {
		var belowMin *discount.BelowMinimumOrderError
		switch {
		case errs.As(err, &belowMin):
			return 0, nil, errs.Mark(err, ErrBelowMinimumOrder)
		case errs.Is(err, discount.ErrUsageLimitReached):
			return 0, nil, ErrUsageLimitExceeded
		default:
			return 0, nil, ErrInvalidOrExpiredCode
		}
	}

	claimed, err := tx.Discounts().ClaimUsage(ctx, tx.DB(), snap.ID)
	if err != nil {
		return 0, nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if !claimed {
		return 0, nil, ErrUsageLimitExceeded
	}

	applied := entity.Code().String()
	return amount, &applied, nil
}

// Cancel reverses a pending checkout. The pending → cancelled flip and its
// status precondition are a single UPDATE, which closes the double-cancel
// race. Stock restoration skips products deleted since the order was placed.
func (c *orderCommandsImpl) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole user.Role) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperation)
		}

		if !requesterRole.IsAdmin() && snap.UserID != requesterID {
			return ErrForbidden
		}

		cancelled, err := tx.Orders().CancelPending(ctx, tx.DB(), orderID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !cancelled {
			return ErrNotCancellable
		}

		lines, err := tx.Orders().Lines(ctx, tx.DB(), orderID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		for _, line := range lines {
			// Restore is best-effort per line: a product removed from the
			// catalog since checkout is skipped, not an error.
			if _, err := tx.Products().RestoreStock(ctx, tx.DB(), line.ProductID, line.Quantity, c.cfg.RestoreSoldOnCancel); err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
		}

		if c.cfg.RefundDiscountOnCancel {
			code, codeErr := tx.Orders().AppliedDiscountCode(ctx, tx.DB(), orderID)
			if codeErr != nil {
				return errs.Mark(codeErr, ErrDatabaseOperation)
			}
			if code != nil {
				if err := tx.Discounts().RefundUsage(ctx, tx.DB(), *code); err != nil {
					return errs.Mark(err, ErrDatabaseOperation)
				}
			}
		}

		return c.enqueueOrderEvent(ctx, tx, orderID, "order_cancelled")
	})
}

// UpdateStatus is the administrative transition: any status may be set
// regardless of the current one, and no inventory compensation happens here.
func (c *orderCommandsImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*queries.OrderView, error) {
	newStatus, err := order.NewStatus(status)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidOrderStatus)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		updated, txErr := tx.Orders().UpdateStatus(ctx, tx.DB(), orderID, newStatus)
		if txErr != nil {
			return errs.Mark(txErr, ErrDatabaseOperation)
		}
		if !updated {
			return ErrOrderNotFound
		}
		return c.enqueueOrderEvent(ctx, tx, orderID, "order_status_changed")
	})
	if err != nil {
		return nil, err
	}

	return c.orderQueries.GetByIDSystem(ctx, orderID)
}

func (c *orderCommandsImpl) MarkRead(ctx context.Context, orderID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		updated, err := tx.Orders().MarkRead(ctx, tx.DB(), orderID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !updated {
			return ErrOrderNotFound
		}
		return nil
	})
}

// handleIdempotency claims the key or resolves what a prior claim means.
// Returns a non-nil view for a completed replay, nil when a fresh checkout
// should proceed.
func (c *orderCommandsImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, userID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.OrderView, error) {
	var inserted bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, txErr := tx.Idempotency().TryInsert(ctx, tx.DB(), idempotencyKey, userID, "POST /api/orders", requestHash, expiresAt)
		if txErr != nil {
			return errs.Mark(txErr, ErrIdempotencyCheckFailed)
		}
		inserted = ok
		if ok {
			return nil
		}
		// Stale claims from crashed requests are reclaimable once expired.
		claimed, txErr := tx.Idempotency().ClaimExpiredKey(ctx, tx.DB(), idempotencyKey, userID, requestHash, expiresAt)
		if txErr != nil {
			return errs.Mark(txErr, ErrIdempotencyCheckFailed)
		}
		inserted = claimed > 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := c.uow.CommandReads().IdempotencyByKey(ctx, idempotencyKey, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	switch existing.Status {
	case "completed":
		if existing.ResultOrderID == nil {
			return nil, errs.Mark(errs.New("completed request missing result order ID"), ErrIdempotencyCheckFailed)
		}
		return c.orderQueries.GetByIDSystem(ctx, *existing.ResultOrderID)

	case "processing":
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateCheckout
		}
		return nil, ErrCheckoutInProgress

	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), ErrIdempotencyCheckFailed)
	}
}

// releaseClaim drops the 'processing' row after a failed checkout so the same
// key can be retried right away instead of waiting out the expiry takeover.
// Best-effort: if the delete itself fails, ClaimExpiredKey still unblocks the
// key once it expires.
func (c *orderCommandsImpl) releaseClaim(ctx context.Context, key, userID uuid.UUID) {
	_ = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().DeleteProcessing(ctx, tx.DB(), key, userID)
	})
}

func (c *orderCommandsImpl) enqueueOrderEvent(ctx context.Context, tx shared.Tx, orderID uuid.UUID, event string) error {
	payload, err := json.Marshal(map[string]any{
		"order_id": orderID,
		"type":     event,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "webhook", event, payload, c.clock.Now())
}

func calculateRequestHash(req reqdto.CheckoutRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
