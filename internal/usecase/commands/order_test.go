//go:build unit

package commands_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"solestore/internal/domain/order"
	"solestore/internal/domain/user"
	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/pkg/clock"
	"solestore/internal/pkg/config"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/commands"
	"solestore/internal/usecase/shared"
	"solestore/tests/common/builder"
	queriesmock "solestore/tests/mock/queries"
	sharedmock "solestore/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubUoW runs transaction closures against a fixed set of repository mocks.
// No real transaction semantics are simulated; the SQL-level guards are
// covered by the e2e suite.
type stubUoW struct {
	tx    shared.Tx
	reads shared.CommandReads
}

func (s *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, s.tx)
}

func (s *stubUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *stubUoW) CommandReads() shared.CommandReads {
	return s.reads
}

type stubTx struct {
	orders        shared.OrderRepository
	products      shared.ProductRepository
	carts         shared.CartRepository
	discounts     shared.DiscountRepository
	idempotency   shared.IdempotencyRepository
	notifications shared.NotificationRepository
	users         shared.UserRepository
	reads         shared.CommandReads
}

func (s *stubTx) Orders() shared.OrderRepository            { return s.orders }
func (s *stubTx) Products() shared.ProductRepository        { return s.products }
func (s *stubTx) Carts() shared.CartRepository              { return s.carts }
func (s *stubTx) Discounts() shared.DiscountRepository      { return s.discounts }
func (s *stubTx) Idempotency() shared.IdempotencyRepository { return s.idempotency }
func (s *stubTx) Notifications() shared.NotificationRepository {
	return s.notifications
}
func (s *stubTx) Users() shared.UserRepository { return s.users }
func (s *stubTx) Reads() shared.CommandReads   { return s.reads }
func (s *stubTx) DB() db.DBTX                  { return nil }

type orderFixture struct {
	orders        *sharedmock.MockOrderRepository
	products      *sharedmock.MockProductRepository
	carts         *sharedmock.MockCartRepository
	discounts     *sharedmock.MockDiscountRepository
	idempotency   *sharedmock.MockIdempotencyRepository
	notifications *sharedmock.MockNotificationRepository
	reads         *sharedmock.MockCommandReads
	orderQueries  *queriesmock.MockOrderQueries
	clock         *clock.MockClock
}

func newOrderFixture(t *testing.T, ctrl *gomock.Controller, cfg config.CheckoutConfig) (*orderFixture, commands.OrderCommands) {
	t.Helper()

	f := &orderFixture{
		orders:        sharedmock.NewMockOrderRepository(ctrl),
		products:      sharedmock.NewMockProductRepository(ctrl),
		carts:         sharedmock.NewMockCartRepository(ctrl),
		discounts:     sharedmock.NewMockDiscountRepository(ctrl),
		idempotency:   sharedmock.NewMockIdempotencyRepository(ctrl),
		notifications: sharedmock.NewMockNotificationRepository(ctrl),
		reads:         sharedmock.NewMockCommandReads(ctrl),
		orderQueries:  queriesmock.NewMockOrderQueries(ctrl),
		clock:         clock.NewMockClock(builder.FixedNow),
	}

	tx := &stubTx{
		orders:        f.orders,
		products:      f.products,
		carts:         f.carts,
		discounts:     f.discounts,
		idempotency:   f.idempotency,
		notifications: f.notifications,
		users:         sharedmock.NewMockUserRepository(ctrl),
		reads:         f.reads,
	}
	uow := &stubUoW{tx: tx, reads: f.reads}

	return f, commands.NewOrderCommands(uow, f.orderQueries, f.clock, cfg)
}

func requestHashOf(t *testing.T, req any) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func notFoundErr() error {
	return infra.WrapRepoErr("not found", errors.New("no rows in result set"), infra.KindNotFound)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := uuid.New()

	t.Run("success without discount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		ob := builder.NewOrderBuilder()
		req := ob.BuildCheckoutRequestDTO()
		lineA := builder.NewProductBuilder().BuildCartLine(2)
		lineB := builder.NewProductBuilder().BuildCartLine(1)
		orderID := uuid.New()
		view := ob.BuildView()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, "POST /api/orders", gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{lineA, lineB}, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(orderID, nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), lineA.ProductID, lineA.Quantity).Return(true, nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), lineB.ProductID, lineB.Quantity).Return(true, nil)
		f.carts.EXPECT().DeleteByUser(gomock.Any(), gomock.Any(), userID).Return(nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_created", gomock.Any(), gomock.Any()).Return(nil)
		f.idempotency.EXPECT().UpdateStatusCompleted(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), orderID).Return(nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(view, nil)

		result, err := cmd.Checkout(ctx, req, userID, key)
		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
		assert.Equal(t, view, result.Order)
	})

	t.Run("success with discount claims one usage slot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "SUMMER20"
		ob := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) { b.DiscountCode = &code })
		req := ob.BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(2) // subtotal 25,600
		snap := builder.NewDiscountBuilder().BuildSnapshot() // 20%, no clamp
		orderID := uuid.New()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "SUMMER20").Return(snap, nil)
		f.discounts.EXPECT().ClaimUsage(gomock.Any(), gomock.Any(), snap.ID).Return(true, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.DBTX, o *order.Order) (uuid.UUID, error) {
				assert.Equal(t, int64(25_600), o.Subtotal())
				assert.Equal(t, int64(5_120), o.Discount())
				assert.Equal(t, int64(20_480), o.Total())
				require.NotNil(t, o.DiscountCode())
				assert.Equal(t, "SUMMER20", *o.DiscountCode())
				return orderID, nil
			})
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), line.ProductID, line.Quantity).Return(true, nil)
		f.carts.EXPECT().DeleteByUser(gomock.Any(), gomock.Any(), userID).Return(nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_created", gomock.Any(), gomock.Any()).Return(nil)
		f.idempotency.EXPECT().UpdateStatusCompleted(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), orderID).Return(nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(builder.NewOrderBuilder().BuildView(), nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		require.NoError(t, err)
	})

	t.Run("empty cart aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return(nil, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrEmptyCart), "got %v", err)
	})

	t.Run("invalid shipping info rejected before the transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.ShippingAddress = "   " }).
			BuildCheckoutRequestDTO()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrInvalidShippingInfo), "got %v", err)
	})

	t.Run("insufficient stock aborts and names the product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().
			With(func(b *builder.ProductBuilder) { b.Name = "Last Pair Low" }).
			BuildCartLine(2)

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(uuid.New(), nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), line.ProductID, line.Quantity).Return(false, nil)
		// No cart clear, no notification, no idempotency completion: the
		// transaction closure returns before reaching them. The claim is
		// dropped so the key stays retryable.
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		require.True(t, errs.Is(err, commands.ErrInsufficientStock), "got %v", err)

		var stockErr *commands.InsufficientStockError
		require.True(t, errs.As(err, &stockErr))
		assert.Equal(t, "Last Pair Low", stockErr.ProductName)
		assert.Equal(t, int32(2), stockErr.Requested)
	})

	t.Run("failed checkout frees the key for retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(2)
		orderID := uuid.New()

		// First attempt dies on the stock floor and drops its claim.
		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(uuid.New(), nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), line.ProductID, line.Quantity).Return(false, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		require.True(t, errs.Is(err, commands.ErrInsufficientStock), "got %v", err)

		// The same key claims afresh and the retry goes through.
		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(orderID, nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), line.ProductID, line.Quantity).Return(true, nil)
		f.carts.EXPECT().DeleteByUser(gomock.Any(), gomock.Any(), userID).Return(nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_created", gomock.Any(), gomock.Any()).Return(nil)
		f.idempotency.EXPECT().UpdateStatusCompleted(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), orderID).Return(nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(builder.NewOrderBuilder().BuildView(), nil)

		result, err := cmd.Checkout(ctx, req, userID, key)
		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
	})

	t.Run("unknown discount code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "NOSUCHCODE"
		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.DiscountCode = &code }).
			BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1)

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "NOSUCHCODE").Return(nil, notFoundErr())
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrInvalidOrExpiredCode), "got %v", err)
	})

	t.Run("expired discount code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "SUMMER20"
		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.DiscountCode = &code }).
			BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1)
		snap := builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) {
				b.ValidFrom = f.clock.Now().Add(-48 * time.Hour)
				b.ValidTo = f.clock.Now().Add(-24 * time.Hour)
			}).BuildSnapshot()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "SUMMER20").Return(snap, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrInvalidOrExpiredCode), "got %v", err)
	})

	t.Run("subtotal below discount minimum", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "SUMMER20"
		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.DiscountCode = &code }).
			BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1) // 12,800
		snap := builder.NewDiscountBuilder().WithMinOrderValue(50_000).BuildSnapshot()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "SUMMER20").Return(snap, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrBelowMinimumOrder), "got %v", err)
	})

	t.Run("usage limit visible in snapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "SUMMER20"
		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.DiscountCode = &code }).
			BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1)
		snap := builder.NewDiscountBuilder().WithUsageLimit(10, 10).BuildSnapshot()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "SUMMER20").Return(snap, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrUsageLimitExceeded), "got %v", err)
	})

	t.Run("usage claim loses the race for the last slot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		code := "SUMMER20"
		req := builder.NewOrderBuilder().
			With(func(b *builder.OrderBuilder) { b.DiscountCode = &code }).
			BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1)
		snap := builder.NewDiscountBuilder().WithUsageLimit(10, 9).BuildSnapshot()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.reads.EXPECT().DiscountByCode(gomock.Any(), "SUMMER20").Return(snap, nil)
		f.discounts.EXPECT().ClaimUsage(gomock.Any(), gomock.Any(), snap.ID).Return(false, nil)
		f.idempotency.EXPECT().DeleteProcessing(gomock.Any(), gomock.Any(), key, userID).Return(nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrUsageLimitExceeded), "got %v", err)
	})

	t.Run("completed key replays the original order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()
		orderID := uuid.New()
		view := builder.NewOrderBuilder().BuildView()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		f.idempotency.EXPECT().ClaimExpiredKey(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any()).Return(int64(0), nil)
		f.reads.EXPECT().IdempotencyByKey(gomock.Any(), key, userID).Return(&shared.IdempotencyRecord{
			Key:           key,
			UserID:        userID,
			Status:        "completed",
			ResultOrderID: &orderID,
		}, nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(view, nil)

		result, err := cmd.Checkout(ctx, req, userID, key)
		require.NoError(t, err)
		assert.True(t, result.IsReplayed)
		assert.Equal(t, view, result.Order)
	})

	t.Run("processing key with different payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		f.idempotency.EXPECT().ClaimExpiredKey(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any()).Return(int64(0), nil)
		f.reads.EXPECT().IdempotencyByKey(gomock.Any(), key, userID).Return(&shared.IdempotencyRecord{
			Key:         key,
			UserID:      userID,
			Status:      "processing",
			RequestHash: "something-else-entirely",
		}, nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrDuplicateCheckout), "got %v", err)
	})

	t.Run("processing key with identical payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		f.idempotency.EXPECT().ClaimExpiredKey(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any()).Return(int64(0), nil)
		f.reads.EXPECT().IdempotencyByKey(gomock.Any(), key, userID).Return(&shared.IdempotencyRecord{
			Key:         key,
			UserID:      userID,
			Status:      "processing",
			RequestHash: requestHashOf(t, req),
		}, nil)

		_, err := cmd.Checkout(ctx, req, userID, key)
		assert.True(t, errs.Is(err, commands.ErrCheckoutInProgress), "got %v", err)
	})

	t.Run("expired claim is taken over", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		req := builder.NewOrderBuilder().BuildCheckoutRequestDTO()
		line := builder.NewProductBuilder().BuildCartLine(1)
		orderID := uuid.New()

		f.idempotency.EXPECT().TryInsert(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		f.idempotency.EXPECT().ClaimExpiredKey(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.carts.EXPECT().LinesForCheckout(gomock.Any(), gomock.Any(), userID).Return([]shared.CartLineSnapshot{line}, nil)
		f.orders.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(orderID, nil)
		f.products.EXPECT().DecrementStock(gomock.Any(), gomock.Any(), line.ProductID, line.Quantity).Return(true, nil)
		f.carts.EXPECT().DeleteByUser(gomock.Any(), gomock.Any(), userID).Return(nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_created", gomock.Any(), gomock.Any()).Return(nil)
		f.idempotency.EXPECT().UpdateStatusCompleted(gomock.Any(), gomock.Any(), key, userID, gomock.Any(), orderID).Return(nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(builder.NewOrderBuilder().BuildView(), nil)

		result, err := cmd.Checkout(ctx, req, userID, key)
		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	ownerID := uuid.New()

	pendingSnap := func() *shared.OrderSnapshot {
		return &shared.OrderSnapshot{ID: orderID, UserID: ownerID, Status: "pending"}
	}

	t.Run("owner cancels and stock is restored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		lines := []shared.OrderLineSnapshot{
			{ProductID: uuid.New(), Quantity: 2},
			{ProductID: uuid.New(), Quantity: 1},
		}

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(true, nil)
		f.orders.EXPECT().Lines(gomock.Any(), gomock.Any(), orderID).Return(lines, nil)
		f.products.EXPECT().RestoreStock(gomock.Any(), gomock.Any(), lines[0].ProductID, lines[0].Quantity, false).Return(true, nil)
		f.products.EXPECT().RestoreStock(gomock.Any(), gomock.Any(), lines[1].ProductID, lines[1].Quantity, false).Return(true, nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_cancelled", gomock.Any(), gomock.Any()).Return(nil)

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		require.NoError(t, err)
	})

	t.Run("restore skips products gone from the catalog", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		lines := []shared.OrderLineSnapshot{{ProductID: uuid.New(), Quantity: 2}}

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(true, nil)
		f.orders.EXPECT().Lines(gomock.Any(), gomock.Any(), orderID).Return(lines, nil)
		f.products.EXPECT().RestoreStock(gomock.Any(), gomock.Any(), lines[0].ProductID, lines[0].Quantity, false).Return(false, nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_cancelled", gomock.Any(), gomock.Any()).Return(nil)

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		require.NoError(t, err)
	})

	t.Run("admin can cancel any pending order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(true, nil)
		f.orders.EXPECT().Lines(gomock.Any(), gomock.Any(), orderID).Return(nil, nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_cancelled", gomock.Any(), gomock.Any()).Return(nil)

		err := cmd.Cancel(ctx, orderID, uuid.New(), user.RoleAdmin)
		require.NoError(t, err)
	})

	t.Run("customer cannot cancel someone else's order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)

		err := cmd.Cancel(ctx, orderID, uuid.New(), user.RoleCustomer)
		assert.True(t, errs.Is(err, commands.ErrForbidden), "got %v", err)
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(false, nil)
		// No stock restoration when the pending → cancelled flip did not happen.

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		assert.True(t, errs.Is(err, commands.ErrNotCancellable), "got %v", err)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(nil, notFoundErr())

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		assert.True(t, errs.Is(err, commands.ErrOrderNotFound), "got %v", err)
	})

	t.Run("discount usage refunded when configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{RefundDiscountOnCancel: true})

		code := "SUMMER20"

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(true, nil)
		f.orders.EXPECT().Lines(gomock.Any(), gomock.Any(), orderID).Return(nil, nil)
		f.orders.EXPECT().AppliedDiscountCode(gomock.Any(), gomock.Any(), orderID).Return(&code, nil)
		f.discounts.EXPECT().RefundUsage(gomock.Any(), gomock.Any(), "SUMMER20").Return(nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_cancelled", gomock.Any(), gomock.Any()).Return(nil)

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		require.NoError(t, err)
	})

	t.Run("sold counter reversed when configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{RestoreSoldOnCancel: true})

		lines := []shared.OrderLineSnapshot{{ProductID: uuid.New(), Quantity: 1}}

		f.reads.EXPECT().OrderByID(gomock.Any(), orderID).Return(pendingSnap(), nil)
		f.orders.EXPECT().CancelPending(gomock.Any(), gomock.Any(), orderID).Return(true, nil)
		f.orders.EXPECT().Lines(gomock.Any(), gomock.Any(), orderID).Return(lines, nil)
		f.products.EXPECT().RestoreStock(gomock.Any(), gomock.Any(), lines[0].ProductID, lines[0].Quantity, true).Return(true, nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_cancelled", gomock.Any(), gomock.Any()).Return(nil)

		err := cmd.Cancel(ctx, orderID, ownerID, user.RoleCustomer)
		require.NoError(t, err)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("valid transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		view := builder.NewOrderBuilder().BuildView()

		f.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), orderID, gomock.Any()).Return(true, nil)
		f.notifications.EXPECT().CreateJob(gomock.Any(), gomock.Any(), "webhook", "order_status_changed", gomock.Any(), gomock.Any()).Return(nil)
		f.orderQueries.EXPECT().GetByIDSystem(gomock.Any(), orderID).Return(view, nil)

		got, err := cmd.UpdateStatus(ctx, orderID, "shipped")
		require.NoError(t, err)
		assert.Equal(t, view, got)
	})

	t.Run("unknown status string", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		_, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		_, err := cmd.UpdateStatus(ctx, orderID, "returned")
		assert.True(t, errs.Is(err, commands.ErrInvalidOrderStatus), "got %v", err)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), orderID, gomock.Any()).Return(false, nil)

		_, err := cmd.UpdateStatus(ctx, orderID, "shipped")
		assert.True(t, errs.Is(err, commands.ErrOrderNotFound), "got %v", err)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.orders.EXPECT().MarkRead(gomock.Any(), gomock.Any(), orderID).Return(true, nil)

		require.NoError(t, cmd.MarkRead(ctx, orderID))
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f, cmd := newOrderFixture(t, ctrl, config.CheckoutConfig{})

		f.orders.EXPECT().MarkRead(gomock.Any(), gomock.Any(), orderID).Return(false, nil)

		assert.True(t, errs.Is(cmd.MarkRead(ctx, orderID), commands.ErrOrderNotFound))
	})
}
