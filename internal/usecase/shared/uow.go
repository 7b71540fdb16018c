package shared

import (
	"context"
	"time"

	"solestore/internal/domain/order"
	"solestore/internal/domain/product"
	"solestore/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	Products() ProductRepository
	Carts() CartRepository
	Discounts() DiscountRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	DiscountByCode(ctx context.Context, code string) (*DiscountSnapshot, error)
	OrderByID(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
	ProductByID(ctx context.Context, id uuid.UUID) (*ProductSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

// CartLineSnapshot is one cart row joined with its product at checkout time.
// UnitPrice, ProductName and ImageURL are the values the resulting order
// lines will carry.
type CartLineSnapshot struct {
	ItemID      uuid.UUID
	ProductID   uuid.UUID
	Quantity    int32
	UnitPrice   int64
	ProductName string
	ImageURL    string
	Stock       int32
}

type DiscountSnapshot struct {
	ID            uuid.UUID
	Code          string
	Percentage    float64
	ValidFrom     time.Time
	ValidTo       time.Time
	Active        bool
	MinOrderValue *int64
	MaxDiscount   *int64
	UsageLimit    *int32
	UsedCount     int32
}

type OrderSnapshot struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status string
}

type OrderLineSnapshot struct {
	ProductID uuid.UUID
	Quantity  int32
}

type ProductSnapshot struct {
	ID       uuid.UUID
	Name     string
	Price    int64
	Stock    int32
	ImageURL string
}

type IdempotencyRecord struct {
	Key           uuid.UUID
	UserID        uuid.UUID
	Status        string
	RequestHash   string
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error)
	// CancelPending flips pending → cancelled. Returns false when the order
	// was not pending anymore; the predicate and the write are one statement,
	// which is what makes double cancellation safe.
	CancelPending(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status order.Status) (bool, error)
	Lines(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]OrderLineSnapshot, error)
	AppliedDiscountCode(ctx context.Context, tx db.DBTX, orderID uuid.UUID) (*string, error)
	MarkRead(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
}

type ProductParams struct {
	Name        string
	Description string
	Price       int64
	ImageURL    string
	Category    string
	Stock       int32
}

type ProductRepository interface {
	// DecrementStock performs the conditional read-modify-write
	// (stock = stock - qty, sold = sold + qty, guarded by stock >= qty).
	// Returns false when the floor check fails or the product is gone.
	DecrementStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, quantity int32) (bool, error)
	// RestoreStock adds quantity back, optionally reversing the sold counter.
	// Returns false when the product no longer exists.
	RestoreStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, quantity int32, reverseSold bool) (bool, error)
	Insert(ctx context.Context, tx db.DBTX, p *product.Product) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params ProductParams) (bool, error)
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
}

type CartRepository interface {
	LinesForCheckout(ctx context.Context, tx db.DBTX, userID uuid.UUID) ([]CartLineSnapshot, error)
	DeleteByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
	// AddOrMerge inserts a line or adds the quantity onto an existing one.
	AddOrMerge(ctx context.Context, tx db.DBTX, userID, productID uuid.UUID, quantity int32) (uuid.UUID, error)
	SetQuantity(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID, quantity int32) (bool, error)
	DeleteItem(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID) (bool, error)
}

type DiscountCodeParams struct {
	Code          string
	Percentage    float64
	ValidFrom     time.Time
	ValidTo       time.Time
	Active        bool
	MinOrderValue *int64
	MaxDiscount   *int64
	UsageLimit    *int32
}

type DiscountRepository interface {
	// ClaimUsage increments used_count with the usage_limit guard inside the
	// UPDATE predicate. Returns false when the limit is already reached.
	ClaimUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
	RefundUsage(ctx context.Context, tx db.DBTX, code string) error
	Insert(ctx context.Context, tx db.DBTX, params DiscountCodeParams) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params DiscountCodeParams) (bool, error)
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
}

type IdempotencyRepository interface {
	// TryInsert claims the key with status 'processing'. Returns false when
	// the key already exists (replay or concurrent duplicate).
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, resultHash string, orderID uuid.UUID) error
	ClaimExpiredKey(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error)
	// DeleteProcessing removes the caller's own 'processing' claim after a
	// failed attempt so the key is immediately retryable.
	DeleteProcessing(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, tx db.DBTX, email, passwordHash, name, role string) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
}
