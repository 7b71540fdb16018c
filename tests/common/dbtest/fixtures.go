//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123", cost 12. Hashing per test user is too slow
// for the e2e suites.
const TestPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

const TestPassword = "password123"

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, name, role, is_active) VALUES ($1, $2, $3, $4, $5, true) ON CONFLICT (email) DO NOTHING",
		userID, email, TestPasswordHash, "Test User", role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
		require.NoError(t, err)
	}

	return userID
}

func CreateTestProduct(t *testing.T, db DBLike, name string, price int64, stock int32) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO products (id, name, description, price, image_url, category, stock, sold) VALUES ($1, $2, $3, $4, $5, $6, $7, 0)",
		productID, name, "Fixture product", price, "https://img.example.com/"+productID.String(), "sneakers", stock)
	require.NoError(t, err)

	return productID
}

type DiscountFixture struct {
	Code          string
	Percentage    float64
	ValidFrom     time.Time
	ValidTo       time.Time
	Active        bool
	MinOrderValue int64
	MaxDiscount   *int64
	UsageLimit    *int32
	UsedCount     int32
}

func CreateTestDiscount(t *testing.T, db DBLike, f DiscountFixture) uuid.UUID {
	t.Helper()

	discountID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		`INSERT INTO discount_codes (id, code, percentage, valid_from, valid_to, active, min_order_value, max_discount, usage_limit, used_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		discountID, f.Code, f.Percentage, f.ValidFrom, f.ValidTo, f.Active,
		f.MinOrderValue, f.MaxDiscount, f.UsageLimit, f.UsedCount)
	require.NoError(t, err)

	return discountID
}

func AddCartItem(t *testing.T, db DBLike, userID, productID uuid.UUID, quantity int32) uuid.UUID {
	t.Helper()

	itemID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity",
		itemID, userID, productID, quantity)
	require.NoError(t, err)

	return itemID
}

func ProductStock(t *testing.T, db DBLike, productID uuid.UUID) (stock, sold int32) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT stock, sold FROM products WHERE id = $1", productID).Scan(&stock, &sold)
	require.NoError(t, err)
	return stock, sold
}

func DiscountUsedCount(t *testing.T, db DBLike, code string) int32 {
	t.Helper()

	var usedCount int32
	err := db.QueryRow(context.Background(),
		"SELECT used_count FROM discount_codes WHERE code = $1", code).Scan(&usedCount)
	require.NoError(t, err)
	return usedCount
}

// SeedReferenceData exists for symmetry with ResetDB; the storefront schema
// has no static reference tables.
func SeedReferenceData(pool *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
