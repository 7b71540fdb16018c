package repository

import (
	"context"
	"time"

	"solestore/internal/infra"
	"solestore/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

// TryInsert claims the key via ON CONFLICT DO NOTHING. A false return means
// the key row already exists, whether from a replay or a concurrent request.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	const query = `
		INSERT INTO idempotency_keys (key, user_id, endpoint, status, request_hash, expires_at)
		VALUES ($1, $2, $3, 'processing', $4, $5)
		ON CONFLICT (key) DO NOTHING`

	tag, err := tx.Exec(ctx, query, key, userID, endpoint, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, resultHash string, orderID uuid.UUID) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'completed', result_hash = $3, result_order_id = $4
		WHERE key = $1 AND user_id = $2`

	if _, err := tx.Exec(ctx, query, key, userID, resultHash, orderID); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

// DeleteProcessing drops the caller's own unfinished claim. Completed rows
// are untouched so replays keep working.
func (r *IdempotencyRepository) DeleteProcessing(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error {
	const query = `
		DELETE FROM idempotency_keys
		WHERE key = $1 AND user_id = $2 AND status = 'processing'`

	if _, err := tx.Exec(ctx, query, key, userID); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

// ClaimExpiredKey takes over a stale 'processing' row left by a crashed
// request, resetting it for the current attempt.
func (r *IdempotencyRepository) ClaimExpiredKey(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error) {
	const query = `
		UPDATE idempotency_keys
		SET user_id = $2, status = 'processing', request_hash = $3,
		    result_hash = NULL, result_order_id = NULL, expires_at = $4
		WHERE key = $1 AND status = 'processing' AND expires_at < now()`

	tag, err := tx.Exec(ctx, query, key, userID, requestHash, expiresAt)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected(), nil
}
