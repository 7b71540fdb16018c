package repository

import (
	"context"
	"time"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// CreateJob writes an outbox row inside the caller's transaction; the
// dispatcher picks it up after commit.
func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	const query = `
		INSERT INTO notification_jobs (channel, event, payload, status, run_at)
		VALUES ($1, $2, $3, 'pending', $4)`

	if _, err := tx.Exec(ctx, query, kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
