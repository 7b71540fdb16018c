package notify

import (
	"context"
	"log/slog"
	"time"

	"solestore/internal/infra"
	"solestore/internal/infra/db"
	"solestore/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dispatcher drains the notification outbox in the background. Jobs are
// written inside the command transaction; delivery happens after commit and
// never blocks a checkout.
type Dispatcher struct {
	pool      *pgxpool.Pool
	publisher Publisher
	interval  time.Duration
	batchSize int

	cancel context.CancelFunc
	done   chan struct{}
}

func NewDispatcher(pool *pgxpool.Pool, publisher Publisher, cfg config.KafkaConfig) *Dispatcher {
	return &Dispatcher{
		pool:      pool,
		publisher: publisher,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
	}
}

func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := d.drainOnce(ctx); err != nil {
					slog.Warn("notification dispatch cycle failed", "error", err.Error())
				}
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	if err := d.publisher.Close(); err != nil {
		slog.Warn("failed to close publisher", "error", err.Error())
	}
}

type outboxJob struct {
	ID      uuid.UUID
	Event   string
	Payload []byte
}

func (d *Dispatcher) drainOnce(ctx context.Context) error {
	jobs, err := d.claimBatch(ctx)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := d.publisher.Publish(ctx, job.Event, job.Payload); err != nil {
			slog.Warn("failed to publish notification",
				"job_id", job.ID.String(),
				"event", job.Event,
				"error", err.Error())
			d.markFailed(ctx, job.ID)
			continue
		}
		d.markSent(ctx, job.ID)
	}
	return nil
}

// claimBatch uses FOR UPDATE SKIP LOCKED so multiple instances can drain the
// same outbox without double delivery.
func (d *Dispatcher) claimBatch(ctx context.Context) ([]outboxJob, error) {
	const query = `
		SELECT id, event, payload
		FROM notification_jobs
		WHERE status = 'pending' AND run_at <= now() AND attempts < 5
		ORDER BY run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to begin outbox claim", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	jobs, err := queryJobs(ctx, tx, query, d.batchSize)
	if err != nil {
		return nil, err
	}

	const claim = `
		UPDATE notification_jobs
		SET attempts = attempts + 1
		WHERE id = ANY($1)`

	ids := make([]uuid.UUID, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}
	if len(ids) > 0 {
		if _, err := tx.Exec(ctx, claim, ids); err != nil {
			return nil, infra.WrapRepoErr("failed to claim outbox jobs", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, infra.WrapRepoErr("failed to commit outbox claim", err)
	}
	return jobs, nil
}

func queryJobs(ctx context.Context, tx db.DBTX, query string, limit int) ([]outboxJob, error) {
	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query outbox jobs", err)
	}
	defer rows.Close()

	var jobs []outboxJob
	for rows.Next() {
		var job outboxJob
		if err := rows.Scan(&job.ID, &job.Event, &job.Payload); err != nil {
			return nil, infra.WrapRepoErr("failed to scan outbox job", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate outbox jobs", err)
	}
	return jobs, nil
}

func (d *Dispatcher) markSent(ctx context.Context, id uuid.UUID) {
	const query = `
		UPDATE notification_jobs
		SET status = 'sent', sent_at = now()
		WHERE id = $1`

	if _, err := d.pool.Exec(ctx, query, id); err != nil {
		slog.Warn("failed to mark notification sent", "job_id", id.String(), "error", err.Error())
	}
}

func (d *Dispatcher) markFailed(ctx context.Context, id uuid.UUID) {
	const query = `
		UPDATE notification_jobs
		SET status = CASE WHEN attempts >= 5 THEN 'failed' ELSE 'pending' END
		WHERE id = $1`

	if _, err := d.pool.Exec(ctx, query, id); err != nil {
		slog.Warn("failed to mark notification failed", "job_id", id.String(), "error", err.Error())
	}
}
