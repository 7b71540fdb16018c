package bootstrap

import (
	"context"
	"log/slog"

	"solestore/internal/infra/notify"
	"solestore/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var NotifyModule = fx.Module("notify",
	fx.Invoke(StartDispatcher),
)

// StartDispatcher runs the outbox poller when brokers are configured.
// Without brokers the outbox still fills; only delivery is off.
func StartDispatcher(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool) {
	if len(cfg.Kafka.Brokers) == 0 {
		slog.Info("kafka brokers not configured, notification dispatcher disabled")
		return
	}

	dispatcher := notify.NewDispatcher(pool, notify.NewKafkaPublisher(cfg.Kafka), cfg.Kafka)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			dispatcher.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			dispatcher.Stop()
			return nil
		},
	})
}
