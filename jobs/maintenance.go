package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rentfold/rentfold/internal/jobs"
)

// idempotencyRetention is how long consumed idempotency keys are kept so
// that late duplicate requests still collide.
const idempotencyRetention = 48 * time.Hour

// KeySweeper removes idempotency keys older than the retention window.
type KeySweeper interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// NewMaintenanceHandler returns the Asynq handler for TaskTypeMaintenance.
func NewMaintenanceHandler(sweeper KeySweeper, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskTypeMaintenance)
		err := sweeper.Cleanup(ctx, idempotencyRetention)
		if err != nil {
			logger.Error("maintenance sweep failed", slog.Any("error", err))
		}
		return tracker.End(err)
	}
}
