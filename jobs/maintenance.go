package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeIdempotencyCleanup prunes idempotency keys past their
	// retention window.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency"

	// DefaultIdempotencyRetention keeps keys long enough to catch client
	// retries without the table growing unbounded.
	DefaultIdempotencyRetention = 7 * 24 * time.Hour
)

// IdempotencyCleanupPayload sets the retention window for a cleanup run.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencyCleanupTask constructs the Asynq task for a cleanup run.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	if retention <= 0 {
		retention = DefaultIdempotencyRetention
	}
	body, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}

// KeyPruner removes stale idempotency keys.
type KeyPruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleaner handles TaskTypeIdempotencyCleanup tasks.
type IdempotencyCleaner struct {
	store  KeyPruner
	logger *slog.Logger
}

func NewIdempotencyCleaner(store KeyPruner, logger *slog.Logger) *IdempotencyCleaner {
	return &IdempotencyCleaner{store: store, logger: logger}
}

// Handle prunes keys older than the payload retention.
func (c *IdempotencyCleaner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = DefaultIdempotencyRetention
	}
	if err := c.store.Cleanup(ctx, retention); err != nil {
		return err
	}
	c.logger.Info("idempotency keys pruned", "retention", retention.String())
	return nil
}
