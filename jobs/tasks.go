// Package jobs holds the background task definitions and the Asynq worker
// wiring shared by the API and worker binaries.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReceiptEmail delivers a rendered receipt to a customer.
	TaskTypeReceiptEmail = "receipt:email"
)

// ReceiptEmailPayload carries a rendered receipt to the mail sender.
type ReceiptEmailPayload struct {
	To                string `json:"to"`
	TransactionNumber string `json:"transaction_number"`
	Body              string `json:"body"`
}

// NewReceiptEmailTask constructs the Asynq task for a receipt email.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptEmail, data, asynq.Queue(QueueDefault)), nil
}

// ReceiptEmailer handles TaskTypeReceiptEmail tasks.
type ReceiptEmailer struct {
	logger *slog.Logger
}

func NewReceiptEmailer(logger *slog.Logger) *ReceiptEmailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptEmailer{logger: logger}
}

// Handle delivers a queued receipt email.
func (e *ReceiptEmailer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP once the mail relay lands.
	e.logger.Info("receipt email queued for delivery",
		"to", payload.To,
		"transaction", payload.TransactionNumber,
	)
	return nil
}
