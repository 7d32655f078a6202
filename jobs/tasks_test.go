package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptEmailerLogsDelivery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	emailer := NewReceiptEmailer(logger)

	task, err := NewReceiptEmailTask(ReceiptEmailPayload{
		To:                "mama.njeri@example.com",
		TransactionNumber: "TXN-20260830-ABCD1234",
		Body:              "receipt body",
	})
	require.NoError(t, err)

	require.NoError(t, emailer.Handle(context.Background(), task))
	assert.Contains(t, buf.String(), "mama.njeri@example.com")
	assert.Contains(t, buf.String(), "TXN-20260830-ABCD1234")
}

func TestReceiptEmailerSkipsMalformedPayload(t *testing.T) {
	emailer := NewReceiptEmailer(nil)
	task := asynq.NewTask(TaskTypeReceiptEmail, []byte("{not json"))

	err := emailer.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
