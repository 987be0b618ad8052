package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/nordvare/nordvare/internal/testing/guard"
)

func TestNewSendMailTaskRoundTrip(t *testing.T) {
	task, err := NewSendMailTask(SendMailPayload{
		To: "kari@example.com", Subject: "Order confirmation #7", Body: "Thanks!",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendMail, task.Type())

	var payload SendMailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "kari@example.com", payload.To)
	assert.Equal(t, "Order confirmation #7", payload.Subject)
}

func TestSendMailHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewSendMailHandler(&Mailer{Host: "localhost", Port: "25", From: "shop@example.com"}, slog.Default())
	err := handler(context.Background(), asynq.NewTask(TaskTypeSendMail, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
