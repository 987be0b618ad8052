// Package jobs implements background task processing on Asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendMail is the task type for transactional email delivery.
	TaskTypeSendMail = "mail:send"

	// mailMaxRetry bounds redelivery attempts; after that the failure is
	// logged and the task dropped. Email is never worth blocking on.
	mailMaxRetry = 3
)

// SendMailPayload describes one outgoing email.
type SendMailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendMailTask constructs the Asynq task for one email.
func NewSendMailTask(payload SendMailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendMail, data), nil
}

// Mailer delivers email over plain SMTP.
type Mailer struct {
	Host string
	Port string
	From string
}

// Send delivers one message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.From, to, subject, body)
	addr := net.JoinHostPort(m.Host, m.Port)
	if err := smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: smtp send: %w", err)
	}
	return nil
}

// NewSendMailHandler builds the worker-side handler for TaskTypeSendMail.
// A malformed payload is dropped without retry; delivery errors are
// returned so Asynq retries up to mailMaxRetry.
func NewSendMailHandler(mailer *Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendMailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("decode mail payload", slog.Any("error", err))
			return asynq.SkipRetry
		}
		if err := mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("send mail", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("mail sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		return nil
	}
}
