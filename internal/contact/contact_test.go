package contact

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	to      []string
	subject []string
	err     error
}

func (m *mockMailer) EnqueueMail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	return nil
}

func newTestRouter(mailer *mockMailer) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(slog.Default(), mailer, "shop@example.com").MountRoutes(r)
	return r
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitQueuesNotification(t *testing.T) {
	mailer := &mockMailer{}
	rec := post(t, newTestRouter(mailer),
		`{"name":"Ola","email":"ola@example.com","message":"Do you ship to Tromsø?"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "shop@example.com", mailer.to[0])
	assert.Contains(t, mailer.subject[0], "Ola")
}

func TestSubmitValidation(t *testing.T) {
	mailer := &mockMailer{}
	rec := post(t, newTestRouter(mailer), `{"name":"","email":"not-an-email","message":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mailer.to)
}

func TestSubmitQueueFailureStillAccepted(t *testing.T) {
	mailer := &mockMailer{err: errors.New("queue down")}
	rec := post(t, newTestRouter(mailer),
		`{"name":"Ola","email":"ola@example.com","message":"Hi"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
