// Package contact handles the storefront contact form.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nordvare/nordvare/internal/platform/httpx"
)

// MailEnqueuer queues a transactional email. Satisfied by *jobs.Client.
type MailEnqueuer interface {
	EnqueueMail(ctx context.Context, to, subject, body string) error
}

// Form is a contact form submission.
type Form struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Handler struct {
	logger    *slog.Logger
	mail      MailEnqueuer
	shopEmail string
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, mail MailEnqueuer, shopEmail string) *Handler {
	return &Handler{logger: logger, mail: mail, shopEmail: shopEmail, validator: validator.New()}
}

// MountRoutes registers the contact endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
}

// handleSubmit validates the form and queues a notification to the shop
// address. Delivery is fire-and-forget: a queue failure is logged and the
// submitter still gets an accepted response.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(form)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	subject := fmt.Sprintf("Contact form: %s", form.Name)
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", form.Name, form.Email, form.Message)
	if err := h.mail.EnqueueMail(r.Context(), h.shopEmail, subject, body); err != nil {
		h.logger.Warn("enqueue contact notification", slog.Any("error", err))
	}

	w.WriteHeader(http.StatusAccepted)
}
