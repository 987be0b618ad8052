package translate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/platform/httpx"
)

// Handler exposes machine translation to the admin editors.
type Handler struct {
	logger    *slog.Logger
	client    *Client
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client, validator: validator.New()}
}

// MountRoutes registers the translation endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/translate", h.handleTranslate)
}

type translateReq struct {
	Text string `json:"text" validate:"required,max=10000"`
	From string `json:"from" validate:"required,oneof=en no"`
	To   string `json:"to" validate:"required,oneof=en no"`
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	translated, err := h.client.Translate(r.Context(), req.Text, i18n.Lang(req.From), i18n.Lang(req.To))
	if err != nil {
		h.logger.Warn("machine translation", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Failure", "translation service unavailable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"translated": translated})
}
