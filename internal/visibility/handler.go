package visibility

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nordvare/nordvare/internal/platform/httpx"
)

// Handler exposes the admin assignment editor endpoints. Routes are mounted
// inside the admin group, so the admin check has already run.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products/{id}/assignments", h.list)
	r.Put("/products/{id}/assignments", h.replace)
}

type replaceRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}

	assignees, err := h.service.ListAssignees(r.Context(), productID)
	if err != nil {
		h.logger.Error("list assignees", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}
	if assignees == nil {
		assignees = []Assignee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignees": assignees})
}

// replace swaps the full edge set. The editor submits the complete desired
// membership; nothing incremental is persisted.
func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}

	var req replaceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	if err := h.service.Replace(r.Context(), productID, req.UserIDs); err != nil {
		h.logger.Error("replace assignments", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}

	assignees, err := h.service.ListAssignees(r.Context(), productID)
	if err != nil {
		h.logger.Warn("reload assignees", slog.Any("error", err))
	}
	if assignees == nil {
		assignees = []Assignee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignees": assignees})
}
