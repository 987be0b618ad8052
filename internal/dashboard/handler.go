package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvare/nordvare/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers the statistics endpoint.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Collect(r.Context())
	if err != nil {
		h.logger.Error("collect dashboard stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
