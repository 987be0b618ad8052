package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/platform/httpx"
	"github.com/nordvare/nordvare/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountAdminRoutes registers account management endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/role", h.handleUpdateRole)
		r.Put("/{id}/active", h.handleSetActive)
	})
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u auth.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Page: 1, PerPage: 20, Search: r.URL.Query().Get("q")}
	q := r.URL.Query()
	if raw := q.Get("role"); raw != "" {
		role := auth.Role(raw)
		filters.Role = &role
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		filters.PerPage = perPage
	}

	users, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":      out,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(u))
}

type roleRequest struct {
	Role auth.Role `json:"role" validate:"required,oneof=admin user"`
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	if err := h.service.UpdateRole(r.Context(), id, req.Role); err != nil {
		h.respondMutationError(w, err, "update user role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req activeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	if err := h.service.SetActive(r.Context(), id, *req.Active); err != nil {
		h.respondMutationError(w, err, "set user active")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, ErrLastAdmin):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
