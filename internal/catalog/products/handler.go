package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/i18n"
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

// MountPublicRoutes registers the storefront catalog endpoints.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/products", h.handleStorefrontList)
	r.Get("/products/{id}", h.handleStorefrontGet)
}

// MountAdminRoutes registers product management endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleStorefrontList(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	views, pagination, err := h.service.ListStorefront(r.Context(), auth.Viewer(r), i18n.Negotiate(r), filters)
	if err != nil {
		h.logger.Error("storefront product list", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   views,
		"pagination": pagination,
	})
}

func (h *Handler) handleStorefrontGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	view, err := h.service.GetStorefront(r.Context(), auth.Viewer(r), i18n.Negotiate(r), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("storefront product detail", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := h.service.List(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("get product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	p, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("update product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("delete product", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (ProductForm, bool) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return form, false
	}
	if fields := httpx.ValidationFields(h.validator.Struct(form)); fields != nil {
		httpx.FieldProblem(w, fields)
		return form, false
	}
	return form, true
}

func parseFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Search:  q.Get("q"),
		Page:    1,
		PerPage: 20,
	}
	if raw := q.Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		filters.PerPage = perPage
	}
	return filters
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
