package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/cart"
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

// MountPublicRoutes registers checkout. Guests may check out; the cart
// must exist.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCheckout)
}

// MountUserRoutes registers the viewer's own order history.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Get("/orders", h.handleListMine)
}

// MountAdminRoutes registers order management endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/status", h.handleUpdateStatus)
	})
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var form CheckoutForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(form)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	viewer := auth.Viewer(r)
	cartID, ok := cart.IDForRequest(r, viewer)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "no cart for this session")
		return
	}
	var userID *int64
	if viewer.Authenticated {
		userID = &viewer.UserID
	}

	order, err := h.service.Checkout(r.Context(), userID, cartID, form, r.Header.Get("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "cart is empty")
		case errors.Is(err, ErrDuplicateSubmission):
			httpx.Problem(w, http.StatusConflict, "Duplicate", "order already submitted")
		default:
			h.logger.Error("checkout", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	viewer := auth.Viewer(r)
	orders, err := h.service.ListMine(r.Context(), viewer.UserID)
	if err != nil {
		h.logger.Error("list own orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Page: 1, PerPage: 20}
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status")
			return
		}
		filters.Status = &status
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		filters.PerPage = perPage
	}

	orders, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
			return
		}
		h.logger.Error("get order", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
		case errors.Is(err, ErrInvalidTransition):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("update order status", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
