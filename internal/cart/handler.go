package cart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/catalog/products"
	"github.com/nordvare/nordvare/internal/i18n"
	"github.com/nordvare/nordvare/internal/platform/httpx"
	"github.com/nordvare/nordvare/internal/shared"
	"github.com/nordvare/nordvare/internal/visibility"
)

// cartCookie identifies anonymous carts. Authenticated carts key on the
// user id instead, so a cart follows the account across devices.
const cartCookie = "nv_cart"

// Catalog is the slice of the product service the cart needs to snapshot a
// line. Going through the storefront getter keeps restricted products out
// of carts their viewer may not see.
type Catalog interface {
	GetStorefront(ctx context.Context, viewer visibility.Viewer, lang i18n.Lang, id int64) (products.View, error)
}

type Handler struct {
	logger    *slog.Logger
	store     *Store
	catalog   Catalog
	validator *validator.Validate
	secure    bool
}

func NewHandler(logger *slog.Logger, store *Store, catalog Catalog, secureCookies bool) *Handler {
	return &Handler{
		logger:    logger,
		store:     store,
		catalog:   catalog,
		validator: validator.New(),
		secure:    secureCookies,
	}
}

// MountRoutes registers cart endpoints. They work for anonymous and
// authenticated viewers alike.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleClear)
		r.Post("/items", h.handleAdd)
		r.Put("/items/{productID}", h.handleUpdateQuantity)
		r.Delete("/items/{productID}", h.handleRemove)
	})
}

type addRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

type updateRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

type cartResponse struct {
	Items []Item  `json:"items"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

func toResponse(c Cart) cartResponse {
	if c.Items == nil {
		c.Items = []Item{}
	}
	return cartResponse{Items: c.Items, Total: c.Total(), Count: c.Count()}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), h.cartID(w, r))
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := httpx.ValidationFields(h.validator.Struct(req)); fields != nil {
		httpx.FieldProblem(w, fields)
		return
	}

	view, err := h.catalog.GetStorefront(r.Context(), auth.Viewer(r), i18n.Negotiate(r), req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("cart product lookup", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	c, err := h.store.Add(r.Context(), h.cartID(w, r), Item{
		ProductID: view.ID,
		Name:      view.Name,
		Price:     view.Price,
		ImageURL:  view.ImageURL,
		Stock:     view.Stock,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.logger.Error("add cart item", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	c, err := h.store.UpdateQuantity(r.Context(), h.cartID(w, r), productID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "item not in cart")
			return
		}
		h.logger.Error("update cart item", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	c, err := h.store.Remove(r.Context(), h.cartID(w, r), productID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "item not in cart")
			return
		}
		h.logger.Error("remove cart item", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context(), h.cartID(w, r)); err != nil {
		h.logger.Error("clear cart", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IDForRequest resolves the cart key for a request without creating one:
// the user id for authenticated viewers, the anonymous cookie otherwise.
func IDForRequest(r *http.Request, viewer visibility.Viewer) (string, bool) {
	if viewer.Authenticated {
		return "user:" + strconv.FormatInt(viewer.UserID, 10), true
	}
	if cookie, err := r.Cookie(cartCookie); err == nil && cookie.Value != "" {
		return "anon:" + cookie.Value, true
	}
	return "", false
}

// cartID resolves the cart key for this request. Authenticated viewers key
// on their user id; anonymous viewers get a uuid cookie on first touch.
func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := IDForRequest(r, auth.Viewer(r)); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(DefaultTTL),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return "anon:" + id
}
