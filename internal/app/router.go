package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/cart"
	"github.com/nordvare/nordvare/internal/catalog/categories"
	"github.com/nordvare/nordvare/internal/catalog/products"
	"github.com/nordvare/nordvare/internal/contact"
	"github.com/nordvare/nordvare/internal/dashboard"
	"github.com/nordvare/nordvare/internal/observability"
	"github.com/nordvare/nordvare/internal/orders"
	"github.com/nordvare/nordvare/internal/pages"
	"github.com/nordvare/nordvare/internal/platform/httpx"
	"github.com/nordvare/nordvare/internal/shared"
	"github.com/nordvare/nordvare/internal/storage"
	"github.com/nordvare/nordvare/internal/translate"
	"github.com/nordvare/nordvare/internal/users"
	"github.com/nordvare/nordvare/internal/visibility"
	"github.com/nordvare/nordvare/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthMw         auth.Middleware

	AuthHandler       *auth.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	CartHandler       *cart.Handler
	OrdersHandler     *orders.Handler
	VisibilityHandler *visibility.Handler
	UsersHandler      *users.Handler
	PagesHandler      *pages.Handler
	ContactHandler    *contact.Handler
	DashboardHandler  *dashboard.Handler
	UploadHandler     *storage.Handler
	TranslateHandler  *translate.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// JSON clients fetch the CSRF token here and replay it in X-CSRF-Token.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("ensure csrf token", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Public storefront.
	params.ProductsHandler.MountPublicRoutes(r)
	params.CategoriesHandler.MountPublicRoutes(r)
	params.PagesHandler.MountPublicRoutes(r)
	params.CartHandler.MountRoutes(r)
	params.ContactHandler.MountRoutes(r)
	params.OrdersHandler.MountPublicRoutes(r)

	// Authenticated storefront.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMw.RequireUser)
		params.OrdersHandler.MountUserRoutes(r)
	})

	// Back-office.
	r.Route("/admin", func(r chi.Router) {
		r.Use(params.AuthMw.RequireAdmin)
		params.ProductsHandler.MountAdminRoutes(r)
		params.CategoriesHandler.MountAdminRoutes(r)
		params.OrdersHandler.MountAdminRoutes(r)
		params.UsersHandler.MountAdminRoutes(r)
		params.PagesHandler.MountAdminRoutes(r)
		params.DashboardHandler.MountAdminRoutes(r)
		params.VisibilityHandler.MountRoutes(r)
		if params.UploadHandler != nil {
			params.UploadHandler.MountRoutes(r)
		}
		if params.TranslateHandler != nil {
			params.TranslateHandler.MountRoutes(r)
		}
	})

	r.Route("/jobs", params.JobHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
