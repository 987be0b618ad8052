package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nordvare/nordvare/internal/shared"
	"github.com/nordvare/nordvare/internal/visibility"
)

// Session value key carrying the role recorded at login. A role change takes
// effect at the next login, not mid-session.
const sessionRoleKey = "role"

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Viewer derives the storefront viewer from the request session.
func Viewer(r *http.Request) visibility.Viewer {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return visibility.Anonymous
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return visibility.Anonymous
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return visibility.Anonymous
	}
	return visibility.Viewer{
		UserID:        id,
		IsAdmin:       Role(sess.Get(sessionRoleKey)) == RoleAdmin,
		Authenticated: true,
	}
}

// RequireUser rejects requests without an authenticated session.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Viewer(r).Authenticated {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless the session user holds the admin role.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := Viewer(r)
		if !viewer.Authenticated {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if !viewer.IsAdmin {
			if m.Logger != nil {
				m.Logger.Warn("admin route denied", slog.Int64("user_id", viewer.UserID), slog.String("path", r.URL.Path))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
