package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/service"
)

type contextKeyAuth string

// AdminKey is the context key for the authenticated admin session.
const AdminKey contextKeyAuth = "admin_session"

const (
	loginPath     = "/admin/login"
	dashboardPath = "/admin/dashboard"
)

// SessionChecker is the part of the session service the guards need.
type SessionChecker interface {
	CurrentAdmin(r *http.Request) (*model.AdminUser, bool)
	IsAuthenticatedAdmin(r *http.Request) bool
}

var _ SessionChecker = (*service.AuthService)(nil)

// AdminPageGuard protects the back-office pages. Any path under /admin other
// than the login page redirects to the login page without an admin session,
// and the login page redirects to the dashboard when one is present. Paths
// outside /admin pass through untouched.
func AdminPageGuard(auth SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case path == loginPath:
				if auth.IsAuthenticatedAdmin(r) {
					http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
					return
				}
			case path == "/admin" || strings.HasPrefix(path, "/admin/"):
				if !auth.IsAuthenticatedAdmin(r) {
					http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminSession guards the admin API. Requests without a valid admin
// session cookie get a 401 envelope; otherwise the session is attached to
// the request context.
func RequireAdminSession(auth SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.CurrentAdmin(r)
			if !ok || !user.IsAdmin() {
				writeAuthError(w, http.StatusUnauthorized, "Akses ditolak")
				return
			}
			ctx := context.WithValue(r.Context(), AdminKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin extracts the admin session from the context. Returns nil if the
// request did not pass RequireAdminSession.
func GetAdmin(ctx context.Context) *model.AdminUser {
	if u, ok := ctx.Value(AdminKey).(*model.AdminUser); ok {
		return u
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Response{Success: false, Message: message})
}
