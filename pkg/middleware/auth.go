package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/session"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/httpapi"
)

// Authenticator resolves an opaque token into the actor it belongs to.
type Authenticator interface {
	Authorize(ctx context.Context, token string) (user.User, *session.Session, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	for _, scheme := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimSpace(strings.TrimPrefix(header, scheme))
		}
	}
	return ""
}

// Authorize attaches the authenticated actor to the request context
// when a valid token is present. It never rejects by itself; route
// groups that need an actor stack RequireAuthenticated on top.
func Authorize(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, sess, err := auth.Authorize(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithUser(r.Context(), u)
			ctx = composables.WithSession(ctx, sess)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuthenticated() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseUser(r.Context()); err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGroup enforces that the actor belongs to at least one of the
// given access groups.
func RequireGroup(groups ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := composables.UseUser(r.Context())
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}
			for _, g := range groups {
				if u.InGroup(g) {
					next.ServeHTTP(w, r)
					return
				}
			}
			_ = httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
		})
	}
}
