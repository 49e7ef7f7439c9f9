package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"iam/internal/domain"
	"iam/internal/observability/metrics"
	"iam/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type ctxKey string

const ctxKeyUser ctxKey = "auth_user"

// authContext is what RequireAuth leaves behind for downstream handlers: the
// verified subject and their active role.
type authContext struct {
	UserID domain.UserID
	RoleID *domain.RoleID
}

func userFromContext(ctx context.Context) (authContext, bool) {
	v, ok := ctx.Value(ctxKeyUser).(authContext)
	return v, ok
}

// RequireAuth verifies the Bearer access token and resolves the caller's
// active role. Requests without a valid token never reach the handler.
func RequireAuth(tokens service.TokenService, users service.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeError(w, r, domain.ErrInvalidToken)
				return
			}

			claims, err := tokens.VerifyAccessToken(r.Context(), raw)
			if err != nil {
				writeError(w, r, err)
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				// A token for a deleted user is dead even if the signature holds.
				writeError(w, r, domain.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, authContext{
				UserID: user.ID,
				RoleID: user.DefaultRoleID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrivilege gates a route on the caller's active role holding every
// named privilege.
func RequirePrivilege(auth service.AuthService, actions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := userFromContext(r.Context())
			if !ok || caller.RoleID == nil {
				writeError(w, r, domain.ErrInvalidToken)
				return
			}

			check, err := auth.CheckPrivilege(r.Context(), *caller.RoleID, actions)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if !check.Granted {
				writeError(w, r, domain.NewError(domain.KindForbidden, "insufficient privileges"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CountRequests records per-route request totals using the chi route pattern
// so path parameters do not explode the label space.
func CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		metrics.HTTPRequestsTotal.With(prometheus.Labels{
			"method": r.Method,
			"path":   path,
			"status": strconv.Itoa(ww.Status()),
		}).Inc()
	})
}
