package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/handlers/userctx"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/service/auth"
	"github.com/nkiryanov/spbuhub/internal/service/auth/tokenmanager"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.Identity, error)
}

type warnLogger interface {
	Warn(msg string, args ...any)
}

// AuthMiddleware requires valid bearer token and puts caller identity to the request context
func AuthMiddleware(as authService, l warnLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := as.Auth(r.Context(), r)
			if err != nil {
				reason := "invalid"
				switch {
				case errors.Is(err, auth.ErrNoToken):
					reason = "missing"
				case errors.Is(err, tokenmanager.ErrTokenExpired):
					reason = "expired"
				}
				l.Warn("Request not authenticated", "reason", reason, "error", err, "uri", r.RequestURI)

				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through callers with the role or admins
// Has to be applied after AuthMiddleware
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := userctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !id.Role.Satisfies(role) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
