package middleware

import (
	"net/http"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/pkg/logger"
)

// UserContext tags the request logger with the authenticated user id.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.TokenFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "userId", token.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
