package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
)

// Permit lets the request through when the verified token carries at least
// one of the allowed roles. It must run behind the token gate.
func Permit(logger *slog.Logger, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromContext(r.Context())
			if !ok || token.UserID == "" {
				logger.WarnContext(r.Context(), "Permit: no verified token in context", "path", r.URL.Path)
				writeError(w, internal.ErrForbiddenRole)
				return
			}

			if !token.HasAnyRole(allowed...) {
				logger.WarnContext(r.Context(), "Permit: role not allowed",
					"user_id", token.UserID,
					"roles", token.Roles,
					"allowed", allowed,
					"path", r.URL.Path)
				writeError(w, internal.ErrForbiddenRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
