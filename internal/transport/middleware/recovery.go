package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/identity-api/internal"
)

// RecoveryMiddleware turns a panic into the standard 500 error body. The
// stack is attached only when exposeErrors is set.
func RecoveryMiddleware(logger *slog.Logger, exposeErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					stack := string(debug.Stack())
					logger.ErrorContext(r.Context(), "panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", stack)

					appErr := internal.NewInternalError("Internal server error", fmt.Errorf("panic: %v", rec))
					if exposeErrors {
						appErr = appErr.WithException(map[string]string{
							"cause": fmt.Sprint(rec),
							"stack": stack,
						})
					}
					writeError(w, appErr)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
