package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/identity-api/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID seeds the request context with base tagged by a trace id. The
// id is taken from X-Trace-ID, then chi's request id, then generated.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = middleware.GetReqID(r.Context())
			}
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := logger.Into(r.Context(), base.With("traceID", traceID))
			w.Header().Set(TraceHeader, traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
