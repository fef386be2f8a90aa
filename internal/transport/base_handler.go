package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/pkg/logger"
)

const (
	TokenHeader     = "x-access-token"
	TokenField      = "token"
	maxTokenBodyLen = 1 << 20
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// ExposeErrors attaches the cause and call stack to 5xx bodies.
	ExposeErrors bool
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, exposeErrors bool) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg, ExposeErrors: exposeErrors}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes the standard error body for appErr.
func (h *BaseHandler) WriteError(w http.ResponseWriter, appErr *internal.AppError) {
	h.WriteJSON(w, appErr.StatusCode, appErr)
}

// HandleServiceError is the single place where service errors become HTTP
// responses. Anything that is not an AppError is reported as a 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("An unexpected error occurred", err)
	}

	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", appErr.StatusCode,
			"code", appErr.Code,
			"error", err)
	} else {
		lg.Debug("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", appErr.StatusCode,
			"code", appErr.Code)
	}

	if h.ExposeErrors && appErr.Exception == nil && appErr.StatusCode >= http.StatusInternalServerError {
		appErr = appErr.WithException(map[string]string{
			"cause": causeText(appErr),
			"stack": string(debug.Stack()),
		})
	}

	h.WriteError(w, appErr)
}

func causeText(appErr *internal.AppError) string {
	if appErr.Cause == nil {
		return appErr.Message
	}
	return appErr.Cause.Error()
}

// DecodeJSON decodes the request body into dst, mapping syntax problems to a 400.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}

// ExtractToken finds the bearer token in, in order: the x-access-token
// header, an Authorization Bearer header, the token query parameter, or a
// "token" field in a JSON body. The body is restored for later handlers.
func (h *BaseHandler) ExtractToken(r *http.Request) string {
	if token := r.Header.Get(TokenHeader); token != "" {
		return token
	}
	if token := h.ExtractTokenFromHeader(r); token != "" {
		return token
	}
	if token := r.URL.Query().Get(TokenField); token != "" {
		return token
	}
	return tokenFromBody(r)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

func tokenFromBody(r *http.Request) string {
	if r.Body == nil || !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyLen))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var envelope struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Token
}
