package auth

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Authenticate handles POST /authenticate
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, r, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /authenticate/refresh. The token may arrive in the
// header, the query string or the JSON body.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractToken(r)

	resp, err := h.Service.RefreshToken(r.Context(), token)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Authenticated is the blanket gate in front of every non-public route. It
// verifies the token and stores the payload in the request context.
func (h *Handler) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractToken(r)
		if token == "" {
			h.Logger.WarnContext(r.Context(), "Authenticated: missing token", "path", r.URL.Path)
			h.HandleServiceError(w, r, internal.ErrNoToken)
			return
		}

		payload, err := h.Service.VerifyToken(token)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "Authenticated: token rejected", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithToken(r.Context(), payload)))
	})
}
