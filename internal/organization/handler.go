package organization

import (
	"net/http"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(baseHandler *transport.BaseHandler, svc *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// MountRestricted registers the self-service routes.
func (h *Handler) MountRestricted(r chi.Router) {
	r.Get(Path+"/restricted/{id}", h.RestrictedSingle)
	r.Patch(Path+"/restricted/{id}", h.RestrictedUpdate)
}

// RestrictedSingle handles GET /organizations/restricted/{id}
func (h *Handler) RestrictedSingle(w http.ResponseWriter, r *http.Request) {
	org, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

// RestrictedUpdate handles PATCH /organizations/restricted/{id}. Only the
// name can be changed here.
func (h *Handler) RestrictedUpdate(w http.ResponseWriter, r *http.Request) {
	var dto RenameDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	org, err := h.Service.Rename(r.Context(), token, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusAccepted, org)
}
