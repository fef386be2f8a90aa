package user

import (
	"net/http"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/go-chi/chi"
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

// MountRestricted registers the self-service routes.
func (h *Handler) MountRestricted(r chi.Router) {
	r.Get(Path+"/restricted/{id}", h.RestrictedSingle)
	r.Patch(Path+"/restricted/{id}", h.RestrictedUpdate)
	r.Put(Path+"/restricted/update-password/{id}", h.UpdatePassword)
}

// RestrictedSingle handles GET /users/restricted/{id}
func (h *Handler) RestrictedSingle(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// RestrictedUpdate handles PATCH /users/restricted/{id}
func (h *Handler) RestrictedUpdate(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProfileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	u, err := h.Service.UpdateProfile(r.Context(), token, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusAccepted, u)
}

// UpdatePassword handles PUT /users/restricted/update-password/{id}
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var dto UpdatePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	u, err := h.Service.UpdatePassword(r.Context(), token, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusAccepted, u)
}

// Upgrade handles POST /users/upgrade
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req UpgradeRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Upgrade(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusAccepted, resp)
}
