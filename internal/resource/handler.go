package resource

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

type Handler[T identity.Document] struct {
	*transport.BaseHandler
	Service *Service[T]
}

func NewHandler[T identity.Document](baseHandler *transport.BaseHandler, svc *Service[T]) *Handler[T] {
	return &Handler[T]{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Mount registers the six CRUD routes under the definition path. Routes are
// registered flat so sibling routes like /users/restricted/{id} can live in
// other groups of the same router.
func (h *Handler[T]) Mount(r chi.Router) {
	path := h.Service.Definition().Path
	r.Get(path, h.List)
	r.Post(path, h.Create)
	r.Get(path+"/{id}", h.Single)
	r.Put(path+"/{id}", h.Update)
	r.Patch(path+"/{id}", h.Update)
	r.Delete(path+"/{id}", h.Delete)
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []T{}
	}
	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler[T]) Single(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Single(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	rec := h.Service.Definition().New()
	if err := h.DecodeJSON(r, rec); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	created, err := h.Service.Create(r.Context(), token, rec)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// Update serves both PUT and PATCH: the body is merged onto the stored
// record, so fields left out keep their values.
func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	updated, err := h.Service.Update(r.Context(), token, chi.URLParam(r, "id"), func(rec T) error {
		if err := json.Unmarshal(body, rec); err != nil {
			return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
		}
		return nil
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusAccepted, updated)
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token, _ := auth.TokenFromContext(r.Context())

	removed, err := h.Service.Delete(r.Context(), token, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DeleteResponse[T]{ItemRemoved: removed, ItemRemovedID: id})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if len(body) == 0 {
		return nil, internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	return body, nil
}
