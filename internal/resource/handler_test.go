package resource_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resource Handler", func() {
	var (
		store  *memoryStore
		router *chi.Mux
		token  *auth.TokenPayload
	)

	BeforeEach(func() {
		store = newMemoryStore()
		token = adminToken
		service := resource.NewService(orgDefinition(store), silentLogger())
		handler := resource.NewHandler(transport.NewBaseHandler(silentLogger(), false), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithToken(r.Context(), token)))
			})
		})
		handler.Mount(router)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	create := func(name string) identity.Organization {
		w := do(http.MethodPost, "/organizations", `{"name":"`+name+`"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var org identity.Organization
		Expect(json.NewDecoder(w.Body).Decode(&org)).To(Succeed())
		return org
	}

	It("creates with 201 and reads back with 200", func() {
		org := create("acme")

		w := do(http.MethodGet, "/organizations/"+org.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"name":"acme"`))
	})

	It("lists as an empty array when nothing exists", func() {
		w := do(http.MethodGet, "/organizations", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(w.Body.String())).To(Equal("[]"))
	})

	It("merges a partial update and answers 202", func() {
		org := create("acme")

		w := do(http.MethodPatch, "/organizations/"+org.ID, `{"isSystem":true}`)
		Expect(w.Code).To(Equal(http.StatusAccepted))

		var updated identity.Organization
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Name).To(Equal("acme"))
		Expect(updated.IsSystem).To(BeTrue())
	})

	It("answers 400 for a malformed update body", func() {
		org := create("acme")
		w := do(http.MethodPut, "/organizations/"+org.ID, `{"name":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns the removed item and its id on delete", func() {
		org := create("acme")

		w := do(http.MethodDelete, "/organizations/"+org.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var body map[string]json.RawMessage
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKey("ItemRemoved"))
		Expect(string(body["ItemRemovedId"])).To(Equal(`"` + org.ID + `"`))
	})

	It("answers 404 with the standard body", func() {
		w := do(http.MethodDelete, "/organizations/missing", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring(`"message":"Item Not Found"`))
	})

	It("answers 403 when a restricted role touches someone else's record", func() {
		token = guestToken
		org := create("acme")

		token = otherGuest
		w := do(http.MethodDelete, "/organizations/"+org.ID, "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
