package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/frahmantamala/identity-api/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler", func() {
	var (
		f      *fixture
		router *chi.Mux
		token  *auth.TokenPayload
		jane   *identity.User
	)

	BeforeEach(func() {
		f = newFixture()
		jane = f.createUser(adminToken, "jane@example.com")
		token = adminToken

		handler := user.NewHandler(transport.NewBaseHandler(silentLogger(), false), f.service)
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithToken(r.Context(), token)))
			})
		})
		handler.MountRestricted(router)
		router.Post("/users/upgrade", handler.Upgrade)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("serves the sanitized user", func() {
		w := do(http.MethodGet, "/users/restricted/"+jane.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var got map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&got)).To(Succeed())
		Expect(got["email"]).To(Equal("jane@example.com"))
		Expect(got).NotTo(HaveKey("password"))
	})

	It("answers 202 to a profile patch", func() {
		w := do(http.MethodPatch, "/users/restricted/"+jane.ID, `{"firstName":"Jane"}`)
		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(w.Body.String()).To(ContainSubstring(`"firstName":"Jane"`))
	})

	It("answers 403 when a guest patches someone else", func() {
		token = &auth.TokenPayload{UserID: "intruder", Roles: []string{identity.RoleGuest}}
		w := do(http.MethodPatch, "/users/restricted/"+jane.ID, `{"firstName":"X"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("You are only allowed to modify items that you own"))
	})

	It("answers 202 to a password change", func() {
		w := do(http.MethodPut, "/users/restricted/update-password/"+jane.ID, `{"password":"brand-new"}`)
		Expect(w.Code).To(Equal(http.StatusAccepted))
	})

	It("answers 202 with the organization id on upgrade", func() {
		w := do(http.MethodPost, "/users/upgrade",
			`{"userId":"`+jane.ID+`","organizationName":"Acme","roleName":"supplier:editor"}`)
		Expect(w.Code).To(Equal(http.StatusAccepted))

		var resp user.UpgradeResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.OrganizationID).NotTo(BeEmpty())
	})

	It("answers 400 INVALID_UPGRADE_ROLE for other roles", func() {
		w := do(http.MethodPost, "/users/upgrade",
			`{"userId":"`+jane.ID+`","organizationName":"Acme","roleName":"admin"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"errorCode":"INVALID_UPGRADE_ROLE"`))
	})
})
