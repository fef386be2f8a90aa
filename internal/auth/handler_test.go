package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Auth Handler", func() {
	var (
		handler *auth.Handler
		service *auth.Service
	)

	BeforeEach(func() {
		service = auth.NewService(newMockCredentialStore(), auth.NewTokenCodec(testSecret), testExpiry, silentLogger())
		handler = auth.NewHandler(transport.NewBaseHandler(silentLogger(), false), service)
	})

	login := func(email, password string) *httptest.ResponseRecorder {
		body := `{"email":"` + email + `","password":"` + password + `"}`
		req := httptest.NewRequest(http.MethodPost, "/authenticate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.Authenticate(w, req)
		return w
	}

	It("returns the token on POST /authenticate", func() {
		w := login("user@example.com", "correct_password")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp auth.AuthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Authenticated).To(BeTrue())
		Expect(resp.Token).NotTo(BeEmpty())
	})

	It("answers bad credentials with the error body", func() {
		w := login("user@example.com", "wrong")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["message"]).To(Equal("Authentication failed. Invalid email or password"))
		Expect(body["status"]).To(BeNumerically("==", 401))
	})

	It("refreshes a token read from the JSON body", func() {
		w := login("user@example.com", "correct_password")
		var resp auth.AuthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/authenticate/refresh", strings.NewReader(`{"token":"`+resp.Token+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rw := httptest.NewRecorder()
		handler.Refresh(rw, req)
		Expect(rw.Code).To(Equal(http.StatusOK))
	})

	Describe("Authenticated", func() {
		var (
			reached *auth.TokenPayload
			gated   http.Handler
		)

		BeforeEach(func() {
			reached = nil
			gated = handler.Authenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached, _ = auth.TokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
		})

		tokenFor := func(email string) string {
			resp, err := service.Authenticate(context.Background(), auth.LoginDTO{Email: email, Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())
			return resp.Token
		}

		It("responds 403 when no token is presented", func() {
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(reached).To(BeNil())
		})

		It("responds 401 for an invalid token", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("x-access-token", "garbage")
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts the x-access-token header", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("x-access-token", tokenFor("admin@example.com"))
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(reached.UserID).To(Equal("u-2"))
		})

		It("accepts a bearer header", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor("user@example.com"))
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("accepts the token query parameter", func() {
			req := httptest.NewRequest(http.MethodGet, "/users?token="+tokenFor("user@example.com"), nil)
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(reached.Roles).To(ConsistOf("guest"))
		})
	})
})
