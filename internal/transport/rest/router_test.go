package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/bootstrap"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/internal/core/testdb"
	"github.com/frahmantamala/identity-api/internal/transport/middleware"
	"github.com/frahmantamala/identity-api/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type mailbox struct {
	mu  sync.Mutex
	ids []string
}

func (m *mailbox) SendVerificationEmail(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
	return nil
}

func (m *mailbox) SendPasswordResetEmail(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
	return nil
}

func (m *mailbox) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[len(m.ids)-1]
}

const (
	systemEmail    = "system@example.com"
	systemPassword = "system-secret"
)

func testConfig() *internal.Config {
	return &internal.Config{
		Security: internal.SecurityConfig{
			JWTSecret:                 "a-test-secret-that-is-long-enough-32",
			SoftTokenExpiry:           time.Hour,
			HardTokenExpiry:           2 * time.Hour,
			BCryptCost:                4,
			EmailVerificationValidity: 24 * time.Hour,
			PasswordResetValidity:     time.Hour,
		},
		Bootstrap: internal.BootstrapConfig{
			Enabled:            true,
			SystemUserEmail:    systemEmail,
			SystemUserPassword: systemPassword,
		},
	}
}

var _ = Describe("Router", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		mail     *mailbox
		handlers rest.Handlers
		mount    func(limiter *middleware.RateLimiter, trustProxy bool) *chi.Mux
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		cfg := testConfig()
		_, err = bootstrap.NewSeeder(db, cfg.Bootstrap, cfg.Security.BCryptCost, lg).Seed(context.Background())
		Expect(err).NotTo(HaveOccurred())

		bus := events.NewEventBus(lg)
		DeferCleanup(bus.Wait)

		mail = &mailbox{}
		handlers = rest.NewHandlers(rest.Dependencies{
			Config:    cfg,
			DB:        db,
			Notifier:  mail,
			Publisher: bus,
			Logger:    lg,
		})
		mount = func(limiter *middleware.RateLimiter, trustProxy bool) *chi.Mux {
			r := chi.NewRouter()
			rest.RegisterAllRoutes(r, handlers, rest.Options{
				Logger:      lg,
				Version:     "test",
				Metrics:     middleware.NewMetrics(),
				MetricsPath: "/metrics",
				RateLimiter: limiter,
				TrustProxy:  trustProxy,
			})
			return r
		}
		router = mount(middleware.NewRateLimiter(100, 100), false)
	})

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("x-access-token", token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(email, password string) auth.AuthResponse {
		w := do(http.MethodPost, "/api/v1/authenticate", `{"email":"`+email+`","password":"`+password+`"}`, "")
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		var resp auth.AuthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	registerGuest := func(email string) string {
		w := do(http.MethodPost, "/api/v1/register", `{"email":"`+email+`","password":"secret123"}`, "")
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body).NotTo(HaveKey("password"))
		return body["id"].(string)
	}

	Describe("open routes", func() {
		It("describes the api", func() {
			w := do(http.MethodGet, "/api/v1/", "", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var info rest.APIInfo
			Expect(json.NewDecoder(w.Body).Decode(&info)).To(Succeed())
			Expect(info.Name).To(Equal(rest.ApplicationName))
			Expect(info.APIVersion).To(Equal("test"))
			Expect(info.AuthenticationEndpoint).To(HaveSuffix("/api/v1/authenticate"))
		})

		It("accepts client logs", func() {
			w := do(http.MethodPost, "/api/v1/clientlogs", `{"level":"error","message":"boom"}`, "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"message":"logged"}`))
		})

		It("renders unknown paths as a 404 error document", func() {
			w := do(http.MethodGet, "/nope", "", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("Requested Page: /nope"))
			Expect(w.Body.String()).To(ContainSubstring(`"status":404`))
		})

		It("leaves health routes unmounted without a database handle", func() {
			Expect(do(http.MethodGet, "/healthcheck", "", "").Code).To(Equal(http.StatusNotFound))
		})

		It("exposes prometheus metrics", func() {
			do(http.MethodGet, "/api/v1/", "", "")
			w := do(http.MethodGet, "/metrics", "", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("http_requests_total"))
		})

		It("registers, validates the email and logs the guest in", func() {
			id := registerGuest("guest@example.com")

			w := do(http.MethodPost, "/api/v1/validate-email?id="+mail.last(), "", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			resp := login("guest@example.com", "secret123")
			Expect(resp.Authenticated).To(BeTrue())
			Expect(resp.Decoded.UserID).To(Equal(id))
			Expect(resp.Decoded.Roles).To(ConsistOf("guest"))
		})

		It("rejects bad credentials with 401", func() {
			w := do(http.MethodPost, "/api/v1/authenticate", `{"email":"`+systemEmail+`","password":"wrong-one"}`, "")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Invalid email or password"))
		})

		It("walks a password reset end to end", func() {
			registerGuest("guest@example.com")

			w := do(http.MethodPost, "/api/v1/password-reset-request", `{"email":"guest@example.com"}`, "")
			Expect(w.Code).To(Equal(http.StatusOK))

			w = do(http.MethodPost, "/api/v1/password-reset",
				`{"passwordResetTokenId":"`+mail.last()+`","password":"changed-1"}`, "")
			Expect(w.Code).To(Equal(http.StatusOK))

			login("guest@example.com", "changed-1")
		})
	})

	Describe("gated routes", func() {
		var adminToken string

		BeforeEach(func() {
			adminToken = login(systemEmail, systemPassword).Token
		})

		It("answers 403 NO_TOKEN without a token", func() {
			w := do(http.MethodGet, "/api/v1/users", "", "")
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring(`"errorCode":"NO_TOKEN"`))
		})

		It("answers 401 to a forged token", func() {
			w := do(http.MethodGet, "/api/v1/users", "", "not.a.token")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("lets admins list every resource", func() {
			for _, path := range []string{"/users", "/organizations", "/roles", "/permissions", "/email-verifications", "/password-reset-tokens"} {
				w := do(http.MethodGet, "/api/v1"+path, "", adminToken)
				Expect(w.Code).To(Equal(http.StatusOK), path)
			}
		})

		It("keeps guests out of admin resources", func() {
			registerGuest("guest@example.com")
			guestToken := login("guest@example.com", "secret123").Token

			w := do(http.MethodGet, "/api/v1/users", "", guestToken)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring(`"errorCode":"FORBIDDEN_ROLE"`))
		})

		It("lets guests edit themselves but not an organization they do not own", func() {
			id := registerGuest("guest@example.com")
			guest := login("guest@example.com", "secret123")

			w := do(http.MethodPatch, "/api/v1/users/restricted/"+id, `{"firstName":"Gina"}`, guest.Token)
			Expect(w.Code).To(Equal(http.StatusAccepted))

			w = do(http.MethodPatch, "/api/v1/organizations/restricted/"+guest.Decoded.OrganizationID, `{"name":"Mine"}`, guest.Token)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring(`"errorCode":"OWNERSHIP_REQUIRED"`))
		})

		It("lets a guest rename an organization they own", func() {
			id := registerGuest("guest@example.com")
			guest := login("guest@example.com", "secret123")
			Expect(db.Create(&identity.Organization{
				ID:         "org-gina",
				Name:       "Gina's",
				Type:       identity.OrganizationTypeSupplier,
				Ownerships: identity.Ownerships{{OwnerID: id, OwnershipType: identity.OwnershipTypeUser}},
			}).Error).To(Succeed())

			w := do(http.MethodPatch, "/api/v1/organizations/restricted/org-gina", `{"name":"Gina Ltd"}`, guest.Token)
			Expect(w.Code).To(Equal(http.StatusAccepted), w.Body.String())
			Expect(w.Body.String()).To(ContainSubstring(`"name":"Gina Ltd"`))
		})

		It("upgrades a guest whose refreshed token carries the new role", func() {
			id := registerGuest("guest@example.com")
			guest := login("guest@example.com", "secret123")

			w := do(http.MethodPost, "/api/v1/users/upgrade",
				`{"userId":"`+id+`","organizationName":"Acme","roleName":"supplier:editor"}`, adminToken)
			Expect(w.Code).To(Equal(http.StatusAccepted), w.Body.String())
			var upgraded struct {
				OrganizationID string `json:"organizationId"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&upgraded)).To(Succeed())

			w = do(http.MethodPost, "/api/v1/authenticate/refresh", "", guest.Token)
			Expect(w.Code).To(Equal(http.StatusOK))
			var refreshed auth.AuthResponse
			Expect(json.NewDecoder(w.Body).Decode(&refreshed)).To(Succeed())
			Expect(refreshed.Decoded.Roles).To(ContainElement("supplier:editor"))
			Expect(refreshed.Decoded.OrganizationID).To(Equal(upgraded.OrganizationID))

			// the new owner may now rename their organization
			w = do(http.MethodPatch, "/api/v1/organizations/restricted/"+upgraded.OrganizationID, `{"name":"Acme Ltd"}`, refreshed.Token)
			Expect(w.Code).To(Equal(http.StatusAccepted))
		})

		It("refuses upgrades from non-admins", func() {
			id := registerGuest("guest@example.com")
			guestToken := login("guest@example.com", "secret123").Token

			w := do(http.MethodPost, "/api/v1/users/upgrade",
				`{"userId":"`+id+`","organizationName":"Acme","roleName":"supplier:editor"}`, guestToken)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("rate limiting", func() {
		It("throttles the open authentication routes only", func() {
			router = mount(middleware.NewRateLimiter(1, 1), false)

			first := do(http.MethodPost, "/api/v1/authenticate", `{"email":"x@example.com","password":"nope"}`, "")
			Expect(first.Code).NotTo(Equal(http.StatusTooManyRequests))
			second := do(http.MethodPost, "/api/v1/authenticate", `{"email":"x@example.com","password":"nope"}`, "")
			Expect(second.Code).To(Equal(http.StatusTooManyRequests))

			Expect(do(http.MethodGet, "/api/v1/", "", "").Code).To(Equal(http.StatusOK))
		})

		authenticateFrom := func(header, value string) int {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/authenticate", strings.NewReader(`{"email":"x@example.com","password":"nope"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(header, value)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w.Code
		}

		It("is not fooled by a rotating X-Forwarded-For", func() {
			router = mount(middleware.NewRateLimiter(1, 1), false)

			Expect(authenticateFrom("X-Forwarded-For", "203.0.113.1")).NotTo(Equal(http.StatusTooManyRequests))
			Expect(authenticateFrom("X-Forwarded-For", "203.0.113.2")).To(Equal(http.StatusTooManyRequests))
		})

		It("buckets by the forwarded address behind a trusted proxy", func() {
			router = mount(middleware.NewRateLimiter(1, 1), true)

			Expect(authenticateFrom("X-Real-IP", "203.0.113.1")).NotTo(Equal(http.StatusTooManyRequests))
			Expect(authenticateFrom("X-Real-IP", "203.0.113.2")).NotTo(Equal(http.StatusTooManyRequests))
			Expect(authenticateFrom("X-Real-IP", "203.0.113.1")).To(Equal(http.StatusTooManyRequests))
		})
	})
})
