package rest_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/identity-api/internal/transport/rest"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HealthHandler", func() {
	var (
		mock    sqlmock.Sqlmock
		handler *rest.HealthHandler
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		mock = m
		handler = rest.NewHealthHandler(sqlx.NewDb(db, "sqlmock"))
		DeferCleanup(db.Close)
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("answers ping without touching the database", func() {
		w := httptest.NewRecorder()
		handler.Ping(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"OK"}`))
	})

	It("reports a reachable database as healthy with pool stats", func() {
		mock.ExpectPing()

		w := httptest.NewRecorder()
		handler.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("postgres"))
		Expect(resp.Components["postgres"].Details).To(HaveKey("open_connections"))
	})

	It("answers 503 when the ping fails", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		w := httptest.NewRecorder()
		handler.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["postgres"].Message).To(ContainSubstring("connection refused"))
	})
})
