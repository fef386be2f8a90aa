package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("renders the message, status and code", func() {
		body, err := json.Marshal(internal.ErrEmailTaken)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(MatchJSON(`{"message":"This email is already taken","status":400,"errorCode":"EMAIL_TAKEN"}`))
	})

	It("renders field details as the exception", func() {
		appErr := internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
		body, err := json.Marshal(appErr)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(MatchJSON(`{
			"message":"email is required",
			"status":400,
			"errorCode":"VALIDATION_FAILED",
			"exception":{"errors":[{"field":"email","message":"email is required","code":"VALIDATION_FAILED"}]}
		}`))
	})

	It("keeps the upstream body of a failed third-party call", func() {
		appErr := internal.NewUpstreamError("Mandrill request failed", map[string]string{"status": "error"}, errors.New("bad gateway"))
		Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))

		body, err := json.Marshal(appErr)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`"exception":{"status":"error"}`))
	})

	It("matches sentinels through copies and wrapping", func() {
		wrapped := fmt.Errorf("register: %w", internal.ErrEmailTaken.WithCause(errors.New("23505")))
		Expect(errors.Is(wrapped, internal.ErrEmailTaken)).To(BeTrue())
		Expect(errors.Is(wrapped, internal.ErrOrgNameTaken)).To(BeFalse())

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Cause).To(MatchError("23505"))
	})

	It("does not mutate shared sentinels", func() {
		_ = internal.ErrNotFound.WithMessage("other").WithException("x")
		Expect(internal.ErrNotFound.Message).To(Equal("Item Not Found"))
		Expect(internal.ErrNotFound.Exception).To(BeNil())
	})

	It("reports plain errors as foreign", func() {
		_, ok := internal.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})

	It("uses the statuses the clients rely on", func() {
		Expect(internal.ErrNoToken.StatusCode).To(Equal(http.StatusForbidden))
		Expect(internal.ErrInvalidToken.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(internal.ErrForbiddenRole.StatusCode).To(Equal(http.StatusForbidden))
		Expect(internal.ErrOwnershipRequired.StatusCode).To(Equal(http.StatusForbidden))
		Expect(internal.ErrRateLimited.StatusCode).To(Equal(http.StatusTooManyRequests))
	})
})
