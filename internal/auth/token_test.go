package auth_test

import (
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenCodec", func() {
	var (
		now   time.Time
		codec *auth.TokenCodec
	)

	BeforeEach(func() {
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		codec = auth.NewTokenCodec(testSecret).WithClock(func() time.Time { return now })
	})

	It("round-trips the payload and stamps the soft expiry", func() {
		token, stamped, err := codec.Issue(auth.TokenPayload{
			UserID:         "u-1",
			OrganizationID: "org-1",
			Roles:          []string{"admin", "guest"},
		}, time.Hour, 2*time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(stamped.ExpiresAt).To(BeTemporally("==", now.Add(time.Hour)))

		payload, err := codec.Verify(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(payload.UserID).To(Equal("u-1"))
		Expect(payload.OrganizationID).To(Equal("org-1"))
		Expect(payload.Roles).To(Equal([]string{"admin", "guest"}))
		Expect(payload.ExpiresAt.Equal(now.Add(time.Hour))).To(BeTrue())
	})

	It("ignores the soft expiry when verifying", func() {
		token, _, err := codec.Issue(auth.TokenPayload{UserID: "u-1"}, time.Hour, 2*time.Hour)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(90 * time.Minute)
		payload, err := codec.Verify(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(payload.ExpiresAt.Before(now)).To(BeTrue())
	})

	It("reports a token past the hard expiry as expired", func() {
		token, _, err := codec.Issue(auth.TokenPayload{UserID: "u-1"}, time.Hour, 2*time.Hour)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(3 * time.Hour)
		_, err = codec.Verify(token)
		Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
	})

	It("rejects a token signed with another secret", func() {
		other := auth.NewTokenCodec("another-secret-that-is-long-enough-999").WithClock(func() time.Time { return now })
		token, _, err := other.Issue(auth.TokenPayload{UserID: "u-1"}, time.Hour, 2*time.Hour)
		Expect(err).NotTo(HaveOccurred())

		_, err = codec.Verify(token)
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("rejects a tampered token", func() {
		token, _, err := codec.Issue(auth.TokenPayload{UserID: "u-1"}, time.Hour, 2*time.Hour)
		Expect(err).NotTo(HaveOccurred())

		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "xx"
		_, err = codec.Verify(strings.Join(parts, "."))
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("rejects tokens using another algorithm", func() {
		claims := jwt.MapClaims{"userId": "u-1", "exp": now.Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = codec.Verify(token)
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("rejects garbage", func() {
		_, err := codec.Verify("not-a-token")
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("refuses to issue without a secret", func() {
		_, _, err := auth.NewTokenCodec("").Issue(auth.TokenPayload{}, time.Hour, 2*time.Hour)
		Expect(err).To(MatchError(auth.ErrSecretMissing))
	})

	It("refuses a hard expiry that is not past the soft one", func() {
		_, _, err := codec.Issue(auth.TokenPayload{}, time.Hour, time.Hour)
		Expect(err).To(MatchError(auth.ErrExpiryPolicy))
	})
})

var _ = Describe("TokenPayload.HasAnyRole", func() {
	It("matches any of the wanted roles", func() {
		p := &auth.TokenPayload{Roles: []string{"guest", "supplier:editor"}}
		Expect(p.HasAnyRole("admin", "supplier:editor")).To(BeTrue())
		Expect(p.HasAnyRole("admin")).To(BeFalse())
	})

	It("is false for a nil payload", func() {
		var p *auth.TokenPayload
		Expect(p.HasAnyRole("admin")).To(BeFalse())
	})
})
