package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretMissing = errors.New("token secret is not configured")
	ErrExpiryPolicy  = errors.New("hard expiry must be longer than soft expiry")
)

// TokenCodec signs and verifies HS256 bearer tokens. It performs no I/O.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue stamps payload.ExpiresAt with now+softExpiry, signs it with a hard
// exp of now+hardExpiry and returns the token together with the stamped
// payload.
func (c *TokenCodec) Issue(payload TokenPayload, softExpiry, hardExpiry time.Duration) (string, TokenPayload, error) {
	if len(c.secret) == 0 {
		return "", TokenPayload{}, ErrSecretMissing
	}
	if hardExpiry <= softExpiry {
		return "", TokenPayload{}, ErrExpiryPolicy
	}

	now := c.now().UTC().Truncate(time.Second)
	payload.ExpiresAt = now.Add(softExpiry)

	claims := &Claims{
		UserID:         payload.UserID,
		OrganizationID: payload.OrganizationID,
		Roles:          payload.Roles,
		SoftExpiresAt:  payload.ExpiresAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(hardExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", TokenPayload{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, payload, nil
}

// Verify checks the signature and the hard expiry only. The soft expiresAt
// is returned untouched for the caller to judge.
func (c *TokenCodec) Verify(tokenString string) (*TokenPayload, error) {
	if len(c.secret) == 0 {
		return nil, internal.NewInternalError("token verification unavailable", ErrSecretMissing)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	return &TokenPayload{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Roles:          claims.Roles,
		ExpiresAt:      claims.SoftExpiresAt,
	}, nil
}
