package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPayload is the identity carried inside a bearer token. ExpiresAt is
// the soft deadline the client refreshes against; the signature carries its
// own, later, hard expiry.
type TokenPayload struct {
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	Roles          []string  `json:"roles"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// HasAnyRole reports whether the payload carries at least one of roles.
func (p *TokenPayload) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Claims is the signed JWT body.
type Claims struct {
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	Roles          []string  `json:"roles"`
	SoftExpiresAt  time.Time `json:"expiresAt"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	Authenticated bool         `json:"authenticated"`
	Message       string       `json:"message"`
	ExpiresAt     time.Time    `json:"expiresAt"`
	Token         string       `json:"token"`
	Decoded       TokenPayload `json:"decoded"`
}

// ExpiryPolicy holds the soft and hard token lifetimes.
type ExpiryPolicy struct {
	Soft time.Duration
	Hard time.Duration
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	RefreshToken(ctx context.Context, token string) (*AuthResponse, error)
	VerifyToken(token string) (*TokenPayload, error)
}
