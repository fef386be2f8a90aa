package auth

import "context"

type ctxKey string

const ContextTokenKey ctxKey = "api-decoded-token"

func ContextWithToken(ctx context.Context, payload *TokenPayload) context.Context {
	return context.WithValue(ctx, ContextTokenKey, payload)
}

func TokenFromContext(ctx context.Context) (*TokenPayload, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextTokenKey).(*TokenPayload)
	return p, ok && p != nil
}
