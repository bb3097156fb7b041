package httpx

import (
	"context"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyClaims   ctxKey = "claims"
)

// WithIdentity stores the verified caller identity on ctx.
func WithIdentity(ctx context.Context, id jwtx.Identity) context.Context {
	return context.WithValue(ctx, CtxKeyIdentity, id)
}

// IdentityFromContext returns the identity placed by AuthnMiddleware or
// TrustedIdentityMiddleware.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(jwtx.Identity)
	return id, ok
}

// ClaimsFromContext returns the full claims when the token was verified in
// this process.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = WithIdentity(ctx, c.Identity())
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
