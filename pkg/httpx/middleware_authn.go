package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// InvalidTokenMessage is the only explanation an unauthenticated caller gets.
const InvalidTokenMessage = "invalid token"

// VerifyObserver is told the outcome of every verification, e.g. "ok",
// "expired" or "missing_authorization". Used for metrics.
type VerifyObserver func(result string)

// AuthnMiddleware rejects any request without a valid bearer token and puts
// the verified identity and claims on the request context. The reason for a
// rejection is logged, never returned.
func AuthnMiddleware(v jwtx.Verifier, observe VerifyObserver) Middleware {
	if observe == nil {
		observe = func(string) {}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				observe("missing_authorization")
				log.Debug("bearer token missing")
				WriteBearerError(w)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				kind := jwtx.Kind(err)
				observe(kind)
				log.Warn("token rejected",
					"kind", kind,
					"token_fp", cryptox.FingerprintToken(raw),
					"err", err,
				)
				WriteBearerError(w)
				return
			}
			observe("ok")

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.WithContext(ctx, log.With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteBearerError writes the RFC 6750 challenge and a generic 401 envelope.
func WriteBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteFail(w, http.StatusUnauthorized, InvalidTokenMessage)
}
