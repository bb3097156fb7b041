package http

import (
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
)

type LogoutHandler struct {
	LoginService *service.LoginService
	Verifier     jwtx.Verifier
}

// ServeHTTP acknowledges a logout. Nothing is revoked server side.
//
//	@Summary		Log out
//	@Description	Tokens are stateless; the client discards its token. The token stays valid until it expires.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope	"Logged out"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if token, err := httpx.BearerToken(r.Header.Get("Authorization")); err == nil {
		if claims, err := h.Verifier.Verify(token); err == nil {
			h.LoginService.Logout(r.Context(), claims.Identity())
		}
	}
	httpx.WriteOK(w, "logout successful", nil)
}
