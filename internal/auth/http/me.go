package http

import (
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/httpx"
)

type MeHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP returns the user the bearer token was issued for.
//
//	@Summary		Current user
//	@Description	Returns the identity carried by the token, enriched with profile fields.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.APIResponse[authsdk.UserInfo]	"User information"
//	@Failure		401	{object}	httpx.Envelope	"invalid token"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteBearerError(w)
		return
	}

	httpx.WriteOK(w, "success", toUserInfo(h.LoginService.Me(ctx, id)))
}
