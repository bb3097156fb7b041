package http

import (
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

type ValidateHandler struct {
	LoginService *service.LoginService
	Observe      httpx.VerifyObserver
}

// ServeHTTP reports whether the bearer token is valid right now.
//
//	@Summary		Validate token
//	@Description	Always answers 200 with data true or false. The reason a token is invalid is never disclosed.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.APIResponse[bool]	"Validity"
//	@Router			/auth/validate [post].
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	observe := h.Observe
	if observe == nil {
		observe = func(string) {}
	}

	token, err := httpx.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		observe("missing_authorization")
		httpx.WriteOK(w, "success", false)
		return
	}

	valid, err := h.LoginService.Validate(token)
	kind := jwtx.Kind(err)
	observe(kind)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("token not valid",
			"kind", kind,
			"token_fp", cryptox.FingerprintToken(token),
		)
	}

	httpx.WriteOK(w, "success", valid)
}
