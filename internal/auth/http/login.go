package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

const maxLoginBody = 64 << 10

type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP exchanges a username and password for a bearer token.
//
//	@Summary		Log in
//	@Description	Verifies the username and password and returns a signed bearer token.
//	@Description	Unknown, disabled and wrong-password logins are indistinguishable.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest							true	"Credentials"
//	@Success		200		{object}	authsdk.APIResponse[authsdk.LoginResponse]		"Token and user info"
//	@Failure		400		{object}	httpx.Envelope	"Missing username or password"
//	@Failure		401		{object}	httpx.Envelope	"Invalid username or password"
//	@Failure		429		{object}	httpx.Envelope	"Too many attempts"
//	@Failure		503		{object}	httpx.Envelope	"User store unavailable"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		log.Debug("invalid login body", "err", err)
		httpx.WriteFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.LoginService.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteFail(w, http.StatusBadRequest, service.ErrInvalidRequest.Error())
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteFail(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		return
	case errors.Is(err, service.ErrLookupUnavailable):
		httpx.WriteFail(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	default:
		httpx.WriteFail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteOK(w, "login successful", authsdk.LoginResponse{
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresIn: res.ExpiresIn,
		UserInfo:  toUserInfo(res.UserInfo),
	})
}

func toUserInfo(u service.UserInfo) authsdk.UserInfo {
	return authsdk.UserInfo{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Phone:          u.Phone,
		Avatar:         u.Avatar,
		DepartmentName: u.DepartmentName,
		RoleName:       u.RoleName,
	}
}
