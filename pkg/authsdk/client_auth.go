package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login exchanges a username and password for a bearer token.
// Bad credentials come back as an *APIError with status 401.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.AuthPrefix+"/auth/login", "", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	login, err := decodeEnvelope[LoginResponse](resp)
	if err != nil {
		return nil, err
	}
	return &login, nil
}

// Me returns the user the token was issued for.
func (c *SDKClient) Me(ctx context.Context, token string) (*UserInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.AuthPrefix+"/auth/me", token, nil)
	if err != nil {
		return nil, err
	}

	info, err := decodeEnvelope[UserInfo](resp)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Validate asks the service whether token is currently valid. An invalid
// token is (false, nil); errors are transport failures only.
func (c *SDKClient) Validate(ctx context.Context, token string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.AuthPrefix+"/auth/validate", token, nil)
	if err != nil {
		return false, err
	}
	return decodeEnvelope[bool](resp)
}

// Logout tells the service the client is discarding token. The token stays
// valid until it expires; callers must drop it themselves.
func (c *SDKClient) Logout(ctx context.Context, token string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, c.AuthPrefix+"/auth/logout", token, nil)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope[json.RawMessage](resp)
	return err
}
