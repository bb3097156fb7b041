package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies that /auth/login is rate limited per username.
// The strict limit is 5 req/min to slow down password guessing.
func TestRateLimitLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, adminUsername, "wrong")
		assertUnauthorized(t, err, "attempt before limit")
		require.NotContains(t, err.Error(), "429", "Should not be rate limited yet (request %d)", i+1)
	}

	_, err := client.Login(ctx, adminUsername, "wrong")
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	// Another username has its own bucket.
	performLogin(t, client, testUsername, testPassword)
}
