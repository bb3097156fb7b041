package jwtx_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	c := jwtx.NewClaims(admin, 24*time.Hour, now)

	require.Equal(t, "admin", c.Subject)
	require.WithinDuration(t, now, c.IssuedAt.Time, 0)
	require.WithinDuration(t, now.Add(24*time.Hour), c.Expiry(), 0)
	require.Equal(t, admin, c.Identity())
}

func TestClaims_WireNames(t *testing.T) {
	// Other services decode these exact names.
	c := jwtx.NewClaims(admin, time.Hour, time.Unix(1_700_000_000, 0))
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"userId", "username", "name", "departmentId", "roleId", "sub", "iat", "exp"} {
		require.Contains(t, m, k)
	}
}

func TestClaims_IdentityFallsBackToSubject(t *testing.T) {
	c := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "test"},
		UserID:           2,
	}
	require.Equal(t, "test", c.Identity().Username)
}

func TestClaims_ExpiryZeroWhenAbsent(t *testing.T) {
	require.True(t, jwtx.Claims{}.Expiry().IsZero())
}
