package service_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/directory"
	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "crm-shared-secret-for-tests-only-0123456!"

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type fixture struct {
	store *sqlite.Store
	svc   *service.LoginService
	codec *jwtx.Codec
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	boot := &service.BootstrapService{Store: s}
	_, err = boot.Seed(t.Context(), service.DefaultSeedData("admin123", "test123"))
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{store: s, now: &now}
	f.codec, err = jwtx.NewCodec(testSecret, jwtx.WithClock(func() time.Time { return *f.now }))
	require.NoError(t, err)

	f.svc = &service.LoginService{
		Store:     s,
		Directory: directory.NewStoreDirectory(s),
		Tokens:    f.codec,
		Now:       func() time.Time { return *f.now },
	}
	return f
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Login(t.Context(), "admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, int64(86400), res.ExpiresIn)

	require.Equal(t, "admin", res.UserInfo.Username)
	require.Equal(t, "System Administrator", res.UserInfo.Name)
	require.Equal(t, "13800138000", res.UserInfo.Phone)
	require.Equal(t, "Management", res.UserInfo.DepartmentName)
	require.Equal(t, "Administrator", res.UserInfo.RoleName)

	claims, err := f.codec.Parse(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.UserInfo.ID, claims.UserID)
	require.Equal(t, "admin", claims.Username)
	require.Equal(t, "admin", claims.Subject)
	require.Equal(t, f.now.Add(24*time.Hour).Unix(), claims.Expiry().Unix())

	u, err := f.store.Users().GetUserByID(t.Context(), res.UserInfo.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), u.LoginCount)
	require.NotNil(t, u.LastLoginAt)
}

func TestLogin_CustomTTL(t *testing.T) {
	f := newFixture(t)
	f.svc.TTL = 90 * time.Minute

	res, err := f.svc.Login(t.Context(), "test", "test123")
	require.NoError(t, err)
	require.Equal(t, int64(5400), res.ExpiresIn)
	require.Equal(t, "Sales", res.UserInfo.DepartmentName)
	require.Equal(t, "Sales Rep", res.UserInfo.RoleName)
}

func TestLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	disabled, err := f.store.Users().GetUserByUsername(ctx, "test")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetUserStatus(ctx, disabled.ID, domain.UserDisabled))

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"wrong password", "admin", "admin1234", service.ErrInvalidCredentials},
		{"unknown user", "ghost", "admin123", service.ErrInvalidCredentials},
		{"disabled user with right password", "test", "test123", service.ErrInvalidCredentials},
		{"username case differs", "Admin", "admin123", service.ErrInvalidCredentials},
		{"empty username", "", "admin123", service.ErrInvalidRequest},
		{"blank username", "   ", "admin123", service.ErrInvalidRequest},
		{"empty password", "admin", "", service.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Login(ctx, tt.username, tt.password)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, res.Token)
		})
	}

	t.Run("disabled and unknown are indistinguishable", func(t *testing.T) {
		_, errDisabled := f.svc.Login(ctx, "test", "test123")
		_, errUnknown := f.svc.Login(ctx, "nobody", "test123")
		require.Equal(t, errUnknown.Error(), errDisabled.Error())
	})
}

func TestLogin_LookupUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, err := f.svc.Login(t.Context(), "admin", "admin123")
	require.ErrorIs(t, err, service.ErrLookupUnavailable)
	require.NotErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_RehashesLegacyBcrypt(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := f.store.Users().CreateUser(ctx, domain.User{
		Username:     "legacy",
		PasswordHash: string(legacy),
		Name:         "Legacy User",
		Status:       domain.UserEnabled,
	})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, "legacy", "legacy-pass")
	require.NoError(t, err)
	require.Empty(t, res.UserInfo.DepartmentName)

	u, err := f.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

	_, err = f.svc.Login(ctx, "legacy", "legacy-pass")
	require.NoError(t, err)
}

func TestCalibrateDummyWork(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	t.Cleanup(func() { _ = cryptox.SetLegacyHash("") })

	require.NoError(t, f.svc.CalibrateDummyWork(ctx))
	require.Zero(t, cryptox.LegacyCost())

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost+1)
	require.NoError(t, err)
	_, err = f.store.Users().CreateUser(ctx, domain.User{
		Username:     "legacy",
		PasswordHash: string(legacy),
		Status:       domain.UserEnabled,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.CalibrateDummyWork(ctx))
	require.Equal(t, bcrypt.MinCost+1, cryptox.LegacyCost())

	_, err = f.svc.Login(ctx, "nobody", "legacy-pass")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Logging in rehashes the last bcrypt account.
	_, err = f.svc.Login(ctx, "legacy", "legacy-pass")
	require.NoError(t, err)
	require.NoError(t, f.svc.CalibrateDummyWork(ctx))
	require.Zero(t, cryptox.LegacyCost())
}

type brokenDirectory struct{}

func (brokenDirectory) DepartmentName(context.Context, int64) (string, error) {
	return "", errors.New("directory down")
}

func (brokenDirectory) RoleName(context.Context, int64) (string, error) {
	return "", errors.New("directory down")
}

func TestLogin_DirectoryFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.svc.Directory = brokenDirectory{}

	res, err := f.svc.Login(t.Context(), "admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Empty(t, res.UserInfo.DepartmentName)
	require.Empty(t, res.UserInfo.RoleName)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Login(t.Context(), "admin", "admin123")
	require.NoError(t, err)
	claims, err := f.codec.Parse(res.Token)
	require.NoError(t, err)

	info := f.svc.Me(t.Context(), claims.Identity())
	require.Equal(t, res.UserInfo, info)

	t.Run("claims are a snapshot", func(t *testing.T) {
		require.NoError(t, f.store.Users().SetUserStatus(t.Context(), claims.UserID, domain.UserDisabled))
		info := f.svc.Me(t.Context(), claims.Identity())
		require.Equal(t, "admin", info.Username)
		require.Equal(t, "System Administrator", info.Name)
	})

	t.Run("user record gone", func(t *testing.T) {
		info := f.svc.Me(t.Context(), jwtx.Identity{UserID: 999, Username: "ghost", Name: "Ghost"})
		require.Equal(t, "ghost", info.Username)
		require.Empty(t, info.Phone)
	})
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Login(t.Context(), "admin", "admin123")
	require.NoError(t, err)

	for range 2 {
		ok, err := f.svc.Validate(res.Token)
		require.NoError(t, err)
		require.True(t, ok)
	}

	other, err := jwtx.NewCodec("another-secret-that-is-long-enough-0123456789")
	require.NoError(t, err)
	claims, err := f.codec.Parse(res.Token)
	require.NoError(t, err)
	forged, err := other.Sign(claims)
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		token string
		kind  string
	}{
		"empty":   {"", "malformed"},
		"garbage": {"not-a-token", "malformed"},
		"forged":  {forged, "invalid_signature"},
	} {
		t.Run(name, func(t *testing.T) {
			ok, err := f.svc.Validate(tc.token)
			require.False(t, ok)
			require.Equal(t, tc.kind, jwtx.Kind(err))
		})
	}

	*f.now = f.now.Add(24*time.Hour + time.Second)
	ok, err := f.svc.Validate(res.Token)
	require.False(t, ok)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
