package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "crm",
			"POSTGRES_PASSWORD": "crm",
			"POSTGRES_DB":       "crm",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://crm:crm@%s:%s/crm?sslmode=disable", host, port.Port())
}

func TestStore(t *testing.T) {
	s, err := postgres.NewStore(startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())

	ctx := t.Context()

	deptID, err := s.Departments().CreateDepartment(ctx, domain.Department{Name: "Sales", Status: 1})
	require.NoError(t, err)
	roleID, err := s.Roles().CreateRole(ctx, domain.Role{Name: "Sales Rep", Status: 1})
	require.NoError(t, err)

	id, err := s.Users().CreateUser(ctx, domain.User{
		Username:     "test",
		PasswordHash: "$argon2id$fake",
		Name:         "Test User",
		DepartmentID: deptID,
		RoleID:       roleID,
		Status:       domain.UserEnabled,
	})
	require.NoError(t, err)

	t.Run("lookup", func(t *testing.T) {
		u, err := s.Users().GetEnabledUserByUsername(ctx, "test")
		require.NoError(t, err)
		require.Equal(t, id, u.ID)
		require.Equal(t, deptID, u.DepartmentID)
		require.Equal(t, roleID, u.RoleID)

		d, err := s.Departments().GetDepartmentByID(ctx, deptID)
		require.NoError(t, err)
		require.Equal(t, "Sales", d.Name)

		r, err := s.Roles().GetRoleByName(ctx, "Sales Rep")
		require.NoError(t, err)
		require.Equal(t, roleID, r.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, domain.User{Username: "test", PasswordHash: "x", Status: domain.UserEnabled})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("disabled user hidden from login lookup", func(t *testing.T) {
		require.NoError(t, s.Users().SetUserStatus(ctx, id, domain.UserDisabled))
		_, err := s.Users().GetEnabledUserByUsername(ctx, "test")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, s.Users().SetUserStatus(ctx, id, domain.UserEnabled))
	})

	t.Run("record login", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.Users().RecordLogin(ctx, id, at))

		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, int64(1), u.LoginCount)
		require.NotNil(t, u.LastLoginAt)
		require.True(t, at.Equal(*u.LastLoginAt))
	})

	t.Run("strongest legacy hash", func(t *testing.T) {
		_, err := s.Users().StrongestLegacyHash(ctx)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().CreateUser(ctx, domain.User{Username: "old1", PasswordHash: "$2a$10$weaker", Status: domain.UserEnabled})
		require.NoError(t, err)
		_, err = s.Users().CreateUser(ctx, domain.User{Username: "old2", PasswordHash: "$2b$12$stronger", Status: domain.UserEnabled})
		require.NoError(t, err)

		hash, err := s.Users().StrongestLegacyHash(ctx)
		require.NoError(t, err)
		require.Equal(t, "$2b$12$stronger", hash)
	})

	t.Run("tx rollback", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Roles().CreateRole(ctx, domain.Role{Name: "Temp"}); err != nil {
				return err
			}
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.Roles().GetRoleByName(ctx, "Temp")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
