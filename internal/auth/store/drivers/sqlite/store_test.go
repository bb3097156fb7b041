package sqlite_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(t.Context()))
}

func TestUsers(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	deptID, err := s.Departments().CreateDepartment(ctx, domain.Department{Name: "Management", Status: 1})
	require.NoError(t, err)
	roleID, err := s.Roles().CreateRole(ctx, domain.Role{Name: "Administrator", Status: 1})
	require.NoError(t, err)

	id, err := s.Users().CreateUser(ctx, domain.User{
		Username:     "admin",
		PasswordHash: "$argon2id$fake",
		Name:         "System Administrator",
		Phone:        "13800138000",
		DepartmentID: deptID,
		RoleID:       roleID,
		Status:       domain.UserEnabled,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	t.Run("lookup by username", func(t *testing.T) {
		u, err := s.Users().GetEnabledUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.Equal(t, id, u.ID)
		require.Equal(t, "System Administrator", u.Name)
		require.Equal(t, deptID, u.DepartmentID)
		require.Equal(t, roleID, u.RoleID)
		require.True(t, u.Enabled())
		require.Nil(t, u.LastLoginAt)
		require.False(t, u.CreatedAt.IsZero())
	})

	t.Run("username is case sensitive", func(t *testing.T) {
		_, err := s.Users().GetEnabledUserByUsername(ctx, "Admin")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, domain.User{Username: "admin", PasswordHash: "x", Status: domain.UserEnabled})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("disabled user is not found by login lookup", func(t *testing.T) {
		require.NoError(t, s.Users().SetUserStatus(ctx, id, domain.UserDisabled))
		_, err := s.Users().GetEnabledUserByUsername(ctx, "admin")
		require.ErrorIs(t, err, store.ErrNotFound)

		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.False(t, u.Enabled())

		require.NoError(t, s.Users().SetUserStatus(ctx, id, domain.UserEnabled))
	})

	t.Run("record login", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, s.Users().RecordLogin(ctx, id, at))
		require.NoError(t, s.Users().RecordLogin(ctx, id, at.Add(time.Hour)))

		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, int64(2), u.LoginCount)
		require.NotNil(t, u.LastLoginAt)
		require.True(t, at.Add(time.Hour).Equal(*u.LastLoginAt))
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, id, "$argon2id$new"))
		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "$argon2id$new", u.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, 9999)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Users().SetUserStatus(ctx, 9999, domain.UserDisabled), store.ErrNotFound)
	})

	t.Run("strongest legacy hash", func(t *testing.T) {
		_, err := s.Users().StrongestLegacyHash(ctx)
		require.ErrorIs(t, err, store.ErrNotFound)

		for i, hash := range []string{"$2a$10$weaker", "$2b$12$stronger", "$2y$04$weakest"} {
			_, err := s.Users().CreateUser(ctx, domain.User{
				Username:     fmt.Sprintf("legacy%d", i),
				PasswordHash: hash,
				Status:       domain.UserEnabled,
			})
			require.NoError(t, err)
		}

		hash, err := s.Users().StrongestLegacyHash(ctx)
		require.NoError(t, err)
		require.Equal(t, "$2b$12$stronger", hash)
	})

	t.Run("unassigned department and role", func(t *testing.T) {
		id, err := s.Users().CreateUser(ctx, domain.User{Username: "loner", PasswordHash: "x", Status: domain.UserEnabled})
		require.NoError(t, err)
		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Zero(t, u.DepartmentID)
		require.Zero(t, u.RoleID)
	})
}

func TestDepartmentsAndRoles(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	deptID, err := s.Departments().CreateDepartment(ctx, domain.Department{Name: "Sales", Description: "d", Status: 1})
	require.NoError(t, err)

	d, err := s.Departments().GetDepartmentByID(ctx, deptID)
	require.NoError(t, err)
	require.Equal(t, "Sales", d.Name)

	d, err = s.Departments().GetDepartmentByName(ctx, "Sales")
	require.NoError(t, err)
	require.Equal(t, deptID, d.ID)

	_, err = s.Departments().CreateDepartment(ctx, domain.Department{Name: "Sales"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Departments().GetDepartmentByID(ctx, 404)
	require.ErrorIs(t, err, store.ErrNotFound)

	roleID, err := s.Roles().CreateRole(ctx, domain.Role{Name: "Sales Rep", Permissions: "lead:read", Status: 1})
	require.NoError(t, err)

	r, err := s.Roles().GetRoleByID(ctx, roleID)
	require.NoError(t, err)
	require.Equal(t, "Sales Rep", r.Name)
	require.Equal(t, "lead:read", r.Permissions)

	_, err = s.Roles().GetRoleByName(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.Roles().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestWithTx(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Departments().CreateDepartment(ctx, domain.Department{Name: "Temp"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Departments().GetDepartmentByName(ctx, "Temp")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Departments().CreateDepartment(ctx, domain.Department{Name: "Kept"})
			return err
		})
		require.NoError(t, err)

		_, err = s.Departments().GetDepartmentByName(ctx, "Kept")
		require.NoError(t, err)
	})

	t.Run("nested tx refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
