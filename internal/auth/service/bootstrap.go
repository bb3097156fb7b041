package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

var ErrSeedUnknownReference = errors.New("seed user references unknown department or role")

// DefaultSeedData is the directory and the two accounts a fresh CRM starts
// with. Empty passwords are generated at seed time.
func DefaultSeedData(adminPassword, testPassword string) domain.SeedData {
	return domain.SeedData{
		Departments: []domain.Department{
			{Name: "Management", Description: "Company management", Status: 1},
			{Name: "Sales", Description: "Sales team", Status: 1},
		},
		Roles: []domain.Role{
			{Name: "Administrator", Permissions: "*", Description: "Full system access", Status: 1},
			{Name: "Sales Manager", Permissions: "lead:*,customer:*,report:read", Description: "Manages the sales team", Status: 1},
			{Name: "Sales Rep", Permissions: "lead:read,lead:write,customer:read", Description: "Works assigned leads", Status: 1},
		},
		Users: []domain.SeedUser{
			{
				Username:       "admin",
				Password:       adminPassword,
				Name:           "System Administrator",
				Phone:          "13800138000",
				DepartmentName: "Management",
				RoleName:       "Administrator",
			},
			{
				Username:       "test",
				Password:       testPassword,
				Name:           "Test User",
				Phone:          "13800138001",
				DepartmentName: "Sales",
				RoleName:       "Sales Rep",
			},
		},
	}
}

type BootstrapService struct {
	Store store.Store
}

// Seed creates whatever part of data is missing, in one transaction.
// Existing rows are left untouched, so running it on every start is safe.
// It returns the usernames it created.
func (s *BootstrapService) Seed(ctx context.Context, data domain.SeedData) ([]string, error) {
	l := slogx.FromContext(ctx)

	var created []string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		created = created[:0]

		deptIDs := make(map[string]int64, len(data.Departments))
		for _, d := range data.Departments {
			id, err := ensureDepartment(ctx, tx, d)
			if err != nil {
				return fmt.Errorf("seed department %q: %w", d.Name, err)
			}
			deptIDs[d.Name] = id
		}

		roleIDs := make(map[string]int64, len(data.Roles))
		for _, r := range data.Roles {
			id, err := ensureRole(ctx, tx, r)
			if err != nil {
				return fmt.Errorf("seed role %q: %w", r.Name, err)
			}
			roleIDs[r.Name] = id
		}

		for _, u := range data.Users {
			ok, err := seedUser(ctx, tx, u, deptIDs, roleIDs)
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			if ok {
				created = append(created, u.Username)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(created) > 0 {
		l.Info("seeded default accounts", slog.Any("usernames", created))
	}
	return created, nil
}

func ensureDepartment(ctx context.Context, tx store.Tx, d domain.Department) (int64, error) {
	existing, err := tx.Departments().GetDepartmentByName(ctx, d.Name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	return tx.Departments().CreateDepartment(ctx, d)
}

func ensureRole(ctx context.Context, tx store.Tx, r domain.Role) (int64, error) {
	existing, err := tx.Roles().GetRoleByName(ctx, r.Name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	return tx.Roles().CreateRole(ctx, r)
}

func seedUser(
	ctx context.Context,
	tx store.Tx,
	u domain.SeedUser,
	deptIDs, roleIDs map[string]int64,
) (bool, error) {
	_, err := tx.Users().GetUserByUsername(ctx, u.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	deptID, ok := lookupRef(deptIDs, u.DepartmentName)
	if !ok {
		return false, ErrSeedUnknownReference
	}
	roleID, ok := lookupRef(roleIDs, u.RoleName)
	if !ok {
		return false, ErrSeedUnknownReference
	}

	password := u.Password
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return false, err
		}
		// Only chance to learn it.
		slogx.FromContext(ctx).Warn("generated password for seeded account",
			slog.String("username", u.Username),
			slog.String("password", password),
		)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = tx.Users().CreateUser(ctx, domain.User{
		Username:     u.Username,
		PasswordHash: hash,
		Name:         u.Name,
		Phone:        u.Phone,
		DepartmentID: deptID,
		RoleID:       roleID,
		Status:       domain.UserEnabled,
	})
	return err == nil, err
}

// lookupRef treats an empty name as "unassigned".
func lookupRef(ids map[string]int64, name string) (int64, bool) {
	if name == "" {
		return 0, true
	}
	id, ok := ids[name]
	return id, ok
}
