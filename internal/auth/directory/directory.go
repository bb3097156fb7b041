// Package directory resolves department and role ids to display names for
// login responses and the current-user endpoint.
package directory

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/metricsx"
)

// Directory maps ids to names. An id of zero or an id with no matching row
// resolves to the empty string without error; errors are reserved for the
// backing store being unreachable.
type Directory interface {
	DepartmentName(ctx context.Context, id int64) (string, error)
	RoleName(ctx context.Context, id int64) (string, error)
}

type StoreDirectory struct {
	store store.Store
}

func NewStoreDirectory(s store.Store) *StoreDirectory {
	return &StoreDirectory{store: s}
}

func (d *StoreDirectory) DepartmentName(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", nil
	}
	dept, err := d.store.Departments().GetDepartmentByID(ctx, id)
	return resolved(dept.Name, err)
}

func (d *StoreDirectory) RoleName(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", nil
	}
	role, err := d.store.Roles().GetRoleByID(ctx, id)
	return resolved(role.Name, err)
}

func resolved(name string, err error) (string, error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		metricsx.ObserveDirectory("miss")
		return "", nil
	case err != nil:
		return "", err
	}
	metricsx.ObserveDirectory("store")
	return name, nil
}
