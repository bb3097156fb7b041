package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const roleColumns = `id, name, permissions, description, status, created_at, updated_at`

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO roles (name, permissions, description, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		role.Name, role.Permissions, role.Description, role.Status,
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM roles`)
	return n == 0, err
}

func scanRole(row *sql.Row) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Permissions, &role.Description,
		&role.Status, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}
