package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const roleColumns = `id, name, permissions, description, status, created_at, updated_at`

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = ?`, name))
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (int64, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (name, permissions, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		role.Name, role.Permissions, role.Description, role.Status, now, now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
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
