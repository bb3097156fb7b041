package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const departmentColumns = `id, name, description, status, created_at, updated_at`

type departmentsRepo struct {
	db dbtx
}

func (r *departmentsRepo) GetDepartmentByID(ctx context.Context, id int64) (domain.Department, error) {
	return scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
}

func (r *departmentsRepo) GetDepartmentByName(ctx context.Context, name string) (domain.Department, error) {
	return scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE name = $1`, name))
}

func (r *departmentsRepo) CreateDepartment(ctx context.Context, d domain.Department) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO departments (name, description, status) VALUES ($1, $2, $3) RETURNING id`,
		d.Name, d.Description, d.Status,
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *departmentsRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM departments`)
	return n == 0, err
}

func scanDepartment(row *sql.Row) (domain.Department, error) {
	var d domain.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Department{}, mapNotFound(err)
	}
	return d, nil
}
