package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const departmentColumns = `id, name, description, status, created_at, updated_at`

type departmentsRepo struct {
	db dbtx
}

func (r *departmentsRepo) GetDepartmentByID(ctx context.Context, id int64) (domain.Department, error) {
	return scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id))
}

func (r *departmentsRepo) GetDepartmentByName(ctx context.Context, name string) (domain.Department, error) {
	return scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE name = ?`, name))
}

func (r *departmentsRepo) CreateDepartment(ctx context.Context, d domain.Department) (int64, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO departments (name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Description, d.Status, now, now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
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
