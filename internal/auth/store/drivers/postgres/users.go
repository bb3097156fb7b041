package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

const userColumns = `id, username, password, name, phone, avatar, description,
	department_id, role_id, status, last_login_time, login_count, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) GetEnabledUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND status = $2`,
		username, int(domain.UserEnabled),
	))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, name, phone, avatar, description,
			department_id, role_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		u.Username, u.PasswordHash, u.Name, u.Phone, u.Avatar, u.Description,
		nullID(u.DepartmentID), nullID(u.RoleID), int(u.Status),
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return exec(ctx, r.db, `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, hash, id)
}

func (r *usersRepo) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	return exec(ctx, r.db, `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, int(status), id)
}

func (r *usersRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return exec(ctx, r.db,
		`UPDATE users SET last_login_time = $1, login_count = login_count + 1 WHERE id = $2`, at, id)
}

func (r *usersRepo) StrongestLegacyHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT password FROM users
		WHERE password LIKE '$2%'
		ORDER BY SUBSTR(password, 5, 2) DESC
		LIMIT 1`,
	).Scan(&hash)
	if err != nil {
		return "", mapNotFound(err)
	}
	return hash, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM users`)
	return n == 0, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		status    int
		deptID    sql.NullInt64
		roleID    sql.NullInt64
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Phone, &u.Avatar, &u.Description,
		&deptID, &roleID, &status, &lastLogin, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Status = domain.UserStatus(status)
	u.DepartmentID = deptID.Int64
	u.RoleID = roleID.Int64
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}
